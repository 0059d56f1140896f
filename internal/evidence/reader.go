package evidence

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Excerpt is a bounded, citation-friendly rendering of a log set for
// inclusion in a reasoning prompt.
type Excerpt struct {
	Content    string
	TotalLines int
	Truncated  []string
	Errors     []string
}

// ReadExcerpt reads each log file up to maxLines lines, numbering lines for
// citation and truncating overlong lines at maxLineLen characters. File
// errors are annotated inline and reported, never fatal.
func ReadExcerpt(logPaths []string, maxLines, maxLineLen int) *Excerpt {
	ex := &Excerpt{}
	if len(logPaths) == 0 {
		ex.Content = "No log files provided."
		return ex
	}
	if maxLines <= 0 {
		maxLines = 5000
	}
	if maxLineLen <= 0 {
		maxLineLen = 2000
	}

	var b strings.Builder
	sep := strings.Repeat("=", 70)

	for _, path := range logPaths {
		name := filepath.Base(path)
		fmt.Fprintf(&b, "\n%s\nLOG FILE: %s\nFull path: %s\n%s\n\n", sep, name, path, sep)

		f, err := os.Open(path)
		if err != nil {
			msg := fmt.Sprintf("cannot read %s: %v", path, err)
			fmt.Fprintf(&b, "[ERROR: %s]\n", msg)
			ex.Errors = append(ex.Errors, msg)
			continue
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), maxScanLineBytes)

		lineNo := 0
		truncated := false
		for scanner.Scan() {
			lineNo++
			if lineNo > maxLines {
				truncated = true
				break
			}
			line := scanner.Text()
			if len(line) > maxLineLen {
				line = line[:maxLineLen] + "... [line truncated]"
			}
			fmt.Fprintf(&b, "%6d: %s\n", lineNo, line)
			ex.TotalLines++
		}
		if err := scanner.Err(); err != nil {
			msg := fmt.Sprintf("reading %s: %v", path, err)
			fmt.Fprintf(&b, "[ERROR: %s]\n", msg)
			ex.Errors = append(ex.Errors, msg)
		}
		if truncated {
			fmt.Fprintf(&b, "[TRUNCATED: showing first %d lines]\n", maxLines)
			ex.Truncated = append(ex.Truncated, name)
		}
		f.Close()
	}

	ex.Content = b.String()
	return ex
}
