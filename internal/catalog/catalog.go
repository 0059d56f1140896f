// Package catalog discovers intents on disk and resolves the log files that
// belong to them. Each intent lives in its own directory under the intents
// root, holding a .ttl document (structured) or a .txt description (natural
// language). An optional intent_mapping.json at the root binds intents to
// log glob patterns.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/iexplain/iexplain/internal/intent"
)

// mappingFile binds intent names to log glob patterns, relative to the logs
// directory.
const mappingFile = "intent_mapping.json"

// defaultLogGlob matches every log file under the logs directory when no
// mapping entry exists for an intent.
const defaultLogGlob = "**/*.log"

// Entry is one discovered intent.
type Entry struct {
	// Name is the intent's directory name.
	Name string
	// Path is the primary intent document.
	Path string
	// NaturalPath is the companion natural-language file next to a
	// structured document, empty when none exists.
	NaturalPath string
	// Format distinguishes structured TTL from natural language text.
	Format intent.Format
	// Meta holds the id and description scanned from the document.
	Meta intent.Metadata
	// LogGlobs are the patterns selecting this intent's logs.
	LogGlobs []string
}

// Documents holds the text of an intent's files. Structured carries the TTL
// content when the intent has one; Natural carries the natural-language
// description. A text-only intent fills Natural alone.
type Documents struct {
	Structured string
	Natural    string
}

// Primary returns the document requirements are extracted from.
func (d *Documents) Primary() string {
	if d.Structured != "" {
		return d.Structured
	}
	return d.Natural
}

// List discovers every intent under intentsDir, sorted by name. Directories
// without an intent document are skipped with a warning on stderr.
func List(intentsDir string) ([]Entry, error) {
	dirs, err := os.ReadDir(intentsDir)
	if err != nil {
		return nil, fmt.Errorf("reading intents directory: %w", err)
	}
	mapping := loadMapping(intentsDir)

	var entries []Entry
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		e, err := load(intentsDir, d.Name(), mapping)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping intent %s: %v\n", d.Name(), err)
			continue
		}
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Load returns one intent by name together with its document contents. Both
// the structured file and its natural-language companion are read when the
// directory holds both.
func Load(intentsDir, name string) (*Entry, *Documents, error) {
	e, err := load(intentsDir, name, loadMapping(intentsDir))
	if err != nil {
		return nil, nil, err
	}
	content, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading intent document: %w", err)
	}

	docs := &Documents{}
	if e.Format == intent.FormatStructured {
		docs.Structured = string(content)
		if e.NaturalPath != "" {
			nl, err := os.ReadFile(e.NaturalPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: reading %s: %v\n", e.NaturalPath, err)
			} else {
				docs.Natural = string(nl)
			}
		}
	} else {
		docs.Natural = string(content)
	}
	return e, docs, nil
}

func load(intentsDir, name string, mapping map[string][]string) (*Entry, error) {
	dir := filepath.Join(intentsDir, name)
	path, naturalPath, format, err := findDocument(dir, name)
	if err != nil {
		return nil, err
	}

	// Metadata extraction falls back to placeholders, so the error only
	// matters if the file itself is unreadable; discovery keeps going.
	meta, _ := intent.ExtractMetadata(path)
	if format == intent.FormatNatural {
		meta.Format = string(intent.FormatNatural)
		if meta.ID == "Unknown" {
			meta.ID = name
		}
		if meta.Description == "Unknown intent" {
			if first := firstLine(path); first != "" {
				meta.Description = first
			}
		}
	}

	e := &Entry{
		Name:        name,
		Path:        path,
		NaturalPath: naturalPath,
		Format:      format,
		Meta:        meta,
		LogGlobs:    mapping[name],
	}
	if len(e.LogGlobs) == 0 {
		e.LogGlobs = []string{defaultLogGlob}
	}
	return e, nil
}

// findDocument locates the intent documents inside an intent directory. A TTL
// file named after the directory wins; then any TTL; then a text file. When a
// TTL is chosen, a companion text file is reported alongside it.
func findDocument(dir, name string) (string, string, intent.Format, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", "", "", fmt.Errorf("reading intent directory: %w", err)
	}
	var ttl, txt string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		full := filepath.Join(dir, f.Name())
		switch strings.ToLower(filepath.Ext(f.Name())) {
		case ".ttl":
			if f.Name() == name+".ttl" {
				ttl = full
			} else if ttl == "" {
				ttl = full
			}
		case ".txt":
			if f.Name() == name+".txt" {
				txt = full
			} else if txt == "" {
				txt = full
			}
		}
	}
	if ttl != "" {
		return ttl, txt, intent.FormatStructured, nil
	}
	if txt != "" {
		return txt, "", intent.FormatNatural, nil
	}
	return "", "", "", fmt.Errorf("no .ttl or .txt document in %s", dir)
}

// firstLine returns the first non-empty line of a text document.
func firstLine(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// loadMapping reads intent_mapping.json when present. A missing or broken
// mapping degrades to defaults rather than failing discovery.
func loadMapping(intentsDir string) map[string][]string {
	data, err := os.ReadFile(filepath.Join(intentsDir, mappingFile))
	if err != nil {
		return nil
	}
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring malformed %s: %v\n", mappingFile, err)
		return nil
	}
	return m
}

// ResolveLogs expands the entry's glob patterns against the logs directory
// and returns the matching files, deduplicated and sorted.
func ResolveLogs(logsDir string, globs []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, g := range globs {
		matches, err := doublestar.FilepathGlob(filepath.Join(logsDir, g))
		if err != nil {
			return nil, fmt.Errorf("bad log pattern %q: %w", g, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
