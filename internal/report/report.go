// Package report renders explanation records as standalone HTML pages.
package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/iexplain/iexplain/internal/explanation"
)

// Generator converts explanation records into HTML reports.
type Generator struct {
	OutputDir string
}

// NewGenerator creates a Generator writing into outputDir.
func NewGenerator(outputDir string) *Generator {
	return &Generator{OutputDir: outputDir}
}

// pageData holds the data passed to the HTML page template.
type pageData struct {
	Title   string
	Outcome string
	Content htmltemplate.HTML
}

// Generate renders one record and returns the written file path.
func (g *Generator) Generate(r *explanation.Record) (string, error) {
	markdown, err := renderMarkdown(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	var htmlBuf bytes.Buffer
	if err := md.Convert([]byte(markdown), &htmlBuf); err != nil {
		return "", fmt.Errorf("converting report markdown: %w", err)
	}

	tmpl, err := htmltemplate.New("page").Parse(pageTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing page template: %w", err)
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("report_%s_%s.html", slug(r.Intent.ID), timestampSlug(r.Timestamp))
	outPath := filepath.Join(g.OutputDir, name)

	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data := pageData{
		Title:   fmt.Sprintf("Explanation: %s", r.Intent.ID),
		Outcome: outcomeClass(string(r.Outcome)),
		Content: htmltemplate.HTML(htmlBuf.String()),
	}
	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering report page: %w", err)
	}
	return outPath, nil
}

// renderMarkdown builds the report body from a record.
func renderMarkdown(r *explanation.Record) (string, error) {
	tmpl, err := texttemplate.New("report").Funcs(texttemplate.FuncMap{
		"analysisRows": analysisRows,
	}).Parse(markdownTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("rendering report template: %w", err)
	}
	return buf.String(), nil
}

// analysisRows flattens the analysis map into sorted key/value rows for a
// markdown table.
func analysisRows(analysis map[string]any) []string {
	keys := make([]string, 0, len(analysis))
	for k := range analysis {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows []string
	for _, k := range keys {
		rows = append(rows, fmt.Sprintf("| %s | %v |", k, analysis[k]))
	}
	return rows
}

func slug(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func timestampSlug(ts string) string {
	replacer := strings.NewReplacer(":", "-", "T", "_", "Z", "", "+", "_")
	return replacer.Replace(ts)
}

// outcomeClass maps an outcome onto a CSS class name.
func outcomeClass(outcome string) string {
	switch outcome {
	case "Success":
		return "outcome-success"
	case "Partial Success":
		return "outcome-partial"
	case "Failure":
		return "outcome-failure"
	default:
		return "outcome-unknown"
	}
}

const markdownTemplate = `# Explanation Report

**Intent:** {{.Intent.ID}} - {{.Intent.Description}}

**Outcome:** {{.Outcome}}

**Generated:** {{.Timestamp}}

## Outcome Explanation

{{.OutcomeExplanation}}

## System Interpretation

{{.SystemInterpretation}}

{{if .KeyActions}}## Key Actions

{{range .KeyActions}}- {{.}}
{{end}}{{end}}
{{if .Analysis}}## Analysis

| Metric | Value |
|--------|-------|
{{range analysisRows .Analysis}}{{.}}
{{end}}{{end}}
{{if .Recommendations}}## Recommendations

{{range .Recommendations}}- **{{.Action}}** - {{.Reason}}
{{end}}{{end}}
{{if .InfluencingFactors}}## Influencing Factors

{{range .InfluencingFactors}}- {{.}}
{{end}}{{end}}
{{if .Session}}## Session

- Mode: {{.Session.Mode}}{{if .Session.Workflow}}
- Workflow: {{.Session.Workflow}}{{end}}{{if .Session.Model}}
- Model: {{.Session.Provider}}/{{.Session.Model}}{{end}}{{if .Session.Rounds}}
- Rounds: {{.Session.Rounds}}{{end}}{{if .Session.Warnings}}
- Warnings:
{{range .Session.Warnings}}  - {{.}}
{{end}}{{end}}
{{end}}`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; line-height: 1.6; }
h1, h2 { border-bottom: 1px solid #d1d9e0; padding-bottom: .3em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d1d9e0; padding: 6px 13px; text-align: left; }
th { background: #f6f8fa; }
.outcome-success strong { color: #1a7f37; }
.outcome-partial strong { color: #9a6700; }
.outcome-failure strong { color: #d1242f; }
.outcome-unknown strong { color: #59636e; }
code, pre { background: #f6f8fa; border-radius: 6px; }
pre { padding: 12px; overflow-x: auto; }
</style>
</head>
<body class="{{.Outcome}}">
{{.Content}}
</body>
</html>
`
