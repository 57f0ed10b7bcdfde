// Package digest renders the final article list as a category-grouped HTML
// document.
package digest

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"time"

	"newsdigest/internal/feed"
)

type categorySection struct {
	Name     string
	Articles []feed.Article
}

type digestData struct {
	Timestamp   string
	Total       int
	SourceCount int
	Sections    []categorySection
}

var pageTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Science &amp; Tech News Digest</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 900px; margin: 0 auto; padding: 1em; color: #111827; }
        .header { text-align: center; margin-bottom: 2em; }
        .timestamp, .stats { color: #6b7280; }
        .category-section { margin-bottom: 3em; }
        .category-title {
            font-size: 1.5em; color: #1e40af; margin-bottom: 1em;
            border-bottom: 2px solid #e5e7eb; padding-bottom: 0.5em;
        }
        .article { margin-bottom: 1.5em; }
        .title a { color: #111827; text-decoration: none; font-weight: 600; }
        .source-tag {
            background: #3b82f6; color: white; padding: 0.2em 0.5em;
            border-radius: 4px; font-size: 0.75em; margin-left: 0.5em;
        }
        .summary { margin-top: 0.3em; }
        .published { color: #6b7280; font-size: 0.85em; }
        .footer { text-align: center; color: #6b7280; margin-top: 3em; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>Science &amp; Tech News Digest</h1>
        <div class="timestamp">Generated on {{.Timestamp}}</div>
        <div class="stats">{{.Total}} articles from {{.SourceCount}} sources</div>
    </div>
{{range .Sections}}
    <div class="category-section">
        <h2 class="category-title">{{.Name}} ({{len .Articles}} articles)</h2>
{{range .Articles}}
        <div class="article">
            <div class="title">
                <a href="{{.Link}}" target="_blank">{{.Title}}</a>
                <span class="source-tag">{{.Source}}</span>
            </div>
            <div class="summary">{{if .Summary}}{{.Summary}}{{else}}Summary not available{{end}}</div>
{{if .Published}}            <div class="published">Published: {{.Published}}</div>
{{end}}        </div>
{{end}}    </div>
{{end}}
    <div class="footer">Powered by AI &middot; Updated Daily</div>
</div>
</body>
</html>
`))

// Render writes the grouped digest document to w. Categories are emitted in
// alphabetical order; within a category, articles keep their merged order.
func Render(w io.Writer, articles []feed.Article) error {
	grouped := map[string][]feed.Article{}
	srcs := map[string]struct{}{}
	for _, a := range articles {
		grouped[a.Category] = append(grouped[a.Category], a)
		srcs[a.Source] = struct{}{}
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]categorySection, 0, len(names))
	for _, name := range names {
		sections = append(sections, categorySection{Name: name, Articles: grouped[name]})
	}

	return pageTemplate.Execute(w, digestData{
		Timestamp:   time.Now().Format("2006-01-02 15:04:05"),
		Total:       len(articles),
		SourceCount: len(srcs),
		Sections:    sections,
	})
}

// WriteFile renders the digest to path.
func WriteFile(path string, articles []feed.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create digest file: %w", err)
	}
	defer f.Close()

	if err := Render(f, articles); err != nil {
		return fmt.Errorf("render digest: %w", err)
	}
	return nil
}
