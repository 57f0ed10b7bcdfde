// Package sources holds the static registry of feed endpoints.
package sources

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Source describes one external feed with its item cap and display category.
type Source struct {
	Name        string `yaml:"-"`
	URL         string `yaml:"url"`
	MaxArticles int    `yaml:"max_articles"`
	Category    string `yaml:"category"`
}

// Registry maps source names to their configuration.
type Registry map[string]Source

type sourcesFile struct {
	Sources map[string]Source `yaml:"sources"`
}

// Load reads the YAML registry from path. A missing file falls back to the
// built-in defaults; a malformed file is an error so a typo never silently
// drops every feed.
func Load(path string) (Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("read sources config %s: %w", path, err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sources config %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return Defaults(), nil
	}

	reg := make(Registry, len(f.Sources))
	for name, src := range f.Sources {
		src.Name = name
		if src.MaxArticles <= 0 {
			src.MaxArticles = 5
		}
		if src.Category == "" {
			src.Category = "General"
		}
		reg[name] = src
	}
	return reg, nil
}

// Filter keeps only the named sources. Unknown names are ignored; an empty
// list means no filtering.
func (r Registry) Filter(names []string) Registry {
	if len(names) == 0 {
		return r
	}
	filtered := Registry{}
	for _, name := range names {
		if src, ok := r[name]; ok {
			filtered[name] = src
		}
	}
	return filtered
}

// Names returns source names in stable order, for logging.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults is the compiled-in feed set used when no config file is present.
func Defaults() Registry {
	reg := Registry{
		"science_daily":        {URL: "https://www.sciencedaily.com/rss/all.xml", MaxArticles: 10, Category: "Science"},
		"nature_news":          {URL: "https://www.nature.com/news.rss", MaxArticles: 8, Category: "Research"},
		"phys_org":             {URL: "https://phys.org/rss-feed/", MaxArticles: 8, Category: "Physics"},
		"mit_news":             {URL: "https://news.mit.edu/rss/feed", MaxArticles: 6, Category: "Technology"},
		"pcgamer":              {URL: "https://www.pcgamer.com/rss/", MaxArticles: 8, Category: "Gaming"},
		"techcrunch_ai":        {URL: "https://techcrunch.com/category/artificial-intelligence/feed/", MaxArticles: 10, Category: "AI & Tech"},
		"the_verge":            {URL: "https://www.theverge.com/rss/index.xml", MaxArticles: 8, Category: "Technology"},
		"ai_news":              {URL: "https://artificialintelligence-news.com/feed/", MaxArticles: 6, Category: "AI & Tech"},
		"variety_movies":       {URL: "https://variety.com/c/film/feed/", MaxArticles: 3, Category: "Entertainment"},
		"hollywood_reporter":   {URL: "https://www.hollywoodreporter.com/c/movies/feed/", MaxArticles: 3, Category: "Entertainment"},
		"entertainment_weekly": {URL: "https://ew.com/tag/movies/feed/", MaxArticles: 3, Category: "Entertainment"},
		"hacker_news":          {URL: "https://hnrss.org/frontpage", MaxArticles: 10, Category: "Tech News"},
	}
	for name, src := range reg {
		src.Name = name
		reg[name] = src
	}
	return reg
}
