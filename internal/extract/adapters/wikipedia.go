package adapters

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// citationMarker matches inline reference markers such as [12], [a] and
// [citation needed]
var citationMarker = regexp.MustCompile(`\[(\d+|[a-z]|citation needed|note \d+)\]`)

// WikipediaAdapter extracts content specifically from Wikipedia pages
type WikipediaAdapter struct {
	BaseAdapter
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL
func (a *WikipediaAdapter) CanHandle(rawURL string, _ *html.Node) bool {
	return strings.Contains(strings.ToLower(rawURL), "wikipedia.org")
}

// Paragraphs returns article body paragraphs without reference markers,
// infoboxes, navboxes or edit links
func (a *WikipediaAdapter) Paragraphs(doc *html.Node) []string {
	// Find the main content area
	content := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			(a.HasClass(n, "mw-parser-output") || a.GetAttribute(n, "id") == "mw-content-text")
	})
	if content == nil {
		content = doc
	}

	// Paragraphs inside infoboxes and navboxes are metadata, not prose
	var prose []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" &&
			(a.HasClass(n, "infobox") || a.HasClass(n, "navbox") || a.HasClass(n, "sidebar")) {
			return
		}
		if isElement(n, "p") {
			if !a.HasClass(n, "mw-empty-elt") {
				prose = append(prose, n)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(content)

	skip := func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		return (n.Data == "sup" && a.HasClass(n, "reference")) ||
			a.HasClass(n, "mw-editsection") ||
			a.HasClass(n, "noprint")
	}

	out := make([]string, 0, len(prose))
	for _, p := range prose {
		out = append(out, citationMarker.ReplaceAllString(a.Text(p, skip), ""))
	}
	return out
}
