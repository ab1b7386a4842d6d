package adapters

import "golang.org/x/net/html"

// GenericAdapter is the fallback adapter for unknown domains.
// It takes every <p> in the document.
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(string, *html.Node) bool {
	return true
}

// Paragraphs returns the text of every <p> element
func (a *GenericAdapter) Paragraphs(doc *html.Node) []string {
	return paragraphText(&a.BaseAdapter, doc, nil)
}

// paragraphText collects the text of every <p> under root. Subtrees matched
// by skip are excluded both around and inside paragraphs.
func paragraphText(b *BaseAdapter, root *html.Node, skip func(*html.Node) bool) []string {
	nodes := b.FindAll(root, func(n *html.Node) bool {
		return isElement(n, "p")
	}, skip)

	out := make([]string, 0, len(nodes))
	for _, p := range nodes {
		out = append(out, b.Text(p, skip))
	}
	return out
}
