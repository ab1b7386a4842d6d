package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// ArticleAdapter reads pages that mark their main content with <article>,
// <main> or role="main", which keeps navigation and footer paragraphs out
type ArticleAdapter struct {
	BaseAdapter
}

// NewArticleAdapter creates a new article adapter
func NewArticleAdapter() *ArticleAdapter {
	return &ArticleAdapter{}
}

// Name returns the adapter name
func (a *ArticleAdapter) Name() string {
	return "article"
}

// CanHandle checks whether the page declares a main content region
func (a *ArticleAdapter) CanHandle(_ string, doc *html.Node) bool {
	return doc != nil && len(a.regions(doc)) > 0
}

// Paragraphs returns the <p> text of the region holding the most paragraph
// text. Asides and figure captions are skipped. When that region holds less
// than a quarter of the page's paragraph text (a teaser card ahead of the
// real body, say) every paragraph on the page is returned instead.
func (a *ArticleAdapter) Paragraphs(doc *html.Node) []string {
	all := paragraphText(&a.BaseAdapter, doc, skipAsides)

	var best []string
	bestLen := 0
	for _, region := range a.regions(doc) {
		paras := paragraphText(&a.BaseAdapter, region, skipAsides)
		if n := textLen(paras); n > bestLen {
			best, bestLen = paras, n
		}
	}

	if bestLen == 0 || 4*bestLen < textLen(all) {
		return all
	}
	return best
}

// regions lists every <article>, <main> and role="main" element
func (a *ArticleAdapter) regions(doc *html.Node) []*html.Node {
	return a.FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			(n.Data == "article" || n.Data == "main" || a.GetAttribute(n, "role") == "main")
	}, nil)
}

func skipAsides(n *html.Node) bool {
	return isElement(n, "aside") || isElement(n, "figcaption")
}

// textLen counts non-space bytes so indentation does not tip the comparison
func textLen(paras []string) int {
	n := 0
	for _, p := range paras {
		n += len(strings.Join(strings.Fields(p), ""))
	}
	return n
}
