package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ppiankov/debatelens/internal/extract/adapters"
)

// ParagraphConfig controls which paragraphs qualify as evidence chunks
type ParagraphConfig struct {
	MinChars            int      // Minimum cleaned length in runes
	MaxChunks           int      // Per page; 0 means unlimited
	BoilerplateKeywords []string // Case-insensitive substrings that disqualify a paragraph
}

// ParagraphExtractor turns an HTML page into qualifying paragraph chunks
type ParagraphExtractor struct {
	config      ParagraphConfig
	boilerplate []string
	registry    *adapters.Registry
}

// NewParagraphExtractor creates a new paragraph extractor
func NewParagraphExtractor(config ParagraphConfig) *ParagraphExtractor {
	boilerplate := make([]string, 0, len(config.BoilerplateKeywords))
	for _, k := range config.BoilerplateKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			boilerplate = append(boilerplate, k)
		}
	}

	return &ParagraphExtractor{
		config:      config,
		boilerplate: boilerplate,
		registry:    adapters.NewRegistry(),
	}
}

// Extract returns the qualifying paragraphs of a page in document order.
// The second return value names the adapter that selected the paragraphs.
func (e *ParagraphExtractor) Extract(htmlContent string, pageURL string) ([]string, string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, "", err
	}

	stripNonContent(doc)

	adapter := e.registry.FindAdapter(pageURL, doc)

	var chunks []string
	for _, raw := range adapter.Paragraphs(doc) {
		text := CleanText(raw)
		if !e.Qualifies(text) {
			continue
		}
		chunks = append(chunks, text)
		if e.config.MaxChunks > 0 && len(chunks) >= e.config.MaxChunks {
			break
		}
	}

	return chunks, adapter.Name(), nil
}

// Qualifies reports whether cleaned paragraph text is long enough and free
// of boilerplate
func (e *ParagraphExtractor) Qualifies(text string) bool {
	if utf8.RuneCountInString(text) < e.config.MinChars {
		return false
	}
	return !e.IsBoilerplate(text)
}

// IsBoilerplate reports whether text contains a boilerplate keyword
func (e *ParagraphExtractor) IsBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range e.boilerplate {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// CleanText collapses every whitespace run to a single space and trims
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// stripNonContent removes script, style and noscript subtrees in place
func stripNonContent(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			switch c.Data {
			case "script", "style", "noscript":
				n.RemoveChild(c)
				c = next
				continue
			}
		}
		stripNonContent(c)
		c = next
	}
}
