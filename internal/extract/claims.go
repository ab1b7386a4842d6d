package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ppiankov/debatelens/internal/llm"
	"github.com/ppiankov/debatelens/internal/logging"
	"github.com/ppiankov/debatelens/internal/model"
)

// Sentences shorter than this are not worth a claim
const minSentenceChars = 15

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([.,;:!?])`)
	missingSpace     = regexp.MustCompile(`([.,;:!?])([A-Za-z])`)
	fragmentSplit    = regexp.MustCompile(`[.;]`)
	numericOnly      = regexp.MustCompile(`^[\d\s.%]+$`)
	numberToken      = regexp.MustCompile(`\d+\.?\d*%?`)
)

// abbreviations that end with a period but do not end a sentence
var abbreviations = map[string]bool{
	"mr.": true, "mrs.": true, "ms.": true, "dr.": true, "prof.": true,
	"st.": true, "vs.": true, "etc.": true, "e.g.": true, "i.e.": true,
	"u.s.": true, "u.k.": true, "inc.": true, "ltd.": true, "co.": true,
	"jan.": true, "feb.": true, "aug.": true, "sept.": true, "oct.": true,
	"nov.": true, "dec.": true, "no.": true, "approx.": true,
}

// Rewriter turns one sentence into one or more claim fragments
type Rewriter interface {
	Rewrite(ctx context.Context, sentence string) (string, error)
}

// ClaimExtractor splits a paragraph into atomic claims with sequential ids
type ClaimExtractor struct {
	rewriter Rewriter
	logger   *zap.Logger
}

// NewClaimExtractor creates a new claim extractor. Without a rewriter every
// qualifying sentence becomes one claim.
func NewClaimExtractor(rewriter Rewriter, logger *zap.Logger) *ClaimExtractor {
	return &ClaimExtractor{
		rewriter: rewriter,
		logger:   logging.OrNop(logger),
	}
}

// Extract returns the claims in a paragraph, numbered from 1
func (e *ClaimExtractor) Extract(ctx context.Context, paragraph string) []model.Claim {
	paragraph = Preprocess(paragraph)
	if paragraph == "" {
		return nil
	}

	var claims []model.Claim
	seen := make(map[string]bool)

	add := func(text string) {
		key := strings.ToLower(text)
		if seen[key] {
			return
		}
		seen[key] = true
		claims = append(claims, model.Claim{ID: len(claims) + 1, Text: text})
	}

	for _, sentence := range SplitSentences(paragraph) {
		if len(sentence) < minSentenceChars {
			continue
		}

		if e.rewriter == nil {
			add(sentence)
			continue
		}

		rewritten, err := e.rewriter.Rewrite(ctx, sentence)
		if err != nil {
			e.logger.Debug("claim rewrite failed, keeping sentence", zap.Error(err))
			add(sentence)
			continue
		}

		for _, fragment := range fragmentSplit.Split(rewritten, -1) {
			if claim, ok := acceptFragment(strings.TrimSpace(fragment), sentence); ok {
				add(claim)
			}
		}
	}

	return claims
}

// acceptFragment filters one rewritten fragment. When the fragment dropped
// numbers present in the sentence, the sentence itself is used instead.
func acceptFragment(fragment, sentence string) (string, bool) {
	if len(fragment) < 10 {
		return "", false
	}
	if countLetters(fragment) < 5 {
		return "", false
	}
	if numericOnly.MatchString(fragment) {
		return "", false
	}

	sentenceNumbers := numberToken.FindAllString(sentence, -1)
	fragmentNumbers := numberToken.FindAllString(fragment, -1)
	if len(sentenceNumbers) > 0 && len(fragmentNumbers) < len(sentenceNumbers) {
		return sentence, true
	}
	return fragment, true
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// Preprocess collapses whitespace and normalizes spacing around punctuation
func Preprocess(text string) string {
	text = CleanText(text)
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = missingSpace.ReplaceAllString(text, "$1 $2")
	return text
}

// SplitSentences splits on ., ! and ? followed by whitespace, keeping
// common abbreviations and decimals intact
func SplitSentences(text string) []string {
	words := strings.Fields(text)

	var sentences []string
	var current []string
	for i, word := range words {
		current = append(current, word)
		if !endsSentence(word) {
			continue
		}
		// A lower-case continuation means the period was not a sentence end
		if i+1 < len(words) && !startsSentence(words[i+1]) {
			continue
		}
		sentences = append(sentences, strings.Join(current, " "))
		current = nil
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	return sentences
}

func endsSentence(word string) bool {
	trimmed := strings.TrimRight(word, `"')]”’`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '!', '?':
		return true
	case '.':
		// Single-letter initials ("J.", "U.") never end a sentence
		if len(trimmed) == 2 && unicode.IsLetter(rune(trimmed[0])) {
			return false
		}
		return !abbreviations[strings.ToLower(trimmed)]
	}
	return false
}

func startsSentence(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
		if unicode.IsDigit(r) {
			return true
		}
	}
	return true
}

// LLMRewriter rewrites sentences into claims with a generative provider
type LLMRewriter struct {
	provider llm.Provider
}

// NewLLMRewriter creates a rewriter backed by provider
func NewLLMRewriter(provider llm.Provider) *LLMRewriter {
	return &LLMRewriter{provider: provider}
}

// Rewrite asks the provider for the claims in one sentence
func (r *LLMRewriter) Rewrite(ctx context.Context, sentence string) (string, error) {
	resp, err := r.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:    "Extract factual claims from the following sentence. Return the claim text only:\n" + sentence,
		MaxTokens: 128,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
