// Package rules holds the static keyword tables and pattern matchers the
// classification cascade consults before any remote oracle.
//
// Every matcher works on lower-cased text with literal substring search. There
// is no stemming and no word-boundary check: "claim" matches inside
// "claimant". That imprecision is part of the observable behavior.
package rules

import (
	"regexp"
	"strings"
)

var (
	yearPattern   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	numberPattern = regexp.MustCompile(`\d+(\.\d+)?%?`)
)

// AuthoritativeSources are institutional phrases that mark a claim as settled fact
var AuthoritativeSources = []string{
	"official data",
	"government data",
	"according to official",
	"according to government",
	"world bank",
	"imf",
	"un report",
	"census",
	"statistics bureau",
	"ministry of",
}

// AttributionMarkers signal reported stance
var AttributionMarkers = []string{
	"argue", "argues", "argued",
	"claim", "claims",
	"believe", "believes",
	"warn", "warns", "warned",
	"critic", "critics",
	"supporter", "supporters",
	"experts say",
	"scientists say",
	"economists say",
	"analysts say",
}

// ModalMarkers signal uncertainty or prediction
var ModalMarkers = []string{
	"could", "may", "might", "likely", "unlikely",
	"potential", "risk", "threat",
	"expected to", "projected to",
	"forecast", "estimate",
	"continues to",
}

// ImpactMarkers signal evaluative transformation language
var ImpactMarkers = []string{
	"revolutionize", "revolutionise", "revolutionary",
	"transform", "disrupt",
	"game changer", "game-changer",
	"reshape", "overhaul",
	"paradigm shift",
	"unprecedented",
	"dramatically",
	"will change",
	"will replace",
	"will end",
}

// ScientificMarkers signal neutral reporting of ongoing research or missions
var ScientificMarkers = []string{
	"research", "study", "studies",
	"experiment", "mission",
	"spacecraft", "telescope", "observatory",
	"clinical trial", "laboratory",
	"orbit", "probe", "rover",
	"nasa", "isro",
}

// Normalize lower-cases text. It is the only normalization the matchers apply.
func Normalize(text string) string {
	return strings.ToLower(text)
}

// HasYear reports whether text contains a 19xx/20xx year token
func HasYear(text string) bool {
	return yearPattern.MatchString(text)
}

// HasNumber reports whether text contains a numeric or percentage token.
// A year token counts as a number.
func HasNumber(text string) bool {
	return numberPattern.MatchString(text)
}

// HasAuthoritativeSignal is true when text carries both a year and a number,
// or names an authoritative source.
func HasAuthoritativeSignal(text string) bool {
	_, ok := MatchAuthoritative(text)
	return ok
}

// MatchAuthoritative returns the reason the authoritative signal fired
func MatchAuthoritative(text string) (string, bool) {
	text = Normalize(text)
	if HasYear(text) && HasNumber(text) {
		return "year+number", true
	}
	return firstMatch(text, AuthoritativeSources)
}

// HasAttributionMarker reports whether text contains an attribution marker
func HasAttributionMarker(text string) bool {
	_, ok := MatchAttribution(text)
	return ok
}

// MatchAttribution returns the first attribution marker found in text
func MatchAttribution(text string) (string, bool) {
	return firstMatch(Normalize(text), AttributionMarkers)
}

// HasModalMarker reports whether text contains a modality marker
func HasModalMarker(text string) bool {
	_, ok := MatchModal(text)
	return ok
}

// MatchModal returns the first modality marker found in text
func MatchModal(text string) (string, bool) {
	return firstMatch(Normalize(text), ModalMarkers)
}

// HasImpactMarker reports whether text contains an impact marker
func HasImpactMarker(text string) bool {
	_, ok := MatchImpact(text)
	return ok
}

// MatchImpact returns the first impact marker found in text
func MatchImpact(text string) (string, bool) {
	return firstMatch(Normalize(text), ImpactMarkers)
}

// HasScientificContext reports whether text contains a scientific context marker
func HasScientificContext(text string) bool {
	_, ok := MatchScientific(text)
	return ok
}

// MatchScientific returns the first scientific context marker found in text
func MatchScientific(text string) (string, bool) {
	return firstMatch(Normalize(text), ScientificMarkers)
}

// firstMatch returns the first marker (in table order) contained in text
func firstMatch(text string, markers []string) (string, bool) {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return marker, true
		}
	}
	return "", false
}
