package model

// SearchResult is a single web search hit
type SearchResult struct {
	Title string `json:"title,omitempty"` // Empty when the engine returned no title
	URL   string `json:"url"`
}

// Stance describes the framing a search query was built with
type Stance string

const (
	StancePro     Stance = "pro"     // Benefits / support framing
	StanceCon     Stance = "con"     // Risks / criticism framing
	StanceNeutral Stance = "neutral" // Research / analysis framing
)

// Query is a web search query synthesized from a claim
type Query struct {
	Text   string `json:"text"`
	Stance Stance `json:"stance"`
}

// EvidenceChunk is one qualifying paragraph taken from one fetched page
type EvidenceChunk struct {
	Source    string        `json:"source,omitempty"` // Search result title
	URL       string        `json:"url"`
	Content   string        `json:"content"`
	Stance    Stance        `json:"stance,omitempty"`    // Stance of the query that surfaced the URL
	Authority AuthorityTier `json:"authority,omitempty"` // Source authority classification
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government, statistics offices, academic institutions
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML output
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name; unknown names map to TierUnknown
func (t *AuthorityTier) UnmarshalText(text []byte) error {
	*t = ParseAuthorityTier(string(text))
	return nil
}

// ParseAuthorityTier converts a tier name to an AuthorityTier
func ParseAuthorityTier(name string) AuthorityTier {
	switch name {
	case "primary":
		return TierPrimary
	case "secondary":
		return TierSecondary
	case "tertiary":
		return TierTertiary
	default:
		return TierUnknown
	}
}
