package model

// Competitor categories assigned by classification.
const (
	CategoryDirect     = "direct"
	CategoryIndirect   = "indirect"
	CategoryIrrelevant = "irrelevant"
)

// ClassifiedCompetitors buckets a competitor list by competitive threat.
// Every competitor that entered classification appears in exactly one bucket.
type ClassifiedCompetitors struct {
	Direct       []Competitor `json:"direct"`
	Indirect     []Competitor `json:"indirect"`
	Irrelevant   []Competitor `json:"irrelevant"`
	AIClassified bool         `json:"ai_classified"`
	Investigated []string     `json:"investigated,omitempty"`
}

// Total returns the number of classified competitors across all buckets.
func (c *ClassifiedCompetitors) Total() int {
	return len(c.Direct) + len(c.Indirect) + len(c.Irrelevant)
}

// AudienceMatch scores how well the local population fits a concept's
// target audience.
type AudienceMatch struct {
	Score       int    `json:"score"` // 0-100
	Explanation string `json:"explanation"`
}

// PricePositioning relates the concept's expected price level to the
// local market average.
type PricePositioning struct {
	Average        *float64 `json:"average,omitempty"`
	Label          string   `json:"label"`
	MatchesConcept bool     `json:"matches_concept"`
	ExpectedLevel  int      `json:"expected_level"` // 1-4
}

// Review is a single customer review fetched for a place.
type Review struct {
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

// PlaceReviews is the payload returned by the classifier's investigation
// tool: up to 5 reviews plus an editorial summary.
type PlaceReviews struct {
	Reviews          []Review `json:"reviews"`
	EditorialSummary string   `json:"editorial_summary,omitempty"`
}

// ConceptCheckResult is the viability report for one concept at one point.
type ConceptCheckResult struct {
	ID              string                 `json:"id"`
	Concept         string                 `json:"concept"`
	Point           Point                  `json:"point"`
	RadiusMeters    int                    `json:"radius_meters"`
	ViabilityScore  int                    `json:"viability_score"` // 0-100
	CompetitionScan string                 `json:"competition_scan"`
	GapNarrative    string                 `json:"gap_narrative"`
	AudienceMatch   AudienceMatch          `json:"audience_match"`
	Pricing         PricePositioning       `json:"pricing"`
	TopCompetitors  []Competitor           `json:"top_competitors"` // ≤5
	Opportunities   []string               `json:"opportunities"`
	Risks           []string               `json:"risks"`
	AIInsight       string                 `json:"ai_insight,omitempty"`
	QualityScore    *int                   `json:"quality_score,omitempty"`
	QualityNotes    []string               `json:"quality_notes,omitempty"`
	Classified      *ClassifiedCompetitors `json:"classified,omitempty"`
}
