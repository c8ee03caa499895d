// Package viability answers the question "would this concept work at
// this location": it composes the location analysis, a concept-specific
// venue search, and competitor classification into a scored report.
package viability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/internal/quality"
	"github.com/sells-group/location-intel/pkg/anthropic"
)

// checkTimeout is the global deadline for one concept check. This is the
// only operation allowed to surface a hard timeout to the caller; past
// this point there is no simpler method left to fall back to.
const checkTimeout = 25 * time.Second

const maxTopCompetitors = 5

// LocationAnalyzer produces the composite location analysis.
type LocationAnalyzer interface {
	Analyze(ctx context.Context, pt model.Point, radiusMeters int) (*model.LocationAnalysis, error)
}

// ConceptSearcher runs a free-form venue search for a concept.
type ConceptSearcher interface {
	SearchConcept(ctx context.Context, concept string, pt model.Point, radiusMeters int) []model.Competitor
}

// CompetitorClassifier buckets competitors for a concept.
type CompetitorClassifier interface {
	Classify(ctx context.Context, concept string, competitors []model.Competitor, keywords []string, locationContext string) *model.ClassifiedCompetitors
}

// Engine runs concept viability checks.
type Engine struct {
	analyzer   LocationAnalyzer
	searcher   ConceptSearcher
	classifier CompetitorClassifier
	llm        anthropic.Client
	cache      *cache.Cache
	model      string
}

// New creates an engine. searcher and llm may be nil when the commercial
// and LLM credentials are not configured.
func New(analyzer LocationAnalyzer, searcher ConceptSearcher, classifier CompetitorClassifier, llm anthropic.Client, c *cache.Cache) *Engine {
	if c == nil {
		c = cache.New(nil)
	}
	return &Engine{
		analyzer:   analyzer,
		searcher:   searcher,
		classifier: classifier,
		llm:        llm,
		cache:      c,
		model:      insightModel,
	}
}

// CheckConcept evaluates one concept at one point. The whole check runs
// under a 25 s deadline that is propagated into every network call.
func (e *Engine) CheckConcept(ctx context.Context, concept string, pt model.Point, radiusMeters int) (*model.ConceptCheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var (
		analysis    *model.LocationAnalysis
		textResults []model.Competitor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analysis, err = e.analyzer.Analyze(gctx, pt, radiusMeters)
		return err
	})
	g.Go(func() error {
		if e.searcher != nil {
			textResults = e.searcher.SearchConcept(gctx, concept, pt, radiusMeters)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entry := LookupConcept(concept)

	// the text search is more precise when it found anything at all
	competitors := textResults
	if len(competitors) == 0 {
		competitors = analysis.Competitors
	}

	classified := e.classifier.Classify(ctx, concept, competitors, entry.Keywords, analysis.Summary)

	pricing := pricePositioning(classified, entry.Audience.PriceLevel)
	audience := audienceMatch(entry.Audience, analysis.Demographics)
	directCount := len(classified.Direct)

	opportunities, risks := assembleSignals(
		concept, classified, pricing, analysis.Transit, audience,
		analysis.FootTraffic, analysis.Building, analysis.OfficeCount,
	)

	result := &model.ConceptCheckResult{
		ID:           uuid.NewString(),
		Concept:      concept,
		Point:        pt,
		RadiusMeters: radiusMeters,
		ViabilityScore: viabilityScore(
			directCount, classified.Total(), analysis.Transit, audience.Score,
			analysis.FootTraffic, analysis.BuzzIndex, pricing,
		),
		CompetitionScan: fmt.Sprintf("Found %d direct and %d indirect competitors within %dm.",
			directCount, len(classified.Indirect), radiusMeters),
		GapNarrative:   gapNarrative(concept, directCount, classified.Total()),
		AudienceMatch:  audience,
		Pricing:        pricing,
		TopCompetitors: topCompetitors(classified),
		Opportunities:  opportunities,
		Risks:          risks,
		Classified:     classified,
	}

	result.AIInsight = e.generateInsight(ctx, concept, pt, result, analysis)

	assessment := quality.Assess(result, analysis)
	result.QualityScore = &assessment.Score
	result.QualityNotes = append(assessment.Notes,
		fmt.Sprintf("data completeness: %d%%", assessment.Completeness))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// topCompetitors keeps the closest direct competitors, padded with
// indirect ones up to the cap. Both buckets are already distance sorted.
func topCompetitors(classified *model.ClassifiedCompetitors) []model.Competitor {
	top := make([]model.Competitor, 0, maxTopCompetitors)
	for _, comp := range classified.Direct {
		if len(top) == maxTopCompetitors {
			return top
		}
		top = append(top, comp)
	}
	for _, comp := range classified.Indirect {
		if len(top) == maxTopCompetitors {
			return top
		}
		top = append(top, comp)
	}
	return top
}
