// Package quality self-assesses a finished concept check: how much data
// backed it, how trustworthy the classification was, and whether the
// result is internally consistent. Pure function, no I/O.
package quality

import (
	"fmt"
	"time"

	"github.com/sells-group/location-intel/internal/model"
)

// Scoring bands. They sum to at most 100.
const (
	completenessPtsPerCheck = 8 // five checks, 40 pts total

	classificationInvestigated = 12
	classificationAgent        = 8
	classificationFallback     = 3

	richnessEnoughCompetitors = 5
	richnessHasRating         = 4
	richnessHasPriceData      = 4

	consistencySignalPts = 8
	consistencyRangePts  = 7

	freshnessPts    = 15
	freshnessWindow = 24 * time.Hour

	minCompetitorsForRichness = 3
)

// Assessment is the scorer's output.
type Assessment struct {
	Score        int      // 0-100
	Completeness int      // 0-100, fraction of the five named sources present
	Notes        []string // one caveat per failed check
}

// Assess grades a concept check against the analysis it was built from.
func Assess(result *model.ConceptCheckResult, analysis *model.LocationAnalysis) Assessment {
	var a Assessment

	a.scoreCompleteness(analysis)
	a.scoreClassification(result.Classified)
	a.scoreRichness(result.Classified)
	a.scoreConsistency(result, analysis)
	a.scoreFreshness(analysis)

	return a
}

func (a *Assessment) check(ok bool, points int, caveat string) {
	if ok {
		a.Score += points
		return
	}
	a.Notes = append(a.Notes, caveat)
}

func (a *Assessment) scoreCompleteness(analysis *model.LocationAnalysis) {
	hasCommercial := false
	for _, comp := range analysis.Competitors {
		if comp.Source == model.SourceCommercial {
			hasCommercial = true
			break
		}
	}
	footSources := 0
	if analysis.FootTraffic != nil {
		footSources = len(analysis.FootTraffic.Sources)
	}

	checks := []struct {
		ok     bool
		caveat string
	}{
		{analysis.Demographics != nil, "no demographic data for this area"},
		{analysis.Transit != nil, "no public transport data"},
		{hasCommercial, "no commercial venue data; competitor details are limited"},
		{footSources >= 3, "foot traffic estimate is based on few sources"},
		{analysis.Building != nil, "no building or zoning data"},
	}

	present := 0
	for _, c := range checks {
		a.check(c.ok, completenessPtsPerCheck, c.caveat)
		if c.ok {
			present++
		}
	}
	a.Completeness = present * 100 / len(checks)
}

func (a *Assessment) scoreClassification(classified *model.ClassifiedCompetitors) {
	switch {
	case classified == nil:
		a.Notes = append(a.Notes, "no competitor classification was performed")
	case classified.AIClassified && len(classified.Investigated) > 0:
		a.Score += classificationInvestigated
	case classified.AIClassified:
		a.Score += classificationAgent
		a.Notes = append(a.Notes, "no competitor was investigated via reviews")
	default:
		a.Score += classificationFallback
		a.Notes = append(a.Notes, "competitors were classified by keyword matching only")
	}
}

func (a *Assessment) scoreRichness(classified *model.ClassifiedCompetitors) {
	var all []model.Competitor
	if classified != nil {
		all = append(all, classified.Direct...)
		all = append(all, classified.Indirect...)
		all = append(all, classified.Irrelevant...)
	}

	hasRating, hasPrice := false, false
	for _, comp := range all {
		if comp.Rating != nil {
			hasRating = true
		}
		if comp.PriceLevel != nil {
			hasPrice = true
		}
	}

	a.check(len(all) >= minCompetitorsForRichness, richnessEnoughCompetitors,
		fmt.Sprintf("only %d competitors found; the competition picture may be incomplete", len(all)))
	a.check(hasRating, richnessHasRating, "no competitor carries a rating")
	a.check(hasPrice, richnessHasPriceData, "no competitor carries price information")
}

func (a *Assessment) scoreConsistency(result *model.ConceptCheckResult, analysis *model.LocationAnalysis) {
	// a high score with mostly risks, or a low score with mostly
	// opportunities, points at a scoring inconsistency
	signalsAligned := true
	if result.ViabilityScore >= 70 && len(result.Risks) > len(result.Opportunities) {
		signalsAligned = false
	}
	if result.ViabilityScore <= 30 && len(result.Opportunities) > len(result.Risks) {
		signalsAligned = false
	}
	a.check(signalsAligned, consistencySignalPts,
		"viability score is out of step with the opportunity and risk signals")

	extreme := result.ViabilityScore >= 85 || result.ViabilityScore <= 15
	a.check(!(extreme && len(analysis.DataSources) < 2), consistencyRangePts,
		"an extreme viability score rests on very little data")
}

func (a *Assessment) scoreFreshness(analysis *model.LocationAnalysis) {
	fresh := !analysis.FetchedAt.IsZero() && time.Since(analysis.FetchedAt) < freshnessWindow
	a.check(fresh, freshnessPts, "the underlying analysis is more than a day old")
}
