// Package analyzer fans out to every data source for a point and folds
// whatever landed into one composite picture. Sources fail independently;
// a source that produced nothing is simply absent from the result.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/internal/provider"
)

// Summary sentence thresholds.
const (
	nationalAvgIncome = 32000.0
	affluentFactor    = 1.1
	youthSkewPct      = 30.0
	transitExcellent  = 8.0
	highFootTraffic   = 2000
)

// DemographicsSource resolves area statistics.
type DemographicsSource interface {
	Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.Demographics
}

// BuildingSource resolves building and zoning data.
type BuildingSource interface {
	Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.BuildingInfo
}

// TransitSource resolves public transport accessibility.
type TransitSource interface {
	Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.TransitAnalysis
}

// OpenMapSource resolves the free-map baseline.
type OpenMapSource interface {
	Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.OpenMapAnalysis
}

// CommercialSource resolves venues from the commercial places API.
type CommercialSource interface {
	Fetch(ctx context.Context, pt model.Point, radiusMeters int) []model.Competitor
}

// Analyzer composes the provider adapters into full location analyses.
type Analyzer struct {
	demographics DemographicsSource
	building     BuildingSource
	transit      TransitSource
	openmap      OpenMapSource
	commercial   CommercialSource
	cache        *cache.Cache
}

// New creates an analyzer over the given sources.
func New(
	demographics DemographicsSource,
	building BuildingSource,
	transit TransitSource,
	openmap OpenMapSource,
	commercial CommercialSource,
	c *cache.Cache,
) *Analyzer {
	if c == nil {
		c = cache.New(nil)
	}
	return &Analyzer{
		demographics: demographics,
		building:     building,
		transit:      transit,
		openmap:      openmap,
		commercial:   commercial,
		cache:        c,
	}
}

// Analyze builds the composite analysis for a point. All sources are
// queried concurrently; individual failures downgrade the data quality
// instead of aborting. The only hard error is context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, pt model.Point, radiusMeters int) (*model.LocationAnalysis, error) {
	if hit, ok := cache.GetJSON[model.LocationAnalysis](ctx, a.cache, pt, radiusMeters, cache.SourceFullAnalysis); ok {
		return hit, nil
	}

	var (
		demographics *model.Demographics
		building     *model.BuildingInfo
		transit      *model.TransitAnalysis
		openmap      *model.OpenMapAnalysis
		commercial   []model.Competitor
	)

	// Settle all sources; each goroutine writes its own slot and never
	// returns an error, so one failed source cannot cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		demographics = a.demographics.Fetch(gctx, pt, radiusMeters)
		return nil
	})
	g.Go(func() error {
		building = a.building.Fetch(gctx, pt, radiusMeters)
		return nil
	})
	g.Go(func() error {
		transit = a.transit.Fetch(gctx, pt, radiusMeters)
		return nil
	})
	g.Go(func() error {
		openmap = a.openmap.Fetch(gctx, pt, radiusMeters)
		return nil
	})
	g.Go(func() error {
		commercial = a.commercial.Fetch(gctx, pt, radiusMeters)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	footTraffic := provider.EstimateFootTraffic(demographics, transit, openmap, commercial)

	analysis := &model.LocationAnalysis{
		Point:        pt,
		RadiusMeters: radiusMeters,
		Demographics: demographics,
		Building:     building,
		Transit:      transit,
		FootTraffic:  footTraffic,
		FetchedAt:    time.Now().UTC(),
	}

	var openMapCompetitors []model.Competitor
	if openmap != nil {
		openMapCompetitors = openmap.Competitors
		analysis.BuzzIndex = openmap.BuzzIndex
		analysis.Complementary = openmap.Complementary
		analysis.OfficeCount = openmap.OfficeCount
	}
	analysis.Competitors = MergeCompetitors(commercial, openMapCompetitors)

	analysis.DataSources = contributingSources(demographics, building, transit, openmap, commercial)
	analysis.DataQuality = dataQuality(len(analysis.DataSources))
	analysis.Summary = buildSummary(openmap, demographics, transit, footTraffic)

	if openmap == nil {
		zap.L().Warn("baseline open-map source unavailable, analysis degraded",
			zap.Float64("lat", pt.Lat), zap.Float64("lng", pt.Lng))
	}

	a.cache.Set(ctx, pt, radiusMeters, cache.SourceFullAnalysis, analysis)
	return analysis, nil
}

func contributingSources(
	demographics *model.Demographics,
	building *model.BuildingInfo,
	transit *model.TransitAnalysis,
	openmap *model.OpenMapAnalysis,
	commercial []model.Competitor,
) []string {
	var sources []string
	if demographics != nil {
		sources = append(sources, cache.SourceDemographics)
	}
	if building != nil {
		sources = append(sources, cache.SourceBuilding)
	}
	if transit != nil {
		sources = append(sources, cache.SourceTransit)
	}
	if openmap != nil {
		sources = append(sources, cache.SourceOpenMap)
	}
	if commercial != nil {
		sources = append(sources, cache.SourceCommercial)
	}
	return sources
}

func dataQuality(sourceCount int) model.DataQuality {
	switch {
	case sourceCount >= 5:
		return model.DataQualityFull
	case sourceCount >= 3:
		return model.DataQualityPartial
	default:
		return model.DataQualityBasic
	}
}

// buildSummary appends conditional sentences to the open-map baseline,
// each gated by its own threshold.
func buildSummary(
	openmap *model.OpenMapAnalysis,
	demographics *model.Demographics,
	transit *model.TransitAnalysis,
	footTraffic *model.FootTraffic,
) string {
	summary := "No baseline map data available for this location."
	if openmap != nil {
		summary = openmap.Summary
	}

	if demographics != nil && demographics.AvgIncome != nil && *demographics.AvgIncome > nationalAvgIncome*affluentFactor {
		summary += fmt.Sprintf(" Average income (€%.0f) is well above the national average.", *demographics.AvgIncome)
	}
	if demographics != nil && demographics.AgeDistribution.YoungPct >= youthSkewPct {
		summary += fmt.Sprintf(" The area skews young (%.0f%% under 25).", demographics.AgeDistribution.YoungPct)
	}
	if transit != nil && transit.Score >= transitExcellent {
		summary += " Public transport accessibility is excellent."
	}
	if footTraffic != nil && footTraffic.DailyEstimate >= highFootTraffic {
		summary += fmt.Sprintf(" Estimated foot traffic is high (~%d passers-by per day).", footTraffic.DailyEstimate)
	}
	return summary
}
