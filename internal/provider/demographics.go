package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/cbs"
	"github.com/sells-group/location-intel/pkg/pdok"
)

// yearFallbacks is how many dataset years the bbox path walks back
// before giving up on the spatial lookup.
const yearFallbacks = 3

// DemographicsProvider resolves statistical-area figures for a point.
type DemographicsProvider struct {
	stats   cbs.Client
	geocode pdok.Client
	cache   *cache.Cache
}

// NewDemographicsProvider creates a demographics adapter.
func NewDemographicsProvider(stats cbs.Client, geocode pdok.Client, c *cache.Cache) *DemographicsProvider {
	return &DemographicsProvider{stats: stats, geocode: geocode, cache: c}
}

// Fetch returns demographics for the area around pt, or nil when no
// source could produce a row.
func (p *DemographicsProvider) Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.Demographics {
	if hit, ok := cache.GetJSON[model.Demographics](ctx, p.cache, pt, radiusMeters, cache.SourceDemographics); ok {
		return hit
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	row := p.byBBox(ctx, pt, radiusMeters)
	if row == nil {
		row = p.byAreaCode(ctx, pt)
	}
	if row == nil {
		return nil
	}

	demo := toDemographics(row)
	p.cache.Set(ctx, pt, radiusMeters, cache.SourceDemographics, demo)
	return demo
}

func (p *DemographicsProvider) byBBox(ctx context.Context, pt model.Point, radiusMeters int) *cbs.Neighbourhood {
	bbox := geo.BBoxAround(pt, radiusMeters)
	for year := cbs.LatestYear; year >= cbs.LatestYear-yearFallbacks; year-- {
		rows, err := p.stats.ByBBox(ctx, bbox, year)
		if err != nil {
			zap.L().Debug("demographics bbox lookup failed",
				zap.Int("year", year), zap.Error(err))
			continue
		}
		if len(rows) > 0 {
			return &rows[0]
		}
	}
	return nil
}

func (p *DemographicsProvider) byAreaCode(ctx context.Context, pt model.Point) *cbs.Neighbourhood {
	addr, err := p.geocode.ReverseGeocode(ctx, pt.Lat, pt.Lng)
	if err != nil || addr == nil || addr.AreaCode == "" {
		if err != nil {
			zap.L().Debug("demographics reverse geocode failed", zap.Error(err))
		}
		return nil
	}

	for _, dataset := range cbs.DatasetVersions {
		row, err := p.stats.ByCode(ctx, addr.AreaCode, dataset)
		if err != nil {
			zap.L().Debug("demographics area code lookup failed",
				zap.String("dataset", dataset), zap.Error(err))
			continue
		}
		if row != nil {
			return row
		}
	}
	return nil
}

// toDemographics maps a raw neighbourhood row to the model, translating
// suppressed sentinel values to absent fields.
func toDemographics(n *cbs.Neighbourhood) *model.Demographics {
	demo := &model.Demographics{
		AreaCode:     n.Code,
		AreaName:     n.Name,
		Municipality: n.Municipality,
	}
	if n.Population > cbs.Suppressed {
		demo.Population = n.Population
	}
	if n.AvgIncome > cbs.Suppressed {
		// source reports thousands of euro per inhabitant
		income := n.AvgIncome * 1000
		demo.AvgIncome = &income
	}
	if n.PctYoung > cbs.Suppressed && n.PctWorking > cbs.Suppressed && n.PctSenior > cbs.Suppressed {
		demo.AgeDistribution = model.AgeDistribution{
			YoungPct:   n.PctYoung,
			WorkingPct: n.PctWorking,
			SeniorPct:  n.PctSenior,
		}
	}
	if n.Density > cbs.Suppressed {
		d := n.Density
		demo.Density = &d
	}
	if n.Households > cbs.Suppressed {
		h := n.Households
		demo.Households = &h
	}
	if n.PctSingle > cbs.Suppressed {
		s := n.PctSingle
		demo.SinglePersonPct = &s
	}
	return demo
}
