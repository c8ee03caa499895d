package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/pdok"
)

// hospitalityUses are the zoning designations that allow running a
// hospitality venue without a change-of-use permit.
var hospitalityUses = map[string]bool{
	"bijeenkomstfunctie": true,
	"winkelfunctie":      true,
	"logiesfunctie":      true,
}

// BuildingProvider resolves building and zoning data for a point.
type BuildingProvider struct {
	geocode pdok.Client
	cache   *cache.Cache
}

// NewBuildingProvider creates a building adapter.
func NewBuildingProvider(geocode pdok.Client, c *cache.Cache) *BuildingProvider {
	return &BuildingProvider{geocode: geocode, cache: c}
}

// Fetch returns building info for pt, or nil when both the geocode and
// the spatial lookup failed. The two sources are merged per field: the
// geocode result is the base, the spatial result overrides construction
// year and fills use/area gaps.
func (p *BuildingProvider) Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.BuildingInfo {
	if hit, ok := cache.GetJSON[model.BuildingInfo](ctx, p.cache, pt, radiusMeters, cache.SourceBuilding); ok {
		return hit
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	addr, err := p.geocode.ReverseGeocode(ctx, pt.Lat, pt.Lng)
	if err != nil {
		zap.L().Debug("building reverse geocode failed", zap.Error(err))
		addr = nil
	}

	pand := p.nearestPand(ctx, pt)

	if addr == nil && pand == nil {
		return nil
	}

	info := &model.BuildingInfo{}
	if addr != nil {
		info.ConstructionYear = addr.ConstructionYear
		info.AllowedUses = addr.Uses
		info.FloorArea = addr.FloorArea
	}
	if pand != nil {
		if pand.ConstructionYear != nil {
			info.ConstructionYear = pand.ConstructionYear
		}
		if len(info.AllowedUses) == 0 {
			info.AllowedUses = pand.Uses
		}
		if info.FloorArea == nil {
			info.FloorArea = pand.FloorArea
		}
		info.Status = pand.Status
	}

	for _, use := range info.AllowedUses {
		if hospitalityUses[use] {
			info.HospitalitySuitable = true
			break
		}
	}

	p.cache.Set(ctx, pt, radiusMeters, cache.SourceBuilding, info)
	return info
}

// nearestPand looks up buildings in a tight bbox around the point and
// keeps the first one the registry returns.
func (p *BuildingProvider) nearestPand(ctx context.Context, pt model.Point) *pdok.Pand {
	ctx, cancel := context.WithTimeout(ctx, geoTimeout)
	defer cancel()

	panden, err := p.geocode.BuildingsByBBox(ctx, geo.RDBBoxAround(pt, 25))
	if err != nil {
		zap.L().Debug("building bbox lookup failed", zap.Error(err))
		return nil
	}
	if len(panden) == 0 {
		return nil
	}
	return &panden[0]
}
