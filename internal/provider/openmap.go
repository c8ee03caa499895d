package provider

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/overpass"
)

// competitorAmenities are the map tags treated as hospitality venues a
// new concept would compete with.
var competitorAmenities = map[string]bool{
	"restaurant": true,
	"cafe":       true,
	"bar":        true,
	"pub":        true,
	"fast_food":  true,
	"ice_cream":  true,
	"food_court": true,
	"biergarten": true,
}

// OpenMapProvider builds the baseline area picture from free map data.
// It is the one source that works with zero credentials configured.
type OpenMapProvider struct {
	osm   overpass.Client
	cache *cache.Cache
}

// NewOpenMapProvider creates an open-map adapter.
func NewOpenMapProvider(osm overpass.Client, c *cache.Cache) *OpenMapProvider {
	return &OpenMapProvider{osm: osm, cache: c}
}

// Fetch returns the baseline analysis around pt, or nil when the map
// query failed.
func (p *OpenMapProvider) Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.OpenMapAnalysis {
	if hit, ok := cache.GetJSON[model.OpenMapAnalysis](ctx, p.cache, pt, radiusMeters, cache.SourceOpenMap); ok {
		return hit
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	ql := fmt.Sprintf(`[out:json][timeout:8];
(
  node(around:%d,%f,%f)[amenity~"^(restaurant|cafe|bar|pub|fast_food|ice_cream|food_court|biergarten)$"];
  node(around:%d,%f,%f)[shop~"^(bakery|convenience|supermarket|deli|books|clothes|gift)$"];
  node(around:%d,%f,%f)[tourism~"^(hotel|museum|gallery|attraction)$"];
  node(around:%d,%f,%f)[office];
);
out body;`,
		radiusMeters, pt.Lat, pt.Lng,
		radiusMeters, pt.Lat, pt.Lng,
		radiusMeters, pt.Lat, pt.Lng,
		radiusMeters, pt.Lat, pt.Lng,
	)

	elements, err := p.osm.Query(ctx, ql)
	if err != nil {
		zap.L().Debug("openmap query failed", zap.Error(err))
		return nil
	}

	analysis := &model.OpenMapAnalysis{Competitors: []model.Competitor{}}
	for _, el := range elements {
		switch {
		case competitorAmenities[el.Tag("amenity")]:
			name := el.Tag("name")
			if name == "" {
				continue
			}
			analysis.Competitors = append(analysis.Competitors, model.Competitor{
				Name:           name,
				Type:           el.Tag("amenity"),
				DistanceMeters: geo.DistanceMeters(pt, model.Point{Lat: el.Lat, Lng: el.Lon}),
				Source:         model.SourceOpenMap,
			})
		case el.Tag("office") != "":
			analysis.OfficeCount++
		default:
			analysis.Complementary++
		}
	}

	sort.Slice(analysis.Competitors, func(i, j int) bool {
		return analysis.Competitors[i].DistanceMeters < analysis.Competitors[j].DistanceMeters
	})

	analysis.BuzzIndex = buzzIndex(len(analysis.Competitors), analysis.Complementary, analysis.OfficeCount)
	analysis.Summary = fmt.Sprintf(
		"Found %d hospitality venues, %d complementary businesses and %d offices within %dm.",
		len(analysis.Competitors), analysis.Complementary, analysis.OfficeCount, radiusMeters,
	)

	p.cache.Set(ctx, pt, radiusMeters, cache.SourceOpenMap, analysis)
	return analysis
}

// buzzIndex folds the raw counts into a 0-10 vibrancy score.
func buzzIndex(competitors, complementary, offices int) float64 {
	raw := float64(competitors)*0.4 + float64(complementary)*0.2 + float64(offices)*0.1
	return math.Min(math.Round(raw*10)/10, 10)
}
