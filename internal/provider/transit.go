package provider

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/overpass"
	"github.com/sells-group/location-intel/pkg/places"
)

// Rail infrastructure is sparser than road transit, so train and metro
// stops are searched in a wider circle than the requested radius.
const (
	trainRadiusFactor = 2.0
	metroRadiusFactor = 1.5

	dedupDistanceMeters = 200
)

// TransitProvider resolves public transport accessibility for a point.
// The commercial places client is optional; when nil only the free map
// source is used.
type TransitProvider struct {
	osm        overpass.Client
	commercial places.Client
	cache      *cache.Cache
}

// NewTransitProvider creates a transit adapter.
func NewTransitProvider(osm overpass.Client, commercial places.Client, c *cache.Cache) *TransitProvider {
	return &TransitProvider{osm: osm, commercial: commercial, cache: c}
}

// Fetch returns the transit picture around pt, or nil when the free map
// source failed.
func (p *TransitProvider) Fetch(ctx context.Context, pt model.Point, radiusMeters int) *model.TransitAnalysis {
	if hit, ok := cache.GetJSON[model.TransitAnalysis](ctx, p.cache, pt, radiusMeters, cache.SourceTransit); ok {
		return hit
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	stops := p.fromOpenMap(ctx, pt, radiusMeters)
	if stops == nil {
		return nil
	}

	for _, extra := range p.fromCommercial(ctx, pt, radiusMeters) {
		if !containsStop(stops, extra) {
			stops = append(stops, extra)
		}
	}

	sort.Slice(stops, func(i, j int) bool {
		return stops[i].DistanceMeters < stops[j].DistanceMeters
	})

	score := transitScore(stops)
	analysis := &model.TransitAnalysis{
		Stops:         stops,
		Score:         score,
		Accessibility: accessibilityLabel(score),
	}
	p.cache.Set(ctx, pt, radiusMeters, cache.SourceTransit, analysis)
	return analysis
}

func (p *TransitProvider) fromOpenMap(ctx context.Context, pt model.Point, radiusMeters int) []model.TransitStop {
	trainRadius := int(float64(radiusMeters) * trainRadiusFactor)
	metroRadius := int(float64(radiusMeters) * metroRadiusFactor)

	ql := fmt.Sprintf(`[out:json][timeout:8];
(
  node(around:%d,%f,%f)[railway=station][station!=subway];
  node(around:%d,%f,%f)[station=subway];
  node(around:%d,%f,%f)[railway=tram_stop];
  node(around:%d,%f,%f)[highway=bus_stop];
);
out body;`,
		trainRadius, pt.Lat, pt.Lng,
		metroRadius, pt.Lat, pt.Lng,
		radiusMeters, pt.Lat, pt.Lng,
		radiusMeters, pt.Lat, pt.Lng,
	)

	elements, err := p.osm.Query(ctx, ql)
	if err != nil {
		zap.L().Debug("transit map query failed", zap.Error(err))
		return nil
	}

	stops := make([]model.TransitStop, 0, len(elements))
	for _, el := range elements {
		name := el.Tag("name")
		if name == "" {
			continue
		}
		stop := model.TransitStop{
			Name:           name,
			Mode:           elementMode(el),
			DistanceMeters: geo.DistanceMeters(pt, model.Point{Lat: el.Lat, Lng: el.Lon}),
		}
		if lines := el.Tag("route_ref"); lines != "" {
			stop.Lines = strings.Split(lines, ";")
		}
		if !containsStop(stops, stop) {
			stops = append(stops, stop)
		}
	}
	return stops
}

func elementMode(el overpass.Element) string {
	switch {
	case el.Tag("station") == "subway":
		return model.ModeMetro
	case el.Tag("railway") == "station":
		return model.ModeTrain
	case el.Tag("railway") == "tram_stop":
		return model.ModeTram
	default:
		return model.ModeBus
	}
}

// transitPlaceTypes maps commercial place types to transit modes.
var transitPlaceTypes = map[string]string{
	"train_station":      model.ModeTrain,
	"subway_station":     model.ModeMetro,
	"light_rail_station": model.ModeTram,
	"bus_station":        model.ModeBus,
	"bus_stop":           model.ModeBus,
}

func (p *TransitProvider) fromCommercial(ctx context.Context, pt model.Point, radiusMeters int) []model.TransitStop {
	if p.commercial == nil {
		return nil
	}

	types := make([]string, 0, len(transitPlaceTypes))
	for t := range transitPlaceTypes {
		types = append(types, t)
	}
	sort.Strings(types)

	results, err := p.commercial.SearchNearby(ctx, pt.Lat, pt.Lng, int(float64(radiusMeters)*trainRadiusFactor), types)
	if err != nil {
		zap.L().Debug("transit commercial search failed", zap.Error(err))
		return nil
	}

	stops := make([]model.TransitStop, 0, len(results))
	for _, place := range results {
		mode, ok := transitPlaceTypes[place.PrimaryType]
		if !ok {
			continue
		}
		stops = append(stops, model.TransitStop{
			Name:           place.DisplayName.Text,
			Mode:           mode,
			DistanceMeters: geo.DistanceMeters(pt, model.Point{Lat: place.Location.Latitude, Lng: place.Location.Longitude}),
		})
	}
	return stops
}

// containsStop reports whether a stop fuzzy-matches one already in the
// list: same mode, distances within 200 m, and one name containing the
// other's first word. A tram and a bus stop sharing a name are kept as
// separate stops since each mode scores on its own.
func containsStop(stops []model.TransitStop, candidate model.TransitStop) bool {
	for _, s := range stops {
		if s.Mode != candidate.Mode {
			continue
		}
		if math.Abs(s.DistanceMeters-candidate.DistanceMeters) >= dedupDistanceMeters {
			continue
		}
		if sameStopName(s.Name, candidate.Name) {
			return true
		}
	}
	return false
}

func sameStopName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(lb, firstWord(la)) || strings.Contains(la, firstWord(lb))
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// transitScore sums fixed per-mode distance-banded weights, capped at 10.
func transitScore(stops []model.TransitStop) float64 {
	var score float64
	for _, s := range stops {
		d := s.DistanceMeters
		switch s.Mode {
		case model.ModeTrain:
			switch {
			case d <= 1000:
				score += 3
			case d <= 2000:
				score += 1.5
			}
		case model.ModeMetro:
			switch {
			case d <= 800:
				score += 2
			case d <= 1500:
				score += 1
			}
		case model.ModeTram:
			switch {
			case d <= 500:
				score += 1.5
			case d <= 1000:
				score += 0.5
			}
		case model.ModeBus:
			if d <= 400 {
				score += 0.5
			}
		}
	}
	return math.Min(score, 10)
}

func accessibilityLabel(score float64) string {
	switch {
	case score >= 8:
		return "excellent"
	case score >= 6:
		return "good"
	case score >= 4:
		return "fair"
	case score >= 2:
		return "poor"
	default:
		return "bad"
	}
}
