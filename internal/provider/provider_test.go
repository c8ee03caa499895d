package provider

import (
	"context"

	geom "github.com/twpayne/go-geom"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/pkg/cbs"
	"github.com/sells-group/location-intel/pkg/overpass"
	"github.com/sells-group/location-intel/pkg/pdok"
	"github.com/sells-group/location-intel/pkg/places"
)

func testCache() *cache.Cache {
	return cache.New(cache.Disabled())
}

type fakeCBS struct {
	byBBox func(ctx context.Context, bbox *geom.Bounds, year int) ([]cbs.Neighbourhood, error)
	byCode func(ctx context.Context, areaCode, dataset string) (*cbs.Neighbourhood, error)
}

func (f *fakeCBS) ByBBox(ctx context.Context, bbox *geom.Bounds, year int) ([]cbs.Neighbourhood, error) {
	return f.byBBox(ctx, bbox, year)
}

func (f *fakeCBS) ByCode(ctx context.Context, areaCode, dataset string) (*cbs.Neighbourhood, error) {
	return f.byCode(ctx, areaCode, dataset)
}

type fakePDOK struct {
	reverse   func(ctx context.Context, lat, lng float64) (*pdok.Address, error)
	buildings func(ctx context.Context, rdBBox *geom.Bounds) ([]pdok.Pand, error)
}

func (f *fakePDOK) ReverseGeocode(ctx context.Context, lat, lng float64) (*pdok.Address, error) {
	return f.reverse(ctx, lat, lng)
}

func (f *fakePDOK) BuildingsByBBox(ctx context.Context, rdBBox *geom.Bounds) ([]pdok.Pand, error) {
	return f.buildings(ctx, rdBBox)
}

type fakeOverpass struct {
	query func(ctx context.Context, ql string) ([]overpass.Element, error)
}

func (f *fakeOverpass) Query(ctx context.Context, ql string) ([]overpass.Element, error) {
	return f.query(ctx, ql)
}

type fakePlaces struct {
	nearby  func(ctx context.Context, lat, lng float64, radiusMeters int, includedTypes []string) ([]places.Place, error)
	text    func(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]places.Place, error)
	details func(ctx context.Context, placeRef string) (*places.PlaceDetails, error)
}

func (f *fakePlaces) SearchNearby(ctx context.Context, lat, lng float64, radiusMeters int, includedTypes []string) ([]places.Place, error) {
	return f.nearby(ctx, lat, lng, radiusMeters, includedTypes)
}

func (f *fakePlaces) SearchText(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]places.Place, error) {
	return f.text(ctx, query, lat, lng, radiusMeters)
}

func (f *fakePlaces) Details(ctx context.Context, placeRef string) (*places.PlaceDetails, error) {
	return f.details(ctx, placeRef)
}
