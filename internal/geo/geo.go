// Package geo holds the shared distance and projection math used by the
// provider adapters.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/location-intel/internal/model"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine great-circle distance between two
// WGS84 points.
func DistanceMeters(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BBoxAround returns a WGS84 bounding box (lng/lat order) covering a circle
// of the given radius around pt.
func BBoxAround(pt model.Point, radiusMeters int) *geom.Bounds {
	dLat := float64(radiusMeters) / 111320
	dLng := float64(radiusMeters) / (111320 * math.Cos(pt.Lat*math.Pi/180))
	return geom.NewBounds(geom.XY).SetCoords(
		geom.Coord{pt.Lng - dLng, pt.Lat - dLat},
		geom.Coord{pt.Lng + dLng, pt.Lat + dLat},
	)
}

// Amersfoort reference point of the Dutch national grid.
const (
	rdRefLat = 52.15517440
	rdRefLng = 5.38720621
	rdRefX   = 155000
	rdRefY   = 463000
)

// WGS84ToRD converts a WGS84 coordinate to the Dutch national grid
// (Rijksdriehoeksstelsel, EPSG:28992) using the Schreutelkamp/Strang van
// Hees polynomial approximation. Accurate to about one meter inside the
// Netherlands; the result is meaningless for coordinates outside it.
func WGS84ToRD(pt model.Point) (x, y float64) {
	dLat := 0.36 * (pt.Lat - rdRefLat)
	dLng := 0.36 * (pt.Lng - rdRefLng)

	x = rdRefX +
		190094.945*dLng +
		-11832.228*dLat*dLng +
		-114.221*dLat*dLat*dLng +
		-32.391*dLng*dLng*dLng +
		-0.705*dLat +
		-2.340*dLat*dLat*dLat*dLng +
		-0.608*dLat*dLng*dLng*dLng +
		-0.008*dLng*dLng*dLng*dLng*dLng +
		0.148*dLat*dLat*dLng*dLng*dLng

	y = rdRefY +
		309056.544*dLat +
		3638.893*dLng*dLng +
		73.077*dLat*dLat +
		-157.984*dLat*dLng*dLng +
		59.788*dLat*dLat*dLat +
		0.433*dLng +
		-6.439*dLat*dLat*dLng*dLng +
		-0.032*dLat*dLng +
		-0.054*dLng*dLng*dLng*dLng

	return x, y
}

// RDBBoxAround returns a national-grid bounding box covering a circle of
// the given radius around pt. RD coordinates are in meters, so no degree
// conversion is involved.
func RDBBoxAround(pt model.Point, radiusMeters int) *geom.Bounds {
	x, y := WGS84ToRD(pt)
	r := float64(radiusMeters)
	return geom.NewBounds(geom.XY).SetCoords(
		geom.Coord{x - r, y - r},
		geom.Coord{x + r, y + r},
	)
}

// Netherlands coverage bounds for the RD approximation.
const (
	minLat = 50.5
	maxLat = 53.8
	minLng = 3.2
	maxLng = 7.3
)

// InCoverage reports whether a point lies inside the area the RD transform
// and the national data sources are valid for.
func InCoverage(pt model.Point) bool {
	return pt.Lat >= minLat && pt.Lat <= maxLat && pt.Lng >= minLng && pt.Lng <= maxLng
}
