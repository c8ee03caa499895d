package model

import "time"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DataQuality grades how many sources contributed to an analysis.
type DataQuality string

const (
	DataQualityFull    DataQuality = "full"
	DataQualityPartial DataQuality = "partial"
	DataQualityBasic   DataQuality = "basic"
)

// AgeDistribution holds population shares per age band, in percent.
type AgeDistribution struct {
	YoungPct   float64 `json:"young_pct"`   // 0-24
	WorkingPct float64 `json:"working_pct"` // 25-64
	SeniorPct  float64 `json:"senior_pct"`  // 65+
}

// Demographics describes the statistical area around a point. Optional
// fields are nil when the source suppressed or omitted them; suppressed
// sentinel values must never leak through as zeroes.
type Demographics struct {
	AreaCode        string          `json:"area_code"`
	AreaName        string          `json:"area_name"`
	Municipality    string          `json:"municipality"`
	Population      int             `json:"population"`
	AvgIncome       *float64        `json:"avg_income,omitempty"`
	AgeDistribution AgeDistribution `json:"age_distribution"`
	Density         *float64        `json:"density,omitempty"` // inhabitants per km²
	Households      *int            `json:"households,omitempty"`
	SinglePersonPct *float64        `json:"single_person_pct,omitempty"`
}

// BuildingInfo describes the building at (or nearest to) a point.
type BuildingInfo struct {
	ConstructionYear    *int     `json:"construction_year,omitempty"`
	AllowedUses         []string `json:"allowed_uses,omitempty"`
	FloorArea           *float64 `json:"floor_area,omitempty"` // m²
	Status              string   `json:"status,omitempty"`
	HospitalitySuitable bool     `json:"hospitality_suitable"`
}

// Transit modes.
const (
	ModeTrain = "train"
	ModeBus   = "bus"
	ModeTram  = "tram"
	ModeMetro = "metro"
)

// TransitStop is a single public transport stop near a point.
type TransitStop struct {
	Name           string   `json:"name"`
	Mode           string   `json:"mode"`
	DistanceMeters float64  `json:"distance_meters"`
	Lines          []string `json:"lines,omitempty"`
}

// TransitAnalysis summarizes public transport accessibility.
type TransitAnalysis struct {
	Stops         []TransitStop `json:"stops"`
	Score         float64       `json:"score"` // 0-10
	Accessibility string        `json:"accessibility"`
}

// Competitor sources.
const (
	SourceOpenMap    = "openmap"
	SourceCommercial = "commercial"
)

// Competitor is a nearby business that may compete with a concept.
// Records from different sources are distinct objects even when they
// describe the same real venue; deduplication happens at merge time.
type Competitor struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	DistanceMeters  float64  `json:"distance_meters"`
	Rating          *float64 `json:"rating,omitempty"`
	ReviewCount     *int     `json:"review_count,omitempty"`
	PriceLevel      *int     `json:"price_level,omitempty"` // 0-4
	BusinessStatus  string   `json:"business_status,omitempty"`
	OpeningHours    string   `json:"opening_hours,omitempty"`
	LatestCloseHour *int     `json:"latest_close_hour,omitempty"` // 0-23
	Source          string   `json:"source"`
	PlaceRef        string   `json:"place_ref,omitempty"`
}

// FootTraffic is a derived daily passers-by estimate.
type FootTraffic struct {
	DailyEstimate int      `json:"daily_estimate"` // ≥100, multiple of 100
	Confidence    string   `json:"confidence"`     // high, medium, low
	Sources       []string `json:"sources"`
}

// OpenMapAnalysis is the baseline picture built from free map data alone.
// It is always available, even with zero paid credentials configured.
type OpenMapAnalysis struct {
	Summary       string       `json:"summary"`
	BuzzIndex     float64      `json:"buzz_index"` // 0-10
	Competitors   []Competitor `json:"competitors"`
	Complementary int          `json:"complementary"`
	OfficeCount   int          `json:"office_count"`
}

// LocationAnalysis is the composite produced by the analyzer: the baseline
// open-map fields plus whatever the optional sources contributed.
type LocationAnalysis struct {
	Point         Point            `json:"point"`
	RadiusMeters  int              `json:"radius_meters"`
	Summary       string           `json:"summary"`
	BuzzIndex     float64          `json:"buzz_index"`
	Demographics  *Demographics    `json:"demographics,omitempty"`
	Building      *BuildingInfo    `json:"building,omitempty"`
	Transit       *TransitAnalysis `json:"transit,omitempty"`
	FootTraffic   *FootTraffic     `json:"foot_traffic,omitempty"`
	Competitors   []Competitor     `json:"competitors"`
	Complementary int              `json:"complementary"`
	OfficeCount   int              `json:"office_count"`
	DataSources   []string         `json:"data_sources"`
	DataQuality   DataQuality      `json:"data_quality"`
	FetchedAt     time.Time        `json:"fetched_at"`
}
