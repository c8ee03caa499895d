// Package cbs queries the national statistics office for small-area
// demographic figures. Two lookup paths exist: a spatially indexed
// GeoJSON service (primary) and the OData tables keyed by area code
// (fallback), both versioned by dataset year.
package cbs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

const (
	defaultGeoBaseURL   = "https://service.pdok.nl/cbs/wijkenbuurten"
	defaultODataBaseURL = "https://opendata.cbs.nl/ODataApi/odata"
)

// Suppressed is the threshold below which a numeric value means
// "suppressed for privacy", not an actual figure.
const Suppressed = -99990

// LatestYear is the newest dataset year the geo service carries.
const LatestYear = 2024

// DatasetVersions lists the key-figures dataset IDs, newest first. The
// fallback path walks them in order until one has a row for the area.
var DatasetVersions = []string{"85984NED", "85618NED", "85318NED", "85039NED"}

// Neighbourhood is one statistical-area row. Numeric fields carry the
// source's sentinel values verbatim; interpreting them is the caller's job.
type Neighbourhood struct {
	Code         string
	Name         string
	Municipality string
	Population   int
	AvgIncome    float64 // x1000 euro per inhabitant, sentinel when suppressed
	PctYoung     float64 // 0-24
	PctWorking   float64 // 25-64
	PctSenior    float64 // 65+
	Density      float64 // inhabitants per km²
	Households   int
	PctSingle    float64
}

// Client performs statistical-area lookups.
type Client interface {
	ByBBox(ctx context.Context, bbox *geom.Bounds, year int) ([]Neighbourhood, error)
	ByCode(ctx context.Context, areaCode, dataset string) (*Neighbourhood, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithGeoBaseURL overrides the spatial service base URL.
func WithGeoBaseURL(url string) Option {
	return func(c *httpClient) {
		c.geoBaseURL = url
	}
}

// WithODataBaseURL overrides the OData base URL.
func WithODataBaseURL(url string) Option {
	return func(c *httpClient) {
		c.odataBaseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	geoBaseURL   string
	odataBaseURL string
	http         *http.Client
}

// NewClient creates a statistics client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		geoBaseURL:   defaultGeoBaseURL,
		odataBaseURL: defaultODataBaseURL,
		http: &http.Client{
			Timeout: 6 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// geoFeatureCollection is the spatial service's GeoJSON response.
type geoFeatureCollection struct {
	Features []struct {
		Properties geoProperties `json:"properties"`
	} `json:"features"`
}

type geoProperties struct {
	Buurtcode    string  `json:"buurtcode"`
	Buurtnaam    string  `json:"buurtnaam"`
	Gemeentenaam string  `json:"gemeentenaam"`
	Inwoners     int     `json:"aantal_inwoners"`
	Inkomen      float64 `json:"gemiddeld_inkomen_per_inwoner"`
	Pct0Tot15    float64 `json:"percentage_personen_0_tot_15_jaar"`
	Pct15Tot25   float64 `json:"percentage_personen_15_tot_25_jaar"`
	Pct25Tot45   float64 `json:"percentage_personen_25_tot_45_jaar"`
	Pct45Tot65   float64 `json:"percentage_personen_45_tot_65_jaar"`
	Pct65Plus    float64 `json:"percentage_personen_65_jaar_en_ouder"`
	Dichtheid    float64 `json:"bevolkingsdichtheid_inwoners_per_km2"`
	Huishoudens  int     `json:"aantal_huishoudens"`
	PctEenpers   float64 `json:"percentage_eenpersoonshuishoudens"`
}

func (c *httpClient) ByBBox(ctx context.Context, bbox *geom.Bounds, year int) ([]Neighbourhood, error) {
	params := url.Values{
		"service":      {"WFS"},
		"request":      {"GetFeature"},
		"typeName":     {fmt.Sprintf("wijkenbuurten:buurten_%d", year)},
		"outputFormat": {"application/json"},
		"srsName":      {"EPSG:4326"},
		"bbox": {fmt.Sprintf("%f,%f,%f,%f,EPSG:4326",
			bbox.Min(1), bbox.Min(0), bbox.Max(1), bbox.Max(0))},
	}

	reqURL := c.geoBaseURL + "/wfs/v1_0?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "cbs: create bbox request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "cbs: send bbox request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "cbs: read bbox response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("cbs: bbox lookup returned status %d", resp.StatusCode)
	}

	var fc geoFeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, eris.Wrap(err, "cbs: unmarshal bbox response")
	}

	rows := make([]Neighbourhood, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		rows = append(rows, Neighbourhood{
			Code:         p.Buurtcode,
			Name:         p.Buurtnaam,
			Municipality: p.Gemeentenaam,
			Population:   p.Inwoners,
			AvgIncome:    p.Inkomen,
			PctYoung:     sumPct(p.Pct0Tot15, p.Pct15Tot25),
			PctWorking:   sumPct(p.Pct25Tot45, p.Pct45Tot65),
			PctSenior:    p.Pct65Plus,
			Density:      p.Dichtheid,
			Households:   p.Huishoudens,
			PctSingle:    p.PctEenpers,
		})
	}
	return rows, nil
}

// odataResponse is the tabular fallback response.
type odataResponse struct {
	Value []odataRow `json:"value"`
}

type odataRow struct {
	WijkenEnBuurten   string   `json:"WijkenEnBuurten"`
	Gemeentenaam      string   `json:"Gemeentenaam_1"`
	AantalInwoners    int      `json:"AantalInwoners_5"`
	K0Tot15Jaar       *float64 `json:"k_0Tot15Jaar_8"`
	K15Tot25Jaar      *float64 `json:"k_15Tot25Jaar_9"`
	K25Tot45Jaar      *float64 `json:"k_25Tot45Jaar_10"`
	K45Tot65Jaar      *float64 `json:"k_45Tot65Jaar_11"`
	K65JaarOfOuder    *float64 `json:"k_65JaarOfOuder_12"`
	GemiddeldInkomen  *float64 `json:"GemiddeldInkomenPerInwoner_66"`
	Bevolkingsdicht   *float64 `json:"Bevolkingsdichtheid_33"`
	AantalHuishoudens *int     `json:"HuishoudensTotaal_28"`
	Eenpersoons       *float64 `json:"Eenpersoonshuishoudens_29"`
}

func (c *httpClient) ByCode(ctx context.Context, areaCode, dataset string) (*Neighbourhood, error) {
	params := url.Values{
		"$filter": {fmt.Sprintf("WijkenEnBuurten eq '%s'", areaCode)},
		"$top":    {"1"},
	}

	reqURL := fmt.Sprintf("%s/%s/TypedDataSet?%s", c.odataBaseURL, dataset, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "cbs: create odata request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "cbs: send odata request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "cbs: read odata response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("cbs: odata lookup %s returned status %d", dataset, resp.StatusCode)
	}

	var odata odataResponse
	if err := json.Unmarshal(body, &odata); err != nil {
		return nil, eris.Wrap(err, "cbs: unmarshal odata response")
	}
	if len(odata.Value) == 0 {
		return nil, nil
	}

	r := odata.Value[0]
	n := &Neighbourhood{
		Code:         r.WijkenEnBuurten,
		Municipality: r.Gemeentenaam,
		Population:   r.AantalInwoners,
		AvgIncome:    deref(r.GemiddeldInkomen),
		PctYoung:     sumPct(deref(r.K0Tot15Jaar), deref(r.K15Tot25Jaar)),
		PctWorking:   sumPct(deref(r.K25Tot45Jaar), deref(r.K45Tot65Jaar)),
		PctSenior:    deref(r.K65JaarOfOuder),
		Density:      deref(r.Bevolkingsdicht),
		PctSingle:    deref(r.Eenpersoons),
	}
	if r.AantalHuishoudens != nil {
		n.Households = *r.AantalHuishoudens
	}
	return n, nil
}

// sumPct adds two percentage components, propagating the suppression
// sentinel when either side carries it.
func sumPct(a, b float64) float64 {
	if a <= Suppressed || b <= Suppressed {
		return -99999
	}
	return a + b
}

// deref maps a missing field to the suppression sentinel so the caller
// has a single "unknown" representation to deal with.
func deref(p *float64) float64 {
	if p == nil {
		return -99999
	}
	return *p
}
