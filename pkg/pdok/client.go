// Package pdok talks to the national geo services: the free reverse
// geocoder and the building/zoning registry, which is indexed by the
// national grid projection (EPSG:28992).
package pdok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

const (
	defaultGeocodeBaseURL = "https://api.pdok.nl/bzk/locatieserver/search/v3_1"
	defaultBAGBaseURL     = "https://service.pdok.nl/lv/bag/wfs/v2_0"
)

// Address is the nearest known address to a point, with the building
// attributes the geocoder carries along.
type Address struct {
	ID               string
	Street           string
	City             string
	AreaCode         string // statistical-area (buurt) code
	ConstructionYear *int
	Uses             []string
	FloorArea        *float64
}

// Pand is one building from the registry's spatial index.
type Pand struct {
	ID               string
	ConstructionYear *int
	Status           string
	Uses             []string
	FloorArea        *float64
}

// Client performs reverse geocoding and registry lookups.
type Client interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error)
	BuildingsByBBox(ctx context.Context, rdBBox *geom.Bounds) ([]Pand, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithGeocodeBaseURL overrides the reverse geocoder base URL.
func WithGeocodeBaseURL(url string) Option {
	return func(c *httpClient) {
		c.geocodeBaseURL = url
	}
}

// WithBAGBaseURL overrides the building registry base URL.
func WithBAGBaseURL(url string) Option {
	return func(c *httpClient) {
		c.bagBaseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	geocodeBaseURL string
	bagBaseURL     string
	http           *http.Client
}

// NewClient creates a geo-services client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		geocodeBaseURL: defaultGeocodeBaseURL,
		bagBaseURL:     defaultBAGBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type reverseResponse struct {
	Response struct {
		Docs []reverseDoc `json:"docs"`
	} `json:"response"`
}

type reverseDoc struct {
	ID            string   `json:"id"`
	Straatnaam    string   `json:"straatnaam"`
	Woonplaats    string   `json:"woonplaatsnaam"`
	Buurtcode     string   `json:"buurtcode"`
	Bouwjaar      *int     `json:"bouwjaar"`
	Gebruiksdoel  []string `json:"gebruiksdoel"`
	Oppervlakte   *float64 `json:"oppervlakte"`
}

func (c *httpClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	params := url.Values{
		"lat":  {fmt.Sprintf("%f", lat)},
		"lon":  {fmt.Sprintf("%f", lng)},
		"type": {"adres"},
		"rows": {"1"},
	}

	reqURL := c.geocodeBaseURL + "/reverse?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pdok: create reverse request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pdok: send reverse request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pdok: read reverse response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("pdok: reverse geocode returned status %d", resp.StatusCode)
	}

	var rr reverseResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, eris.Wrap(err, "pdok: unmarshal reverse response")
	}
	if len(rr.Response.Docs) == 0 {
		return nil, nil
	}

	doc := rr.Response.Docs[0]
	return &Address{
		ID:               doc.ID,
		Street:           doc.Straatnaam,
		City:             doc.Woonplaats,
		AreaCode:         doc.Buurtcode,
		ConstructionYear: doc.Bouwjaar,
		Uses:             doc.Gebruiksdoel,
		FloorArea:        doc.Oppervlakte,
	}, nil
}

type bagFeatureCollection struct {
	Features []struct {
		Properties bagProperties `json:"properties"`
	} `json:"features"`
}

type bagProperties struct {
	Identificatie string   `json:"identificatie"`
	Bouwjaar      *int     `json:"bouwjaar"`
	Status        string   `json:"status"`
	Gebruiksdoel  string   `json:"gebruiksdoel"`
	Oppervlakte   *float64 `json:"oppervlakte_max"`
}

func (c *httpClient) BuildingsByBBox(ctx context.Context, rdBBox *geom.Bounds) ([]Pand, error) {
	params := url.Values{
		"service":      {"WFS"},
		"request":      {"GetFeature"},
		"typeName":     {"bag:pand"},
		"outputFormat": {"application/json"},
		"srsName":      {"EPSG:28992"},
		"bbox": {fmt.Sprintf("%.1f,%.1f,%.1f,%.1f",
			rdBBox.Min(0), rdBBox.Min(1), rdBBox.Max(0), rdBBox.Max(1))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bagBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pdok: create bag request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pdok: send bag request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pdok: read bag response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("pdok: bag lookup returned status %d", resp.StatusCode)
	}

	var fc bagFeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, eris.Wrap(err, "pdok: unmarshal bag response")
	}

	panden := make([]Pand, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := Pand{
			ID:               f.Properties.Identificatie,
			ConstructionYear: f.Properties.Bouwjaar,
			Status:           f.Properties.Status,
			FloorArea:        f.Properties.Oppervlakte,
		}
		if f.Properties.Gebruiksdoel != "" {
			p.Uses = splitUses(f.Properties.Gebruiksdoel)
		}
		panden = append(panden, p)
	}
	return panden, nil
}

// splitUses breaks the registry's comma-joined use string into values.
func splitUses(s string) []string {
	var uses []string
	for _, part := range strings.Split(s, ",") {
		if u := strings.TrimSpace(part); u != "" {
			uses = append(uses, u)
		}
	}
	return uses
}
