// Package places wraps the commercial places API (v1). All operations
// require an API credential; the rest of the system treats this source as
// optional and degrades without it.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Client performs commercial places operations.
type Client interface {
	SearchNearby(ctx context.Context, lat, lng float64, radiusMeters int, includedTypes []string) ([]Place, error)
	SearchText(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]Place, error)
	Details(ctx context.Context, placeRef string) (*PlaceDetails, error)
}

// Place is a venue returned by a search.
type Place struct {
	ID                  string       `json:"id"`
	DisplayName         DisplayName  `json:"displayName"`
	Types               []string     `json:"types"`
	PrimaryType         string       `json:"primaryType"`
	Rating              float64      `json:"rating"`
	UserRatingCount     int          `json:"userRatingCount"`
	PriceLevel          string       `json:"priceLevel"`
	BusinessStatus      string       `json:"businessStatus"`
	Location            LatLng       `json:"location"`
	RegularOpeningHours OpeningHours `json:"regularOpeningHours"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OpeningHours carries the weekly schedule.
type OpeningHours struct {
	Periods             []Period `json:"periods"`
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// Period is one open-close span.
type Period struct {
	Open  TimePoint `json:"open"`
	Close TimePoint `json:"close"`
}

// TimePoint is a day+hour marker within the weekly schedule.
type TimePoint struct {
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

// PlaceDetails is the extra payload fetched for a single place.
type PlaceDetails struct {
	ID               string           `json:"id"`
	Reviews          []Review         `json:"reviews"`
	EditorialSummary EditorialSummary `json:"editorialSummary"`
}

// Review is one customer review.
type Review struct {
	Rating int        `json:"rating"`
	Text   ReviewText `json:"text"`
}

// ReviewText holds the localized review body.
type ReviewText struct {
	Text string `json:"text"`
}

// EditorialSummary is the curated one-liner about a place.
type EditorialSummary struct {
	Text string `json:"text"`
}

// PriceLevelValue maps the API's price level enum to the 0-4 scale.
// Unknown strings map to -1.
func PriceLevelValue(level string) int {
	switch level {
	case "PRICE_LEVEL_FREE":
		return 0
	case "PRICE_LEVEL_INEXPENSIVE":
		return 1
	case "PRICE_LEVEL_MODERATE":
		return 2
	case "PRICE_LEVEL_EXPENSIVE":
		return 3
	case "PRICE_LEVEL_VERY_EXPENSIVE":
		return 4
	default:
		return -1
	}
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a commercial places client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 8 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

const searchFieldMask = "places.id,places.displayName,places.types,places.primaryType," +
	"places.rating,places.userRatingCount,places.priceLevel,places.businessStatus," +
	"places.location,places.regularOpeningHours"

type searchResponse struct {
	Places []Place `json:"places"`
}

type nearbyRequest struct {
	IncludedTypes       []string            `json:"includedTypes"`
	MaxResultCount      int                 `json:"maxResultCount"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type textRequest struct {
	TextQuery    string              `json:"textQuery"`
	MaxResultCount int               `json:"maxResultCount"`
	LocationBias locationRestriction `json:"locationBias"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

func (c *httpClient) SearchNearby(ctx context.Context, lat, lng float64, radiusMeters int, includedTypes []string) ([]Place, error) {
	reqBody := nearbyRequest{
		IncludedTypes:  includedTypes,
		MaxResultCount: 20,
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: LatLng{Latitude: lat, Longitude: lng},
				Radius: float64(radiusMeters),
			},
		},
	}

	var resp searchResponse
	if err := c.post(ctx, "/places:searchNearby", searchFieldMask, reqBody, &resp); err != nil {
		return nil, eris.Wrap(err, "places: search nearby")
	}
	return resp.Places, nil
}

func (c *httpClient) SearchText(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]Place, error) {
	reqBody := textRequest{
		TextQuery:      query,
		MaxResultCount: 20,
		LocationBias: locationRestriction{
			Circle: circle{
				Center: LatLng{Latitude: lat, Longitude: lng},
				Radius: float64(radiusMeters),
			},
		},
	}

	var resp searchResponse
	if err := c.post(ctx, "/places:searchText", searchFieldMask, reqBody, &resp); err != nil {
		return nil, eris.Wrap(err, "places: search text")
	}
	return resp.Places, nil
}

const detailsFieldMask = "id,reviews,editorialSummary"

func (c *httpClient) Details(ctx context.Context, placeRef string) (*PlaceDetails, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+placeRef, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create details request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send details request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read details response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: details returned status %d: %s", resp.StatusCode, string(body))
	}

	var details PlaceDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal details response")
	}
	return &details, nil
}

func (c *httpClient) post(ctx context.Context, path, fieldMask string, reqBody, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
