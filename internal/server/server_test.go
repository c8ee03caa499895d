package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/location-intel/internal/model"
)

type fakeAnalyzer struct {
	analysis *model.LocationAnalysis
	err      error
	lastPt   model.Point
	lastRad  int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, pt model.Point, radius int) (*model.LocationAnalysis, error) {
	f.lastPt = pt
	f.lastRad = radius
	return f.analysis, f.err
}

type fakeEngine struct {
	result      *model.ConceptCheckResult
	err         error
	lastConcept string
	lastRad     int
}

func (f *fakeEngine) CheckConcept(_ context.Context, concept string, _ model.Point, radius int) (*model.ConceptCheckResult, error) {
	f.lastConcept = concept
	f.lastRad = radius
	return f.result, f.err
}

func newTestServer(analyzer *fakeAnalyzer, engine *fakeEngine) *httptest.Server {
	return httptest.NewServer(New(analyzer, engine, 500).Handler())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(&fakeAnalyzer{}, &fakeEngine{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestAnalysisEndpoint(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &model.LocationAnalysis{
		Point:        model.Point{Lat: 52.3731, Lng: 4.8926},
		RadiusMeters: 750,
		Summary:      "Busy block.",
		DataQuality:  model.DataQualityPartial,
	}}
	ts := newTestServer(analyzer, &fakeEngine{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/locations/analysis?lat=52.3731&lng=4.8926&radius=750")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var analysis model.LocationAnalysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analysis))
	assert.Equal(t, "Busy block.", analysis.Summary)

	assert.Equal(t, 750, analyzer.lastRad)
	assert.InDelta(t, 52.3731, analyzer.lastPt.Lat, 0.0001)
}

func TestAnalysisDefaultRadius(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &model.LocationAnalysis{}}
	ts := newTestServer(analyzer, &fakeEngine{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/locations/analysis?lat=52.3731&lng=4.8926")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 500, analyzer.lastRad)
}

func TestAnalysisValidation(t *testing.T) {
	ts := newTestServer(&fakeAnalyzer{}, &fakeEngine{})
	defer ts.Close()

	cases := []struct {
		name  string
		query string
	}{
		{"missing lat", "lng=4.89"},
		{"bad lat", "lat=abc&lng=4.89"},
		{"out of coverage", "lat=40.71&lng=-74.00"},
		{"radius too small", "lat=52.37&lng=4.89&radius=50"},
		{"radius too large", "lat=52.37&lng=4.89&radius=5000"},
		{"bad radius", "lat=52.37&lng=4.89&radius=big"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/v1/locations/analysis?" + tc.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalysisError(t *testing.T) {
	ts := newTestServer(&fakeAnalyzer{err: eris.New("upstream down")}, &fakeEngine{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/locations/analysis?lat=52.37&lng=4.89")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func TestConceptCheckEndpoint(t *testing.T) {
	engine := &fakeEngine{result: &model.ConceptCheckResult{
		ID:             "r-1",
		Concept:        "smoothiebar",
		ViabilityScore: 68,
	}}
	ts := newTestServer(&fakeAnalyzer{}, engine)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/concepts/check", conceptCheckRequest{
		Concept: "smoothiebar",
		Lat:     52.3731,
		Lng:     4.8926,
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.ConceptCheckResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 68, result.ViabilityScore)

	// radius defaulted
	assert.Equal(t, "smoothiebar", engine.lastConcept)
	assert.Equal(t, 500, engine.lastRad)
}

func TestConceptCheckValidation(t *testing.T) {
	ts := newTestServer(&fakeAnalyzer{}, &fakeEngine{})
	defer ts.Close()

	cases := []struct {
		name string
		req  conceptCheckRequest
	}{
		{"missing concept", conceptCheckRequest{Lat: 52.37, Lng: 4.89}},
		{"out of coverage", conceptCheckRequest{Concept: "koffiebar", Lat: 48.85, Lng: 2.35}},
		{"radius too large", conceptCheckRequest{Concept: "koffiebar", Lat: 52.37, Lng: 4.89, RadiusMeters: 9000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/v1/concepts/check", tc.req)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestConceptCheckBadBody(t *testing.T) {
	ts := newTestServer(&fakeAnalyzer{}, &fakeEngine{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/concepts/check", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConceptCheckEngineError(t *testing.T) {
	ts := newTestServer(&fakeAnalyzer{}, &fakeEngine{err: eris.New("timed out")})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/concepts/check", conceptCheckRequest{
		Concept: "wijnbar",
		Lat:     52.37,
		Lng:     4.89,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(&fakeAnalyzer{}, &fakeEngine{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/concepts/check", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
