package cbs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func testBBox() *geom.Bounds {
	return geom.NewBounds(geom.XY).SetCoords(
		geom.Coord{4.885, 52.368},
		geom.Coord{4.900, 52.378},
	)
}

func TestByBBox_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("typeName"), "buurten_2024")
		assert.NotEmpty(t, r.URL.Query().Get("bbox"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[{"properties":{
			"buurtcode":"BU03630001","buurtnaam":"Burgwallen-Oude Zijde","gemeentenaam":"Amsterdam",
			"aantal_inwoners":4210,"gemiddeld_inkomen_per_inwoner":38.4,
			"percentage_personen_0_tot_15_jaar":6,"percentage_personen_15_tot_25_jaar":14,
			"percentage_personen_25_tot_45_jaar":45,"percentage_personen_45_tot_65_jaar":22,
			"percentage_personen_65_jaar_en_ouder":13,
			"bevolkingsdichtheid_inwoners_per_km2":11260,
			"aantal_huishoudens":2970,"percentage_eenpersoonshuishoudens":64
		}}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithGeoBaseURL(srv.URL))

	rows, err := client.ByBBox(context.Background(), testBBox(), 2024)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n := rows[0]
	assert.Equal(t, "BU03630001", n.Code)
	assert.Equal(t, "Amsterdam", n.Municipality)
	assert.Equal(t, 4210, n.Population)
	assert.InDelta(t, 20, n.PctYoung, 0.001)
	assert.InDelta(t, 67, n.PctWorking, 0.001)
	assert.InDelta(t, 11260, n.Density, 0.001)
}

func TestByBBox_SuppressedComponentPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"properties":{
			"buurtcode":"BU00000000","aantal_inwoners":45,
			"percentage_personen_0_tot_15_jaar":-99997,"percentage_personen_15_tot_25_jaar":10
		}}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithGeoBaseURL(srv.URL))
	rows, err := client.ByBBox(context.Background(), testBBox(), 2024)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.LessOrEqual(t, rows[0].PctYoung, float64(Suppressed))
}

func TestByBBox_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithGeoBaseURL(srv.URL))
	_, err := client.ByBBox(context.Background(), testBBox(), 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestByCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/85984NED/TypedDataSet")
		assert.Contains(t, r.URL.Query().Get("$filter"), "BU03630001")

		_, _ = w.Write([]byte(`{"value":[{
			"WijkenEnBuurten":"BU03630001","Gemeentenaam_1":"Amsterdam",
			"AantalInwoners_5":4210,"k_0Tot15Jaar_8":6,"k_15Tot25Jaar_9":14,
			"k_25Tot45Jaar_10":45,"k_45Tot65Jaar_11":22,"k_65JaarOfOuder_12":13,
			"GemiddeldInkomenPerInwoner_66":38.4,"HuishoudensTotaal_28":2970
		}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithODataBaseURL(srv.URL))
	n, err := client.ByCode(context.Background(), "BU03630001", "85984NED")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 4210, n.Population)
	assert.Equal(t, 2970, n.Households)
	assert.InDelta(t, 38.4, n.AvgIncome, 0.001)
}

func TestByCode_NoRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	defer srv.Close()

	client := NewClient(WithODataBaseURL(srv.URL))
	n, err := client.ByCode(context.Background(), "BU99999999", "85984NED")
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestByCode_MissingFieldsBecomeSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"value":[{"WijkenEnBuurten":"BU1","AantalInwoners_5":120}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithODataBaseURL(srv.URL))
	n, err := client.ByCode(context.Background(), "BU1", "85984NED")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.LessOrEqual(t, n.AvgIncome, float64(Suppressed))
	assert.LessOrEqual(t, n.Density, float64(Suppressed))
}
