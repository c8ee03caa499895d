package provider

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geom "github.com/twpayne/go-geom"

	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/cbs"
	"github.com/sells-group/location-intel/pkg/pdok"
)

var amsterdam = model.Point{Lat: 52.3731, Lng: 4.8926}

func sampleRow() cbs.Neighbourhood {
	return cbs.Neighbourhood{
		Code:         "BU03630001",
		Name:         "Burgwallen-Oude Zijde",
		Municipality: "Amsterdam",
		Population:   9500,
		AvgIncome:    34.2,
		PctYoung:     22,
		PctWorking:   63,
		PctSenior:    15,
		Density:      14800,
		Households:   5200,
		PctSingle:    61,
	}
}

func TestDemographicsFetchByBBox(t *testing.T) {
	stats := &fakeCBS{
		byBBox: func(_ context.Context, _ *geom.Bounds, year int) ([]cbs.Neighbourhood, error) {
			assert.Equal(t, cbs.LatestYear, year)
			return []cbs.Neighbourhood{sampleRow()}, nil
		},
	}

	p := NewDemographicsProvider(stats, nil, testCache())
	demo := p.Fetch(context.Background(), amsterdam, 500)

	require.NotNil(t, demo)
	assert.Equal(t, "BU03630001", demo.AreaCode)
	assert.Equal(t, "Amsterdam", demo.Municipality)
	assert.Equal(t, 9500, demo.Population)
	require.NotNil(t, demo.AvgIncome)
	assert.InDelta(t, 34200, *demo.AvgIncome, 0.01)
	assert.Equal(t, 22.0, demo.AgeDistribution.YoungPct)
}

func TestDemographicsYearFallback(t *testing.T) {
	var years []int
	stats := &fakeCBS{
		byBBox: func(_ context.Context, _ *geom.Bounds, year int) ([]cbs.Neighbourhood, error) {
			years = append(years, year)
			if year == cbs.LatestYear-2 {
				return []cbs.Neighbourhood{sampleRow()}, nil
			}
			return nil, nil
		},
	}

	p := NewDemographicsProvider(stats, nil, testCache())
	demo := p.Fetch(context.Background(), amsterdam, 500)

	require.NotNil(t, demo)
	assert.Equal(t, []int{cbs.LatestYear, cbs.LatestYear - 1, cbs.LatestYear - 2}, years)
}

func TestDemographicsAreaCodeFallback(t *testing.T) {
	var datasets []string
	stats := &fakeCBS{
		byBBox: func(context.Context, *geom.Bounds, int) ([]cbs.Neighbourhood, error) {
			return nil, eris.New("wfs unavailable")
		},
		byCode: func(_ context.Context, areaCode, dataset string) (*cbs.Neighbourhood, error) {
			assert.Equal(t, "BU03630001", areaCode)
			datasets = append(datasets, dataset)
			if dataset == cbs.DatasetVersions[1] {
				row := sampleRow()
				return &row, nil
			}
			return nil, nil
		},
	}
	geocode := &fakePDOK{
		reverse: func(context.Context, float64, float64) (*pdok.Address, error) {
			return &pdok.Address{AreaCode: "BU03630001"}, nil
		},
	}

	p := NewDemographicsProvider(stats, geocode, testCache())
	demo := p.Fetch(context.Background(), amsterdam, 500)

	require.NotNil(t, demo)
	assert.Equal(t, cbs.DatasetVersions[:2], datasets)
}

func TestDemographicsAllSourcesFail(t *testing.T) {
	stats := &fakeCBS{
		byBBox: func(context.Context, *geom.Bounds, int) ([]cbs.Neighbourhood, error) {
			return nil, eris.New("timeout")
		},
	}
	geocode := &fakePDOK{
		reverse: func(context.Context, float64, float64) (*pdok.Address, error) {
			return nil, eris.New("timeout")
		},
	}

	p := NewDemographicsProvider(stats, geocode, testCache())
	assert.Nil(t, p.Fetch(context.Background(), amsterdam, 500))
}

func TestDemographicsSentinelMapping(t *testing.T) {
	row := sampleRow()
	row.AvgIncome = -99997
	row.Density = -99995
	row.PctSingle = -99990

	stats := &fakeCBS{
		byBBox: func(context.Context, *geom.Bounds, int) ([]cbs.Neighbourhood, error) {
			return []cbs.Neighbourhood{row}, nil
		},
	}

	p := NewDemographicsProvider(stats, nil, testCache())
	demo := p.Fetch(context.Background(), amsterdam, 500)

	require.NotNil(t, demo)
	assert.Nil(t, demo.AvgIncome)
	assert.Nil(t, demo.Density)
	assert.Nil(t, demo.SinglePersonPct)
	require.NotNil(t, demo.Households)
	assert.Equal(t, 5200, *demo.Households)
}
