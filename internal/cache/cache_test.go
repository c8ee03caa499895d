package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/location-intel/internal/model"
)

func TestKey_RoundsCoordinates(t *testing.T) {
	a := Key(model.Point{Lat: 52.37312999, Lng: 4.89261001}, 500, SourceTransit)
	b := Key(model.Point{Lat: 52.37313, Lng: 4.89261}, 500, SourceTransit)

	assert.Equal(t, a, b)
	assert.Equal(t, "loc:transit:52.3731:4.8926:500", a)
}

func TestKey_DistinguishesRadiusAndSource(t *testing.T) {
	pt := model.Point{Lat: 52.37, Lng: 4.89}
	assert.NotEqual(t, Key(pt, 500, SourceTransit), Key(pt, 1000, SourceTransit))
	assert.NotEqual(t, Key(pt, 500, SourceTransit), Key(pt, 500, SourceBuilding))
}

func TestTTLFor(t *testing.T) {
	assert.Equal(t, 365*24*time.Hour, TTLFor(SourceDemographics))
	assert.Equal(t, 30*24*time.Hour, TTLFor(SourceBuilding))
	assert.Equal(t, 90*24*time.Hour, TTLFor(SourceTransit))
	assert.Equal(t, 7*24*time.Hour, TTLFor(SourceOpenMap))
	assert.Equal(t, 24*time.Hour, TTLFor(SourceCommercial))
	assert.Equal(t, 7*24*time.Hour, TTLFor(SourceAIClassify))
	assert.Equal(t, 24*time.Hour, TTLFor("something-new"))
}

func TestDisabled_AlwaysMissesNeverFails(t *testing.T) {
	c := New(nil)
	pt := model.Point{Lat: 52.37, Lng: 4.89}
	ctx := context.Background()

	// Set followed by Get must still miss, and neither may panic or error.
	c.Set(ctx, pt, 500, SourceTransit, model.TransitAnalysis{Score: 7})
	data, ok := c.Get(ctx, pt, 500, SourceTransit)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	backend, err := newSQLite(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	c := New(backend)
	pt := model.Point{Lat: 52.37, Lng: 4.89}
	ctx := context.Background()

	in := model.TransitAnalysis{
		Stops:         []model.TransitStop{{Name: "Centraal", Mode: model.ModeTrain, DistanceMeters: 420}},
		Score:         7.5,
		Accessibility: "good",
	}
	c.Set(ctx, pt, 500, SourceTransit, in)

	out, ok := GetJSON[model.TransitAnalysis](ctx, c, pt, 500, SourceTransit)
	require.True(t, ok)
	assert.Equal(t, in, *out)
}

func TestSQLiteBackend_ExpiredEntryMisses(t *testing.T) {
	backend, err := newSQLite(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "loc:transit:1:1:1", []byte(`{}`), -time.Second))

	_, ok, err := backend.Get(ctx, "loc:transit:1:1:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteBackend_OverwriteRefreshes(t *testing.T) {
	backend, err := newSQLite(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "k", []byte(`1`), time.Hour))
	require.NoError(t, backend.Set(ctx, "k", []byte(`2`), time.Hour))

	data, ok, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`2`), data)
}

func TestGetJSON_UndecodableIsMiss(t *testing.T) {
	backend, err := newSQLite(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "bad", []byte(`{not json`), time.Hour))

	c := New(backend)
	_, ok := GetJSONKey[model.TransitAnalysis](ctx, c, "bad")
	assert.False(t, ok)
}

func TestOpen_UnknownDriverDegrades(t *testing.T) {
	b := Open(context.Background(), Config{Driver: "memcached"})
	_, ok, err := b.Get(context.Background(), "anything")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_EmptyDriverDisabled(t *testing.T) {
	b := Open(context.Background(), Config{})
	assert.NoError(t, b.Set(context.Background(), "k", []byte(`v`), time.Hour))
	_, ok, err := b.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}
