package overpass

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testClient(url string) Client {
	return NewClient(
		WithBaseURL(url),
		WithRateLimit(rate.NewLimiter(rate.Inf, 1)),
	)
}

func TestQuery_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("data"), "node(around:500")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elements":[
			{"id":1,"type":"node","lat":52.37,"lon":4.89,"tags":{"amenity":"cafe","name":"De Hoek"}},
			{"id":2,"type":"node","lat":52.371,"lon":4.891,"tags":{"amenity":"restaurant"}}
		]}`))
	}))
	defer srv.Close()

	elements, err := testClient(srv.URL).Query(context.Background(), `node(around:500,52.37,4.89)[amenity];out;`)
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "De Hoek", elements[0].Tag("name"))
	assert.Equal(t, "cafe", elements[0].Tag("amenity"))
	assert.Empty(t, elements[1].Tag("name"))
}

func TestQuery_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate_limited"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Query(context.Background(), "out;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestQuery_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Query(context.Background(), "out;")
	assert.Error(t, err)
}

func TestQuery_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels
		// the request context when the client disconnects; otherwise this
		// handler never unblocks and srv.Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).Query(ctx, "out;")
	assert.Error(t, err)
}
