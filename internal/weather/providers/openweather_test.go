package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-pipeline/internal/weather"
)

const currentConditionsBody = `{
	"coord": {"lon": -79.42, "lat": 43.7},
	"weather": [{"main": "Clouds", "description": "overcast clouds", "icon": "04d"}],
	"main": {"temp": 7.2, "feels_like": 4.3, "temp_min": 5.8, "temp_max": 8.9, "pressure": 1013, "humidity": 75},
	"wind": {"speed": 4.5, "deg": 250},
	"clouds": {"all": 90},
	"visibility": 10000,
	"dt": 1705776000,
	"sys": {"country": "CA"},
	"timezone": -18000,
	"name": "Toronto"
}`

// newTestClient points a client at a test server with a fast backoff so
// retry tests finish in milliseconds.
func newTestClient(srv *httptest.Server, apiKey string) *OpenWeatherClient {
	c := NewOpenWeatherClient(srv.Client(), apiKey, srv.URL)
	c.httpCfg.Backoff = BackoffConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
	return c
}

func TestFetchDecodesCurrentConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Toronto", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(currentConditionsBody))
	}))
	defer srv.Close()

	c := newTestClient(srv, "test-key")
	raw, err := c.Fetch(context.Background(), "Toronto", weather.UnitsMetric)
	require.NoError(t, err)

	assert.Equal(t, "Toronto", raw.Name)
	require.NotNil(t, raw.Main.Temp)
	assert.Equal(t, 7.2, *raw.Main.Temp)
	assert.Equal(t, "CA", raw.Sys.Country)
	require.Len(t, raw.Weather, 1)
	assert.Equal(t, "Clouds", raw.Weather[0].Main)
}

func TestFetchAuthErrorIsNotRetried(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv, "bad-key")
	_, err := c.Fetch(context.Background(), "Toronto", weather.UnitsMetric)

	require.ErrorIs(t, err, weather.ErrAuth)
	assert.Equal(t, int64(1), atomic.LoadInt64(&requests), "auth failures must surface without retries")
}

func TestFetchUnknownCityIsNotRetried(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv, "test-key")
	_, err := c.Fetch(context.Background(), "Unknownville", weather.UnitsMetric)

	require.ErrorIs(t, err, weather.ErrCityNotFound)
	assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
}

func TestFetchServerErrorRetriesToBudget(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv, "test-key")
	_, err := c.Fetch(context.Background(), "Toronto", weather.UnitsMetric)

	require.ErrorIs(t, err, weather.ErrNetwork)
	// Initial attempt plus MaxRetries.
	assert.Equal(t, int64(3), atomic.LoadInt64(&requests))
}

func TestFetchRateLimitRecoversAfterRetry(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&requests, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(currentConditionsBody))
	}))
	defer srv.Close()

	c := newTestClient(srv, "test-key")
	raw, err := c.Fetch(context.Background(), "Toronto", weather.UnitsMetric)

	require.NoError(t, err)
	assert.Equal(t, "Toronto", raw.Name)
	assert.Equal(t, int64(3), atomic.LoadInt64(&requests))
}

func TestFetchConnectionFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(srv, "test-key")
	srv.Close()

	_, err := c.Fetch(context.Background(), "Toronto", weather.UnitsMetric)
	require.ErrorIs(t, err, weather.ErrNetwork)
}

func TestFetchMissingAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without a credential")
	}))
	defer srv.Close()

	c := newTestClient(srv, "")
	_, err := c.Fetch(context.Background(), "Toronto", weather.UnitsMetric)
	require.ErrorIs(t, err, weather.ErrAuth)
}

func TestFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-json{"))
	}))
	defer srv.Close()

	c := newTestClient(srv, "test-key")
	_, err := c.Fetch(context.Background(), "Toronto", weather.UnitsMetric)
	require.ErrorIs(t, err, weather.ErrBadPayload)
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv, "test-key")
	_, err := c.Fetch(ctx, "Toronto", weather.UnitsMetric)
	require.Error(t, err)
}
