package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const forecastBody = `{
  "location": {"name": "Lyon", "region": "Rhône-Alpes", "country": "France"},
  "forecast": {"forecastday": [
    {"date": "2026-10-15", "day": {"maxtemp_c": 18.2, "mintemp_c": 9.1, "condition": {"text": "Sunny", "icon": "//cdn/113.png"}}},
    {"date": "2026-10-16", "day": {"maxtemp_c": 15.0, "mintemp_c": 8.4, "condition": {"text": "Light rain", "icon": "//cdn/296.png"}}},
    {"date": "2026-10-17", "day": {"maxtemp_c": 14.1, "mintemp_c": 7.0, "condition": {"text": "Cloudy", "icon": "//cdn/119.png"}}}
  ]}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, ttl time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.WeatherConfig{
		APIKey:   "k",
		BaseURL:  srv.URL,
		Days:     3,
		CacheTTL: ttl,
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	c.retry = retry.Policy{Retries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	return c
}

func TestClient_Forecast(t *testing.T) {
	t.Run("Reshapes the provider response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/forecast.json", r.URL.Path)
			assert.Equal(t, "k", r.URL.Query().Get("key"))
			assert.Equal(t, "45.7676,4.8344", r.URL.Query().Get("q"))
			assert.Equal(t, "3", r.URL.Query().Get("days"))
			fmt.Fprint(w, forecastBody)
		}, 0)

		w, err := c.Forecast(context.Background(), 45.7676, 4.8344)
		require.NoError(t, err)
		assert.Equal(t, "Lyon", w.Location)
		assert.Equal(t, "Rhône-Alpes", w.Region)
		assert.Equal(t, "France", w.Country)
		require.Len(t, w.Forecast, 3)
		assert.Equal(t, "2026-10-16", w.Forecast[1].Date)
		assert.InDelta(t, 8.4, w.Forecast[1].TempMin, 1e-9)
		assert.InDelta(t, 15.0, w.Forecast[1].TempMax, 1e-9)
		assert.Equal(t, "Light rain", w.Forecast[1].Description)
		assert.Equal(t, "//cdn/296.png", w.Forecast[1].Icon)
	})

	t.Run("Cached per coordinate", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, forecastBody)
		}, time.Minute)

		for i := 0; i < 3; i++ {
			_, err := c.Forecast(context.Background(), 45.7676, 4.8344)
			require.NoError(t, err)
		}
		_, err := c.Forecast(context.Background(), 48.8566, 2.3522)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Server error retried once then reported", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}, time.Minute)

		_, err := c.Forecast(context.Background(), 1, 2)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Bad key is not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}, time.Minute)

		_, err := c.Forecast(context.Background(), 1, 2)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, int32(1), calls.Load())
	})
}
