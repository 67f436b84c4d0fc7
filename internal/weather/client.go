// Package weather fetches short-range forecasts from weatherapi.com.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/retry"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the provider cannot be reached or answers with an error
var ErrUnavailable = errors.New("unable to fetch weather")

type forecastResponse struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64 `json:"maxtemp_c"`
				MinTempC  float64 `json:"mintemp_c"`
				Condition struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Client is a forecast client. Responses are cached per coordinate unless the
// configured TTL is zero.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	days       int
	cache      *cache.Cache
	retry      retry.Policy
	logger     *zap.Logger
}

// NewClient creates a new forecast client
func NewClient(cfg config.WeatherConfig, logger *zap.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		days:       cfg.Days,
		retry:      retry.Once,
		logger:     logger,
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// Forecast returns the daily forecast at a coordinate
func (c *Client) Forecast(ctx context.Context, lat, lng float64) (*model.Weather, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lng)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached.(*model.Weather), nil
		}
	}

	params := url.Values{
		"key":  {c.apiKey},
		"q":    {strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)},
		"days": {strconv.Itoa(c.days)},
	}
	endpoint := c.baseURL + "/forecast.json?" + params.Encode()

	var raw forecastResponse
	err := c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d", resp.StatusCode)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Permanent(err)
			}
			return err
		}

		raw = forecastResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return retry.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("Weather request failed", zap.String("q", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	w := reshape(raw)
	if c.cache != nil {
		c.cache.Set(key, w, cache.DefaultExpiration)
	}
	return w, nil
}

func reshape(raw forecastResponse) *model.Weather {
	w := &model.Weather{
		Location: raw.Location.Name,
		Region:   raw.Location.Region,
		Country:  raw.Location.Country,
		Forecast: make([]model.ForecastDay, 0, len(raw.Forecast.ForecastDay)),
	}
	for _, d := range raw.Forecast.ForecastDay {
		w.Forecast = append(w.Forecast, model.ForecastDay{
			Date:        d.Date,
			TempMin:     d.Day.MinTempC,
			TempMax:     d.Day.MaxTempC,
			Description: d.Day.Condition.Text,
			Icon:        d.Day.Condition.Icon,
		})
	}
	return w
}
