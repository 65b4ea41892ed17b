package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"weather-pipeline/internal/weather"
)

// OpenWeatherClient implements the weather.Fetcher interface for the
// OpenWeatherMap current-conditions endpoint.
type OpenWeatherClient struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient builds a client against the given endpoint.
// An empty baseURL falls back to the public API.
func NewOpenWeatherClient(client *http.Client, apiKey, baseURL string) *OpenWeatherClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5/weather"
	}

	return &OpenWeatherClient{
		name:    weather.SourceOpenWeatherMap,
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (c *OpenWeatherClient) Name() string {
	return c.name
}

// Fetch retrieves current conditions for a city. The returned error is
// always one of the classified ingestion kinds; only network and
// rate-limit failures are retried, within the client's backoff budget.
func (c *OpenWeatherClient) Fetch(ctx context.Context, city string, units weather.Units) (weather.CurrentConditions, error) {
	if c.apiKey == "" {
		return weather.CurrentConditions{}, fmt.Errorf("%w: api key is not configured", weather.ErrAuth)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", c.apiKey)
		values.Set("units", string(units))

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return weather.CurrentConditions{}, err
	}
	defer resp.Body.Close()

	var payload weather.CurrentConditions
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("%w: %v", weather.ErrBadPayload, err)
	}

	return payload, nil
}
