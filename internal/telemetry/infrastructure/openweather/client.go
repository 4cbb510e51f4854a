package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pokefinder-cloud/internal/observability/metrics"
	"pokefinder-cloud/internal/telemetry/application"
)

// DefaultBaseURL is the OpenWeatherMap current-weather endpoint root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs a client. baseURL defaults to the public API.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openweather: api key required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Current implements application.WeatherProvider using metric units.
func (c *Client) Current(ctx context.Context, lat, lng float64) (application.Weather, error) {
	weather, err := c.fetch(ctx, lat, lng)
	if err != nil {
		metrics.IncWeatherLookup("error")
		return application.Weather{}, err
	}
	metrics.IncWeatherLookup("")
	return weather, nil
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (application.Weather, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	endpoint := c.baseURL + "/weather?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return application.Weather{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return application.Weather{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return application.Weather{}, fmt.Errorf("openweather: status %d", resp.StatusCode)
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return application.Weather{}, fmt.Errorf("openweather: decode response: %w", err)
	}
	if len(body.Weather) == 0 {
		return application.Weather{}, errors.New("openweather: empty weather block")
	}
	return application.Weather{
		Description: body.Weather[0].Description,
		TempC:       body.Main.Temp,
	}, nil
}
