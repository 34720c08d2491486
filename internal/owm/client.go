// ABOUTME: OpenWeatherMap current-weather client with retry and circuit breaker.
// ABOUTME: Fetches metric readings by city name; bad key and unknown city never retry.
package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/config"
)

// requestTimeout bounds a single provider request.
const requestTimeout = 10 * time.Second

var (
	// ErrUnauthorized means the provider rejected the API key (HTTP 401).
	ErrUnauthorized = errors.New("invalid api key")
	// ErrCityNotFound means the provider does not know the city (HTTP 404).
	ErrCityNotFound = errors.New("city not found")

	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// backoffConfig controls exponential backoff between retries.
type backoffConfig struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// Client fetches current weather from OpenWeatherMap.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	backoff    backoffConfig
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the default 10s-timeout HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBackoff tunes the retry schedule.
func WithBackoff(maxRetries int, initial, max time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoffConfig{maxRetries: maxRetries, initialInterval: initial, maxInterval: max}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the given API key. The key is required.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key not configured: set OPENWEATHER_API_KEY or api_key in the config file")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    config.DefaultAPIBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return c, nil
}

// FetchByCity fetches current weather for "name,country" (country optional)
// in metric units.
func (c *Client) FetchByCity(ctx context.Context, name, country string) (*CurrentWeather, error) {
	query := name
	if country != "" {
		query = name + "," + country
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("appid", c.apiKey)
		values.Set("units", "metric")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	}

	c.logger.Debug("fetching weather", "city", query)

	resp, err := c.doRequestWithResilience(ctx, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %s: %w", query, err)
	}
	defer resp.Body.Close()

	var payload CurrentWeather
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather payload for %s: %w", query, err)
	}
	return &payload, nil
}

// FetchResult is the per-city outcome of a roster fetch: either Weather
// or Err is set for the given City.
type FetchResult struct {
	City    config.CityRef
	Weather *CurrentWeather
	Err     error
}

// FetchCities fetches each city in turn, tolerating per-city failures.
// The result slice is positionally aligned with the input roster.
func (c *Client) FetchCities(ctx context.Context, cities []config.CityRef) []FetchResult {
	results := make([]FetchResult, 0, len(cities))
	fetched := 0
	for _, ref := range cities {
		w, err := c.FetchByCity(ctx, ref.Name, ref.CountryCode)
		if err != nil {
			c.logger.Warn("fetch failed", "city", ref.String(), "error", err)
			results = append(results, FetchResult{City: ref, Err: err})
			continue
		}
		fetched++
		results = append(results, FetchResult{City: ref, Weather: w})
	}
	c.logger.Info("fetch complete", "fetched", fetched, "total", len(cities))
	return results
}

// TestConnection fetches London,GB as a connectivity and key probe.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.FetchByCity(ctx, "London", "GB"); err != nil {
		return fmt.Errorf("api connection test: %w", err)
	}
	return nil
}

// doRequestWithResilience executes the request with retries, exponential
// backoff, and the circuit breaker. Unauthorized and not-found responses
// abort immediately since retrying cannot change the outcome.
func (c *Client) doRequestWithResilience(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := c.breaker.Execute(func() (interface{}, error) {
			resp, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				resp.Body.Close()
				return nil, ErrUnauthorized
			case resp.StatusCode == http.StatusNotFound:
				resp.Body.Close()
				return nil, ErrCityNotFound
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrCityNotFound) {
			return nil, err
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.backoff.maxRetries {
			return nil, lastErr
		}

		delay := c.backoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.backoff.maxInterval && c.backoff.maxInterval > 0 {
			delay = c.backoff.maxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}
