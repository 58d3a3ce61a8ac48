package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client implements domain.Geocoder against the Nominatim reverse API.
// Requests are throttled through a rate limiter; the public instance
// enforces one request per second and blocks offenders by user agent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. minInterval is the minimum spacing
// between outgoing requests; userAgent identifies the caller as the usage
// policy requires.
func NewClient(baseURL, userAgent string, timeout, minInterval time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		logger:    logger,
	}
}

// ReverseGeocode converts coordinates to a display address. An empty
// address with a nil error means the provider had no result for the point.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"format": {"jsonv2"},
		"lat":    {fmt.Sprintf("%.7f", lat)},
		"lon":    {fmt.Sprintf("%.7f", lon)},
	}
	fullURL := c.baseURL + "/reverse?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var nr response
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	// Nominatim reports "unable to geocode" as an error field with 200.
	if nr.Error != "" {
		c.logger.Debug("no reverse geocoding result",
			"lat", lat,
			"lon", lon,
			"reason", nr.Error,
		)
		return "", nil
	}
	return nr.DisplayName, nil
}

// Nominatim API response types.

type response struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}
