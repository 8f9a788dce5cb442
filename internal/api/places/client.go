package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

const (
	DefaultBaseURL        = "https://maps.googleapis.com/maps/api"
	DefaultTimeout        = 10 * time.Second
	DefaultGeocodeTimeout = 5 * time.Second
	DefaultRateLimit      = 10
	DefaultPhotoMaxWidth  = 400

	serviceName    = "google_places"
	userAgent      = "go-food-recommender/1.0"
	maxLoggedBytes = 1000
)

// ErrPlaceNotFound is returned when the service answers correctly but has no matching place.
var ErrPlaceNotFound = errors.New("place not found")

var apiKeyPattern = regexp.MustCompile(`key=[^&]+`)

// Client talks to the Google Maps Places and Geocoding web services.
type Client struct {
	baseURL        string
	apiKey         string
	language       string
	timeout        time.Duration
	geocodeTimeout time.Duration
	photoMaxWidth  int
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLanguage(language string) ClientOption {
	return func(c *Client) {
		c.language = language
	}
}

// WithTimeouts sets the per-call bound for place calls and for reverse geocoding.
func WithTimeouts(call, geocode time.Duration) ClientOption {
	return func(c *Client) {
		if call > 0 {
			c.timeout = call
		}
		if geocode > 0 {
			c.geocodeTimeout = geocode
		}
	}
}

func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

func WithPhotoMaxWidth(width int) ClientOption {
	return func(c *Client) {
		if width > 0 {
			c.photoMaxWidth = width
		}
	}
}

// NewClient creates a Maps client. The API key is required by every call.
func NewClient(apiKey string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		apiKey:         apiKey,
		timeout:        DefaultTimeout,
		geocodeTimeout: DefaultGeocodeTimeout,
		photoMaxWidth:  DefaultPhotoMaxWidth,
		httpClient:     &http.Client{},
		limiter:        rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// get issues a GET against path and decodes the body into dst. The whole exchange is
// bounded by timeout and the rate limiter, and guarded by the request's circuit breaker
// when ctx carries one.
func (c *Client) get(ctx context.Context, path string, params url.Values, timeout time.Duration, dst interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	logURL := redactKey(reqURL)

	if err := c.limiter.Wait(ctx); err != nil {
		return &types.UpstreamError{Kind: types.UpstreamUnavailable, Service: serviceName, Message: "rate limiter wait failed", Err: err}
	}

	fetch := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &types.UpstreamError{Kind: types.UpstreamUnavailable, Service: serviceName, Err: err}
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &types.UpstreamError{Kind: types.UpstreamUnavailable, Service: serviceName, Message: "failed to read response body", Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &types.UpstreamError{
				Kind:    types.UpstreamUnavailable,
				Service: serviceName,
				Message: fmt.Sprintf("unexpected HTTP status %d: %s", resp.StatusCode, truncate(string(raw), maxLoggedBytes)),
				Code:    resp.StatusCode,
			}
		}
		return raw, nil
	}

	var body []byte
	var err error
	if cb := breakerFrom(ctx); cb != nil {
		body, err = cb.Execute(fetch)
	} else {
		body, err = fetch()
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &types.UpstreamError{Kind: types.UpstreamUnavailable, Service: serviceName, Message: "circuit breaker rejected request", Err: err}
		}
		c.logger.WarnContext(ctx, "Maps API request failed", slog.String("url", logURL), slog.Any("error", err))
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		c.logger.WarnContext(ctx, "Maps API returned undecodable body",
			slog.String("url", logURL),
			slog.String("body", truncate(string(body), maxLoggedBytes)),
			slog.Any("error", err))
		return &types.UpstreamError{Kind: types.UpstreamMalformed, Service: serviceName, Message: "failed to decode response", Err: err}
	}
	return nil
}

// statusError maps a non-OK API status to an error. ZERO_RESULTS and NOT_FOUND mean the
// lookup succeeded without a match.
func statusError(env apiEnvelope) error {
	switch env.Status {
	case StatusOK:
		return nil
	case StatusZeroResults, StatusNotFound:
		return ErrPlaceNotFound
	}
	msg := env.ErrorMessage
	if msg == "" {
		msg = "unknown error"
	}
	return &types.UpstreamError{Kind: types.UpstreamMalformed, Service: serviceName, Message: msg, Type: env.Status}
}

func redactKey(u string) string {
	return apiKeyPattern.ReplaceAllString(u, "key=REDACTED")
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "... (truncated)"
	}
	return s
}
