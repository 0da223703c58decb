// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the EODHDClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

var _ interfaces.EODHDClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig creates a client from the [clients.eodhd] section
func NewClientFromConfig(config common.EODHDConfig, logger arbor.ILogger) *Client {
	return NewClient(config.APIKey,
		WithBaseURL(config.BaseURL),
		WithRateLimit(config.RateLimit),
		WithTimeout(config.GetTimeout()),
		WithLogger(logger),
	)
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	// Add API key
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetEOD retrieves daily bars in ascending date order
func (c *Client) GetEOD(ctx context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	params := &interfaces.EODParams{
		Period: "d",
		Order:  "a",
	}

	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period", params.Period)
	urlParams.Set("order", params.Order)

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", url.PathEscape(ticker))

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, err
	}

	result := &models.EODResponse{
		Data: make([]models.EODBar, 0, len(bars)),
	}

	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			c.logger.Warn().Str("ticker", ticker).Str("date", bar.Date).Msg("Skipping bar with unparseable date")
			continue
		}
		result.Data = append(result.Data, models.EODBar{
			Date:     date,
			Open:     float64(bar.Open),
			High:     float64(bar.High),
			Low:      float64(bar.Low),
			Close:    float64(bar.Close),
			AdjClose: float64(bar.AdjustedClose),
			Volume:   int64(bar.Volume),
		})
	}

	return result, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

// GetFundamentals retrieves the company descriptors for a ticker
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", url.PathEscape(ticker))

	params := url.Values{}
	params.Set("filter", "General,AnalystRatings")

	var resp fundamentalsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.General.Name == "" && resp.General.Code == "" {
		return nil, fmt.Errorf("no fundamentals for %s", ticker)
	}

	return &models.Fundamentals{
		Ticker:      ticker,
		Name:        resp.General.Name,
		Type:        resp.General.Type,
		Sector:      resp.General.Sector,
		Industry:    resp.General.Industry,
		Country:     resp.General.CountryName,
		CountryISO:  resp.General.CountryISO,
		WebURL:      resp.General.WebURL,
		Rating:      float64(resp.AnalystRatings.Rating),
		LastUpdated: time.Now(),
	}, nil
}

// fundamentalsResponse is the filtered fundamentals payload
type fundamentalsResponse struct {
	General struct {
		Code        string `json:"Code"`
		Name        string `json:"Name"`
		Type        string `json:"Type"`
		Sector      string `json:"Sector"`
		Industry    string `json:"Industry"`
		CountryName string `json:"CountryName"`
		CountryISO  string `json:"CountryISO"`
		WebURL      string `json:"WebURL"`
	} `json:"General"`
	AnalystRatings struct {
		Rating flexFloat64 `json:"Rating"`
	} `json:"AnalystRatings"`
}
