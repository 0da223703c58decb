// Package holdings downloads the fund's published holdings files
package holdings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
)

const (
	DefaultUserAgent = "Mozilla/5.0"
	DefaultTimeout   = 10 * time.Second
	// maxFileSize caps a downloaded holdings file
	maxFileSize = 10 << 20
)

// Client downloads holdings CSVs from a URL template containing {file}
type Client struct {
	urlTemplate string
	userAgent   string
	httpClient  *http.Client
	logger      arbor.ILogger
}

var _ interfaces.HoldingsClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new holdings client
func NewClient(urlTemplate string, opts ...ClientOption) *Client {
	c := &Client{
		urlTemplate: urlTemplate,
		userAgent:   DefaultUserAgent,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		logger:      common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a client from the [fund] and [clients.holdings] sections
func NewClientFromConfig(fund common.FundConfig, config common.HoldingsConfig, logger arbor.ILogger) *Client {
	return NewClient(fund.HoldingsURL,
		WithUserAgent(config.UserAgent),
		WithTimeout(config.GetTimeout()),
		WithLogger(logger),
	)
}

// APIError is a non-200 response from the holdings host
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("holdings download failed: status %d (%s)", e.StatusCode, e.URL)
}

// URL returns the download URL for a file name
func (c *Client) URL(fileName string) string {
	return strings.ReplaceAll(c.urlTemplate, "{file}", fileName)
}

// Download fetches a holdings file by name
func (c *Client) Download(ctx context.Context, fileName string) ([]byte, error) {
	if c.urlTemplate == "" {
		return nil, fmt.Errorf("holdings URL not configured")
	}
	u := c.URL(fileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().Str("url", u).Msg("Holdings download")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: u}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty holdings file %s", fileName)
	}
	return data, nil
}
