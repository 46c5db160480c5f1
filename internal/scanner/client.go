package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tickergrid/screener/internal/domain"
	"github.com/tickergrid/screener/internal/metrics"
)

// Defaults for the upstream scanner API.
const (
	DefaultBaseURL = "https://scanner.tradingview.com"
	DefaultTimeout = 10 * time.Second
)

// Client is the HTTP adapter for the upstream scanner API.
type Client struct {
	httpc     *http.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

// Config holds the scanner client settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// NewClient creates a scanner API client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpc:     &http.Client{},
		baseURL:   baseURL,
		timeout:   timeout,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// ScanStocks scans the global equity market. ETF screens and direct symbol
// lookups go through this endpoint as well.
func (c *Client) ScanStocks(ctx context.Context, q *Query) (*Response, error) {
	return c.scan(ctx, "/global/scan", q)
}

// ScanForex scans forex pairs.
func (c *Client) ScanForex(ctx context.Context, q *Query) (*Response, error) {
	return c.scan(ctx, "/forex/scan", q)
}

// ScanCrypto scans cryptocurrencies.
func (c *Client) ScanCrypto(ctx context.Context, q *Query) (*Response, error) {
	return c.scan(ctx, "/crypto/scan", q)
}

// scan posts one query and decodes the row-oriented result set.
// Timeouts surface as domain.ErrScanTimeout; any other transport or status
// failure wraps domain.ErrScannerError.
func (c *Client) scan(ctx context.Context, endpoint string, q *Query) (*Response, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal scan query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()

	resp, err := c.httpc.Do(req)

	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.ScannerRequestsTotal.WithLabelValues(endpoint, "timeout").Inc()
			return nil, fmt.Errorf("scan %s: %w", endpoint, domain.ErrScanTimeout)
		}
		metrics.ScannerRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("scan %s: %v: %w", endpoint, err, domain.ErrScannerError)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.ScannerRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("Scanner API returned non-success status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("scanner API error %d: %s: %w",
			resp.StatusCode, http.StatusText(resp.StatusCode), domain.ErrScannerError)
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		metrics.ScannerRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("decode scan response: %v: %w", err, domain.ErrScannerError)
	}

	metrics.ScannerRequestsTotal.WithLabelValues(endpoint, "success").Inc()
	metrics.ScannerRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	return &out, nil
}

// maxResponseBytes bounds scan response decoding (200 rows of wide column
// sets stay well under this).
const maxResponseBytes = 16 << 20
