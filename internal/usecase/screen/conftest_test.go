package screen

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/tickergrid/screener/internal/scanner"
)

// mockScanner records the queries it receives and replays a canned response.
type mockScanner struct {
	calls        int
	lastEndpoint string
	lastQuery    *scanner.Query
	resp         *scanner.Response
	err          error

	// onScan runs before the response is returned, for ordering assertions.
	onScan func()
}

func (m *mockScanner) scan(endpoint string, q *scanner.Query) (*scanner.Response, error) {
	m.calls++
	m.lastEndpoint = endpoint
	m.lastQuery = q
	if m.onScan != nil {
		m.onScan()
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &scanner.Response{}, nil
}

func (m *mockScanner) ScanStocks(_ context.Context, q *scanner.Query) (*scanner.Response, error) {
	return m.scan("stocks", q)
}

func (m *mockScanner) ScanForex(_ context.Context, q *scanner.Query) (*scanner.Response, error) {
	return m.scan("forex", q)
}

func (m *mockScanner) ScanCrypto(_ context.Context, q *scanner.Query) (*scanner.Response, error) {
	return m.scan("crypto", q)
}

// mockCache is a plain map store recording every key it sees.
type mockCache struct {
	store   map[string]any
	gets    []string
	sets    []string
	setsOff bool
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string]any{}}
}

func (m *mockCache) Get(key string) (any, bool) {
	m.gets = append(m.gets, key)
	v, ok := m.store[key]
	return v, ok
}

func (m *mockCache) Set(key string, value any) {
	m.sets = append(m.sets, key)
	if !m.setsOff {
		m.store[key] = value
	}
}

// mockLimiter counts admissions and can fail them.
type mockLimiter struct {
	acquires int
	err      error

	onAcquire func()
}

func (m *mockLimiter) Acquire(context.Context) error {
	m.acquires++
	if m.onAcquire != nil {
		m.onAcquire()
	}
	return m.err
}

// newTestService wires a service over the given mocks.
func newTestService(t *testing.T, sc *mockScanner, c *mockCache, l *mockLimiter) *Service {
	t.Helper()
	if sc == nil {
		sc = &mockScanner{}
	}
	if c == nil {
		c = newMockCache()
	}
	if l == nil {
		l = &mockLimiter{}
	}
	return New(sc, c, l, zap.NewNop())
}

// sampleResponse builds a two-row scan response matching the given columns.
func sampleResponse(totalCount int) *scanner.Response {
	return &scanner.Response{
		TotalCount: totalCount,
		Data: []scanner.Row{
			{Symbol: "NASDAQ:AAPL", Values: []any{"AAPL", 190.5}},
			{Symbol: "NASDAQ:MSFT", Values: []any{"MSFT", 410.0}},
		},
	}
}
