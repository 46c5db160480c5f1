package screen

import (
	"context"

	"github.com/tickergrid/screener/internal/scanner"
)

// Scanner is the upstream market-scanner contract.
type Scanner interface {
	ScanStocks(ctx context.Context, q *scanner.Query) (*scanner.Response, error)
	ScanForex(ctx context.Context, q *scanner.Query) (*scanner.Response, error)
	ScanCrypto(ctx context.Context, q *scanner.Query) (*scanner.Response, error)
}

// Cache stores computed screen results by request signature.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Limiter gates outbound scanner calls, delaying saturated callers.
type Limiter interface {
	Acquire(ctx context.Context) error
}
