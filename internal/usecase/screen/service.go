// Package screen orchestrates the screening pipeline: cache lookup, filter
// translation, column derivation, rate-limit admission, scanner invocation,
// and row projection.
package screen

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tickergrid/screener/internal/domain"
	"github.com/tickergrid/screener/internal/domain/screen/filter"
	"github.com/tickergrid/screener/internal/scanner"
)

// Screening parameter limits.
const (
	MinLimit         = 1
	MaxLimit         = 200
	DefaultLimit     = 20
	MaxLookupSymbols = 100
)

// Default column sets per asset domain.
var (
	// DefaultStockColumns is the minimal equity column set for lean responses.
	DefaultStockColumns = []string{
		"name",
		"close",
		"market_cap_basic",
		"return_on_equity",
		"price_earnings_ttm",
		"debt_to_equity",
		"exchange",
	}

	// ExtendedStockColumns adds the fields needed for comprehensive analysis.
	ExtendedStockColumns = append(append([]string{}, DefaultStockColumns...),
		"free_cash_flow_ttm",
		"free_cash_flow_margin_ttm",
		"earnings_release_next_trading_date_fq",
		"fundamental_currency_code",
		"dividends_yield_current",
		"dividend_payout_ratio_ttm",
		"beta_5_year",
		"sector",
		"industry",
		"earnings_per_share_diluted_yoy_growth_ttm",
	)

	// DefaultETFColumns is the default ETF column set.
	DefaultETFColumns = []string{"name", "close", "volume", "change", "change_from_open"}

	// DefaultLookupColumns is the default symbol-lookup column set.
	DefaultLookupColumns = []string{
		"name",
		"close",
		"change",
		"volume",
		"market_cap_basic",
		"all_time_high",
		"all_time_low",
		"price_52_week_high",
		"price_52_week_low",
	}

	defaultForexColumns  = []string{"name", "close", "change"}
	defaultCryptoColumns = []string{"name", "close", "market_cap_basic", "change"}
)

// Input holds screening parameters shared by all asset domains.
// Filters are decoded JSON values, validated during translation.
type Input struct {
	Filters   []any
	Markets   []string
	SortBy    string
	SortOrder string
	Limit     int
	Columns   []string
}

// LookupInput holds direct symbol lookup parameters.
type LookupInput struct {
	Symbols []string
	Columns []string
}

// Row is one projected result: "symbol" plus one key per derived column.
type Row map[string]any

// Result is a projected scan result.
type Result struct {
	TotalCount int
	Rows       []Row
}

// Service runs the screening pipeline against the upstream scanner.
type Service struct {
	scanner    Scanner
	cache      Cache
	limiter    Limiter
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a screening service.
func New(sc Scanner, cache Cache, limiter Limiter, logger *zap.Logger) *Service {
	return &Service{scanner: sc, cache: cache, limiter: limiter, logger: logger}
}

// WithCacheMetric attaches a counter vec with label "result" ("hit"/"miss").
func (s *Service) WithCacheMetric(cv *prometheus.CounterVec) *Service {
	s.cacheTotal = cv
	return s
}

// domainSpec fixes the per-domain defaults and scan endpoint; the pipeline
// itself is identical across domains.
type domainSpec struct {
	tag            string
	defaultSortBy  string
	defaultColumns []string
	useMarkets     bool
	extraFilters   []scanner.Predicate
	scan           func(context.Context, *scanner.Query) (*scanner.Response, error)
}

// Stocks screens equities.
func (s *Service) Stocks(ctx context.Context, in Input) (*Result, error) {
	return s.screen(ctx, domainSpec{
		tag:            "stock",
		defaultSortBy:  "market_cap_basic",
		defaultColumns: DefaultStockColumns,
		useMarkets:     true,
		scan:           s.scanner.ScanStocks,
	}, in)
}

// ETF screens exchange-traded funds. A synthetic type=fund predicate is
// appended after all caller filters to restrict results to funds.
func (s *Service) ETF(ctx context.Context, in Input) (*Result, error) {
	return s.screen(ctx, domainSpec{
		tag:            "etf",
		defaultSortBy:  "market_cap_basic",
		defaultColumns: DefaultETFColumns,
		useMarkets:     true,
		extraFilters: []scanner.Predicate{
			{Left: "type", Operation: "equal", Right: "fund"},
		},
		scan: s.scanner.ScanStocks,
	}, in)
}

// Forex screens currency pairs.
func (s *Service) Forex(ctx context.Context, in Input) (*Result, error) {
	return s.screen(ctx, domainSpec{
		tag:            "forex",
		defaultSortBy:  "volume",
		defaultColumns: defaultForexColumns,
		scan:           s.scanner.ScanForex,
	}, in)
}

// Crypto screens cryptocurrencies.
func (s *Service) Crypto(ctx context.Context, in Input) (*Result, error) {
	return s.screen(ctx, domainSpec{
		tag:            "crypto",
		defaultSortBy:  "market_cap_basic",
		defaultColumns: defaultCryptoColumns,
		scan:           s.scanner.ScanCrypto,
	}, in)
}

// screen is the shared request lifecycle: validate, check cache, translate
// filters, derive columns, acquire rate limit, invoke scanner, project rows,
// write cache. Any failure aborts the call with no cache write.
func (s *Service) screen(ctx context.Context, dom domainSpec, in Input) (*Result, error) {
	limit := in.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < MinLimit || limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between %d and %d, got %d",
			domain.ErrInvalidRequest, MinLimit, MaxLimit, in.Limit)
	}

	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = dom.defaultSortBy
	}
	sortOrder := in.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	var markets []string
	if dom.useMarkets {
		markets = in.Markets
		if len(markets) == 0 {
			markets = []string{"america"}
		}
	}

	key := requestKey(keyPayload{
		Domain:    dom.tag,
		Filters:   in.Filters,
		Markets:   markets,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Limit:     limit,
		Columns:   in.Columns,
	})
	if res, ok := s.cached(key); ok {
		return res, nil
	}

	filters, err := filter.ParseList(in.Filters)
	if err != nil {
		return nil, err
	}

	base := in.Columns
	if len(base) == 0 {
		base = dom.defaultColumns
	}
	columns := deriveColumns(base, filters)

	preds := append(translate(filters), dom.extraFilters...)

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire rate limit: %w", err)
	}

	resp, err := dom.scan(ctx, &scanner.Query{
		Filter:  preds,
		Columns: columns,
		Sort:    scanner.Sort{SortBy: sortBy, SortOrder: sortOrder},
		Range:   [2]int{0, limit},
		Options: scanner.Options{Lang: "en"},
		Symbols: scanner.Symbols{Query: scanner.SymbolQuery{Types: []string{}}, Tickers: []string{}},
		Markets: markets,
	})
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", dom.tag, err)
	}

	result := &Result{TotalCount: resp.TotalCount, Rows: projectRows(resp.Data, columns)}
	s.cache.Set(key, result)

	s.logger.Debug("Screen completed",
		zap.String("domain", dom.tag),
		zap.Int("total_count", result.TotalCount),
		zap.Int("rows", len(result.Rows)),
	)
	return result, nil
}

// Lookup fetches explicit tickers through the symbols clause, with an empty
// filter list and a row range equal to the ticker count.
func (s *Service) Lookup(ctx context.Context, in LookupInput) (*Result, error) {
	if len(in.Symbols) == 0 {
		return nil, fmt.Errorf("%w: at least one symbol is required", domain.ErrInvalidRequest)
	}
	if len(in.Symbols) > MaxLookupSymbols {
		return nil, fmt.Errorf("%w: maximum %d symbols allowed, got %d",
			domain.ErrInvalidRequest, MaxLookupSymbols, len(in.Symbols))
	}

	columns := in.Columns
	if len(columns) == 0 {
		columns = DefaultLookupColumns
	}

	key := requestKey(keyPayload{
		Domain:  "lookup",
		Columns: columns,
		Tickers: in.Symbols,
	})
	if res, ok := s.cached(key); ok {
		return res, nil
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire rate limit: %w", err)
	}

	resp, err := s.scanner.ScanStocks(ctx, &scanner.Query{
		Filter:  []scanner.Predicate{},
		Columns: columns,
		Sort:    scanner.Sort{SortBy: "name", SortOrder: "asc"},
		Range:   [2]int{0, len(in.Symbols)},
		Options: scanner.Options{Lang: "en"},
		Symbols: scanner.Symbols{Query: scanner.SymbolQuery{Types: []string{}}, Tickers: in.Symbols},
	})
	if err != nil {
		return nil, fmt.Errorf("lookup symbols: %w", err)
	}

	result := &Result{TotalCount: resp.TotalCount, Rows: projectRows(resp.Data, columns)}
	s.cache.Set(key, result)
	return result, nil
}

// cached returns the stored result for key, counting hits and misses.
func (s *Service) cached(key string) (*Result, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		s.incCache("miss")
		return nil, false
	}
	res, ok := v.(*Result)
	if !ok {
		s.incCache("miss")
		return nil, false
	}
	s.incCache("hit")
	return res, true
}

func (s *Service) incCache(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(result).Inc()
	}
}
