package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tickergrid/screener/internal/cache"
	"github.com/tickergrid/screener/internal/domain"
	"github.com/tickergrid/screener/internal/ratelimit"
	"github.com/tickergrid/screener/internal/scanner"
	screenuc "github.com/tickergrid/screener/internal/usecase/screen"
)

// stubScanner replays a canned response for every scan endpoint.
type stubScanner struct {
	resp *scanner.Response
	err  error
}

func (s *stubScanner) scan() (*scanner.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &scanner.Response{}, nil
}

func (s *stubScanner) ScanStocks(context.Context, *scanner.Query) (*scanner.Response, error) {
	return s.scan()
}

func (s *stubScanner) ScanForex(context.Context, *scanner.Query) (*scanner.Response, error) {
	return s.scan()
}

func (s *stubScanner) ScanCrypto(context.Context, *scanner.Query) (*scanner.Response, error) {
	return s.scan()
}

func newTestRouter(t *testing.T, sc *stubScanner) chi.Router {
	t.Helper()
	svc := screenuc.New(sc, cache.New(time.Minute), ratelimit.New(1000), zap.NewNop())
	srv := NewServer(svc, zap.NewNop())

	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response body: %v\n%s", err, rec.Body.String())
	}
	return m
}

func TestScreenStocks_OK(t *testing.T) {
	sc := &stubScanner{resp: &scanner.Response{
		TotalCount: 1,
		Data:       []scanner.Row{{Symbol: "NASDAQ:AAPL", Values: []any{"AAPL", 190.5}}},
	}}
	r := newTestRouter(t, sc)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/stocks",
		`{"filters":[{"field":"close","operator":"greater","value":100}],"columns":["name","close"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total_count"] != float64(1) {
		t.Errorf("expected total_count=1, got %v", body["total_count"])
	}
	stocks, ok := body["stocks"].([]any)
	if !ok || len(stocks) != 1 {
		t.Fatalf("expected one stock row, got %v", body["stocks"])
	}
	row := stocks[0].(map[string]any)
	if row["symbol"] != "NASDAQ:AAPL" || row["name"] != "AAPL" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestScreenETF_ResponseKey(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/etf", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["etfs"]; !ok {
		t.Errorf("expected etfs key, got %v", body)
	}
}

func TestScreenForex_ResponseKey(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/forex", `{}`)
	body := decodeBody(t, rec)
	if _, ok := body["pairs"]; !ok {
		t.Errorf("expected pairs key, got %v", body)
	}
}

func TestScreenCrypto_ResponseKey(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/crypto", `{}`)
	body := decodeBody(t, rec)
	if _, ok := body["cryptocurrencies"]; !ok {
		t.Errorf("expected cryptocurrencies key, got %v", body)
	}
}

func TestScreenStocks_MalformedBody(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/stocks", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["code"] != "bad_request" {
		t.Errorf("expected bad_request code, got %v", body["code"])
	}
}

func TestScreenStocks_InvalidFilterDetailPreserved(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/stocks",
		`{"filters":[{"field":"close","operator":"bigger_than","value":1}]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["code"] != "invalid_filter" {
		t.Errorf("expected invalid_filter code, got %v", body["code"])
	}
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, `unknown operator "bigger_than"`) {
		t.Errorf("expected detailed filter message, got %q", msg)
	}
}

func TestScreenStocks_InvalidLimit(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/stocks", `{"limit":500}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["code"] != "invalid_request" {
		t.Errorf("expected invalid_request code, got %v", body["code"])
	}
}

func TestScreenStocks_ScannerErrorsMapToGatewayStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"upstream failure", domain.ErrScannerError, http.StatusBadGateway, "scanner_error"},
		{"timeout", domain.ErrScanTimeout, http.StatusGatewayTimeout, "scanner_timeout"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newTestRouter(t, &stubScanner{err: c.err})

			rec := doJSON(t, r, http.MethodPost, "/api/v1/screen/stocks", `{}`)
			if rec.Code != c.status {
				t.Fatalf("expected %d, got %d", c.status, rec.Code)
			}
			if body := decodeBody(t, rec); body["code"] != c.code {
				t.Errorf("expected code %q, got %v", c.code, body["code"])
			}
		})
	}
}

func TestLookup_OK(t *testing.T) {
	sc := &stubScanner{resp: &scanner.Response{
		TotalCount: 1,
		Data:       []scanner.Row{{Symbol: "NASDAQ:AAPL", Values: []any{"AAPL"}}},
	}}
	r := newTestRouter(t, sc)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/lookup", `{"symbols":["NASDAQ:AAPL"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if _, ok := body["symbols"]; !ok {
		t.Errorf("expected symbols key, got %v", body)
	}
}

func TestLookup_EmptySymbols(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/lookup", `{"symbols":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["code"] != "invalid_request" {
		t.Errorf("expected invalid_request, got %v", body["code"])
	}
}

func TestListFields_CategoryQuery(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fields?category=technical", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["field_count"] != float64(7) {
		t.Errorf("expected 7 technical fields, got %v", body["field_count"])
	}
	if body["category"] != "technical" {
		t.Errorf("expected category technical, got %v", body["category"])
	}
}

func TestPresets_ListAndGet(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	presets, ok := body["presets"].([]any)
	if !ok || len(presets) != 5 {
		t.Fatalf("expected 5 presets, got %v", body["presets"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/presets/value_stocks", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	preset := decodeBody(t, rec)
	if preset["name"] != "Value Stocks" {
		t.Errorf("unexpected preset: %v", preset)
	}
}

func TestPresets_Unknown(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets/moonshot", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["code"] != "preset_not_found" {
		t.Errorf("expected preset_not_found, got %v", body["code"])
	}
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t, &stubScanner{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}
