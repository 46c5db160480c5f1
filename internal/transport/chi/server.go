// Package chi exposes the screening services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tickergrid/screener/internal/catalog"
	"github.com/tickergrid/screener/internal/domain"
	screenuc "github.com/tickergrid/screener/internal/usecase/screen"
	"github.com/tickergrid/screener/internal/version"
)

// Error response codes.
const (
	codeBadRequest     = "bad_request"
	codeInvalidFilter  = "invalid_filter"
	codeInvalidRequest = "invalid_request"
	codePresetNotFound = "preset_not_found"
	codeScannerTimeout = "scanner_timeout"
	codeScannerError   = "scanner_error"
	codeInternalError  = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes screening requests to the use-case layer.
type Server struct {
	screen        *screenuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(screen *screenuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		screen: screen,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeInvalidRequest),
		sentinelHandler(domain.ErrPresetNotFound, http.StatusNotFound, codePresetNotFound),
		sentinelHandler(domain.ErrScanTimeout, http.StatusGatewayTimeout, codeScannerTimeout),
		sentinelHandler(domain.ErrScannerError, http.StatusBadGateway, codeScannerError),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/screen/stocks", s.ScreenStocks)
		r.Post("/screen/etf", s.ScreenETF)
		r.Post("/screen/forex", s.ScreenForex)
		r.Post("/screen/crypto", s.ScreenCrypto)
		r.Post("/lookup", s.Lookup)
		r.Get("/fields", s.ListFields)
		r.Get("/presets", s.ListPresets)
		r.Get("/presets/{name}", s.GetPreset)
	})
	r.Get("/healthz", s.HealthCheck)
}

// screenRequest is the request body shared by all screening endpoints.
type screenRequest struct {
	Filters   []any    `json:"filters"`
	Markets   []string `json:"markets"`
	SortBy    string   `json:"sort_by"`
	SortOrder string   `json:"sort_order"`
	Limit     int      `json:"limit"`
	Columns   []string `json:"columns"`
}

func (req screenRequest) toInput() screenuc.Input {
	return screenuc.Input{
		Filters:   req.Filters,
		Markets:   req.Markets,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     req.Limit,
		Columns:   req.Columns,
	}
}

// lookupRequest is the request body for direct symbol lookup.
type lookupRequest struct {
	Symbols []string `json:"symbols"`
	Columns []string `json:"columns"`
}

type stocksResponse struct {
	TotalCount int            `json:"total_count"`
	Stocks     []screenuc.Row `json:"stocks"`
}

type etfsResponse struct {
	TotalCount int            `json:"total_count"`
	ETFs       []screenuc.Row `json:"etfs"`
}

type pairsResponse struct {
	TotalCount int            `json:"total_count"`
	Pairs      []screenuc.Row `json:"pairs"`
}

type cryptosResponse struct {
	TotalCount int            `json:"total_count"`
	Cryptos    []screenuc.Row `json:"cryptocurrencies"`
}

type symbolsResponse struct {
	TotalCount int            `json:"total_count"`
	Symbols    []screenuc.Row `json:"symbols"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScreenStocks handles POST /api/v1/screen/stocks.
func (s *Server) ScreenStocks(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeScreen(w, r)
	if !ok {
		return
	}

	res, err := s.screen.Stocks(r.Context(), req.toInput())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stocksResponse{TotalCount: res.TotalCount, Stocks: res.Rows})
}

// ScreenETF handles POST /api/v1/screen/etf.
func (s *Server) ScreenETF(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeScreen(w, r)
	if !ok {
		return
	}

	res, err := s.screen.ETF(r.Context(), req.toInput())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, etfsResponse{TotalCount: res.TotalCount, ETFs: res.Rows})
}

// ScreenForex handles POST /api/v1/screen/forex.
func (s *Server) ScreenForex(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeScreen(w, r)
	if !ok {
		return
	}

	res, err := s.screen.Forex(r.Context(), req.toInput())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pairsResponse{TotalCount: res.TotalCount, Pairs: res.Rows})
}

// ScreenCrypto handles POST /api/v1/screen/crypto.
func (s *Server) ScreenCrypto(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeScreen(w, r)
	if !ok {
		return
	}

	res, err := s.screen.Crypto(r.Context(), req.toInput())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cryptosResponse{TotalCount: res.TotalCount, Cryptos: res.Rows})
}

// Lookup handles POST /api/v1/lookup.
func (s *Server) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.screen.Lookup(r.Context(), screenuc.LookupInput{
		Symbols: req.Symbols,
		Columns: req.Columns,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, symbolsResponse{TotalCount: res.TotalCount, Symbols: res.Rows})
}

// ListFields handles GET /api/v1/fields.
func (s *Server) ListFields(w http.ResponseWriter, r *http.Request) {
	assetType := r.URL.Query().Get("asset_type")
	category := catalog.Category(r.URL.Query().Get("category"))

	writeJSON(w, http.StatusOK, catalog.ListFields(assetType, category))
}

// ListPresets handles GET /api/v1/presets.
func (s *Server) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"presets": catalog.ListPresets(),
	})
}

// GetPreset handles GET /api/v1/presets/{name}.
func (s *Server) GetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := catalog.GetPreset(chi.URLParam(r, "name"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) decodeScreen(w http.ResponseWriter, r *http.Request) (screenRequest, bool) {
	var req screenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return screenRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns an error message for the client without exposing
// internals. Caller-caused sentinels keep their full detail; upstream failures
// collapse to the sentinel text.
func safeDomainMessage(err error) string {
	clientSentinels := []error{
		domain.ErrInvalidFilter,
		domain.ErrInvalidRequest,
		domain.ErrPresetNotFound,
	}
	for _, s := range clientSentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	upstreamSentinels := []error{
		domain.ErrScanTimeout,
		domain.ErrScannerError,
	}
	for _, s := range upstreamSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
