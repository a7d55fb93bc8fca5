package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	logpkg "github.com/kailas-cloud/pdfocr/internal/logger"
	healthuc "github.com/kailas-cloud/pdfocr/internal/usecase/health"
)

const defaultMaxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the OCR HTTP API.
type Server struct {
	extractor      Extractor
	health         HealthChecker
	logger         *zap.Logger
	maxBodyBytes   int64
	requestTimeout time.Duration
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(extractor Extractor, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		extractor:    extractor,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	// Timeout first: a deadline hit during download or recognition is still a timeout.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, ErrorCodeTimeout),
		tooManyPagesHandler,
		sentinelHandler(domain.ErrDownload, http.StatusBadRequest, ErrorCodeDownloadFailed),
		sentinelHandler(domain.ErrDecode, http.StatusBadRequest, ErrorCodeInvalidDocument),
		sentinelHandler(domain.ErrRecognition, http.StatusBadGateway, ErrorCodeRecognitionFailed),
		sentinelHandler(domain.ErrRender, http.StatusBadGateway, ErrorCodeRenderFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
	}
	return s
}

// WithMaxBodyBytes caps the size of request bodies.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// WithRequestTimeout bounds the whole extraction of one request.
func (s *Server) WithRequestTimeout(d time.Duration) *Server {
	if d > 0 {
		s.requestTimeout = d
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ocr", s.OCR)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// OCR handles POST /ocr.
func (s *Server) OCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req OCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.PDFURL = strings.TrimSpace(req.PDFURL)
	if req.PDFURL == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "pdf_url is required")
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	res, err := s.extractor.ExtractURL(ctx, req.PDFURL)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, OCRResponse{
		Text:          res.Text,
		Pages:         len(res.Pages),
		DegradedPages: res.DegradedPages,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrTimeout,
		domain.ErrTooManyPages,
		domain.ErrDownload,
		domain.ErrDecode,
		domain.ErrRecognition,
		domain.ErrRender,
		domain.ErrRateLimited,
		domain.ErrInvalidRequest,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// tooManyPagesHandler handles ErrTooManyPages with the page count and limit.
func tooManyPagesHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrTooManyPages) {
		return false
	}
	resp := ErrorResponse{Code: ErrorCodeTooManyPages, Message: msg}
	var tm *domain.TooManyPagesError
	if errors.As(err, &tm) {
		resp.Pages = &tm.Pages
		resp.Limit = &tm.Limit
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
