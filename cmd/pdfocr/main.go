package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/config"
	"github.com/kailas-cloud/pdfocr/internal/db"
	dbRedis "github.com/kailas-cloud/pdfocr/internal/db/redis"
	"github.com/kailas-cloud/pdfocr/internal/domain"
	logpkg "github.com/kailas-cloud/pdfocr/internal/logger"
	"github.com/kailas-cloud/pdfocr/internal/metrics"
	"github.com/kailas-cloud/pdfocr/internal/ocr/tesseract"
	"github.com/kailas-cloud/pdfocr/internal/pdf/fitz"
	"github.com/kailas-cloud/pdfocr/internal/pdf/pdfcpu"
	ratelimitrepo "github.com/kailas-cloud/pdfocr/internal/repository/ratelimit"
	chiTransport "github.com/kailas-cloud/pdfocr/internal/transport/chi"
	"github.com/kailas-cloud/pdfocr/internal/transport/fetch"
	openaiOCR "github.com/kailas-cloud/pdfocr/internal/transport/openai"
	"github.com/kailas-cloud/pdfocr/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/pdfocr/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/pdfocr/internal/usecase/ratelimit"
	recognitionuc "github.com/kailas-cloud/pdfocr/internal/usecase/recognition"
	"github.com/kailas-cloud/pdfocr/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting pdfocr API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("ocr_engine", cfg.OCR.Engine),
		zap.Bool("db_enabled", cfg.Database.Enabled),
	)

	// Register extraction metrics explicitly (no init())
	metrics.RegisterExtractionMetrics()

	ctx := context.Background()

	// Optional database: backs rate limiting only
	var store db.Store
	if cfg.Database.Enabled {
		store = openStore(ctx, cfg.Database, logger)
		defer store.Close()
	}

	// OCR engine is loaded once and shared by all requests
	recognizer, closeEngine := buildRecognizer(cfg.OCR, logger)
	defer closeEngine()

	downloader := fetch.NewDownloader(fetch.Config{
		Timeout:        time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
		MaxBytes:       cfg.Fetch.MaxBytes,
		UserAgent:      cfg.Fetch.UserAgent,
		MaxRetries:     cfg.Fetch.MaxRetries,
		InitialBackoff: time.Duration(cfg.Fetch.InitialBackoffMs) * time.Millisecond,
		Logger:         logger,
	})

	policy, err := extraction.ParsePolicy(cfg.Extraction.OnRecognitionError)
	if err != nil {
		logger.Fatal("Invalid recognition failure policy", zap.Error(err))
	}

	extractSvc := extraction.New(fitz.NewDecoder(), recognizer, logger).
		WithFetcher(downloader).
		WithMaxPages(cfg.Extraction.MaxPages).
		WithPolicy(policy).
		WithPageTimeout(time.Duration(cfg.Extraction.PageTimeoutSec) * time.Second)
	if cfg.Extraction.ValidateStructure {
		extractSvc.WithInspector(pdfcpu.NewInspector())
	}

	// Pass nil interface (not typed nil pointer!) when the database is disabled.
	var pinger healthuc.DBPinger
	var limiter chiTransport.Limiter
	if store != nil {
		pinger = store
		if cfg.RateLimit.RequestsPerWindow > 0 {
			limiter = ratelimituc.New(
				ratelimitrepo.New(store, cfg.RateLimit.KeyPrefix),
				cfg.RateLimit.RequestsPerWindow,
				time.Duration(cfg.RateLimit.WindowSec)*time.Second,
				logger,
			)
		}
	}
	healthSvc := healthuc.New(pinger, recognizer)

	server := chiTransport.NewServer(extractSvc, healthSvc, logger).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes).
		WithRequestTimeout(time.Duration(cfg.Extraction.RequestTimeoutSec) * time.Second)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(chiTransport.RateLimitMiddleware(limiter, cfg.Auth.Enabled()))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore connects to Redis or Valkey and waits until it answers.
// Both drivers speak RESP through the same rueidis client.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) db.Store {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.String("driver", cfg.Driver),
		zap.Strings("addrs", cfg.Addrs),
	)
	return store
}

// recognizerWithHealth is the recognizer handle shared by the pipeline and health checks.
type recognizerWithHealth interface {
	domain.Recognizer
	domain.HealthChecker
}

// buildRecognizer assembles the engine chain: Tesseract|OpenAI -> Instrumented.
// The returned func releases the engine.
func buildRecognizer(cfg config.OCRConfig, logger *zap.Logger) (recognizerWithHealth, func()) {
	switch cfg.Engine {
	case config.EngineOpenAI:
		base := openaiOCR.NewRecognizer(&openaiOCR.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Logger:  logger,
		})
		logger.Info("OCR engine created",
			zap.String("engine", cfg.Engine),
			zap.String("model", cfg.OpenAI.Model),
		)
		return recognitionuc.NewInstrumentedRecognizer(base, cfg.Engine, logger), func() {}
	default:
		base, err := tesseract.New(tesseract.Config{
			Languages: []string{domain.OCRLanguage},
			Logger:    logger,
		})
		if err != nil {
			logger.Fatal("Failed to load OCR engine", zap.Error(err))
		}
		logger.Info("OCR engine created", zap.String("engine", config.EngineTesseract))
		closeFn := func() {
			if err := base.Close(); err != nil {
				logger.Warn("Failed to close OCR engine", zap.Error(err))
			}
		}
		return recognitionuc.NewInstrumentedRecognizer(base, config.EngineTesseract, logger), closeFn
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
