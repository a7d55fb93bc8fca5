package pdfocr

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	recognizer Recognizer
	tesseract  bool
	languages  []string

	maxPages          int
	failOnRecognition bool
	pageTimeout       time.Duration
	validateStructure bool

	httpClient *http.Client
	userAgent  string
	maxRetries int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRecognizer sets a custom OCR engine. It takes precedence over WithTesseract.
func WithRecognizer(r Recognizer) Option {
	return optionFunc(func(c *clientConfig) {
		c.recognizer = r
	})
}

// WithTesseract uses the bundled Tesseract engine. Languages default to English.
// The engine is loaded once in New and released by Close.
func WithTesseract(languages ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tesseract = true
		c.languages = languages
	})
}

// WithMaxPages lowers the page budget. Values above MaxPages are ignored.
func WithMaxPages(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPages = n
	})
}

// WithFailOnRecognitionError aborts the document on the first page that cannot be
// rendered or recognized. By default such pages keep their embedded text and are
// listed in Result.DegradedPages.
func WithFailOnRecognitionError() Option {
	return optionFunc(func(c *clientConfig) {
		c.failOnRecognition = true
	})
}

// WithPageTimeout bounds the time spent on a single page.
func WithPageTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageTimeout = d
	})
}

// WithStructureValidation validates the PDF structure before decoding it.
func WithStructureValidation() Option {
	return optionFunc(func(c *clientConfig) {
		c.validateStructure = true
	})
}

// WithHTTPClient sets the client used by ExtractURL.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithUserAgent overrides the User-Agent sent by ExtractURL. Default: "Mozilla/5.0".
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithRetries sets how many times ExtractURL retries transient download failures.
func WithRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
