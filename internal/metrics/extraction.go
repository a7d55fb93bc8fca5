package metrics

import "github.com/prometheus/client_golang/prometheus"

// Extraction Prometheus metrics.
var (
	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfocr",
			Name:      "documents_total",
			Help:      "Total documents processed by outcome",
		},
		[]string{"status"}, // ok, download_error, decode_error, too_many_pages, recognition_error, timeout, error
	)

	DocumentPages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdfocr",
			Name:      "document_pages",
			Help:      "Page count of accepted documents",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	PagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfocr",
			Name:      "pages_total",
			Help:      "Text blocks contributed by pages",
		},
		[]string{"source"}, // embedded, ocr, empty, degraded
	)

	PageStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfocr",
			Name:      "page_stage_duration_seconds",
			Help:      "Per-page stage duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"}, // render, recognize
	)

	RecognitionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfocr",
			Name:      "recognition_requests_total",
			Help:      "OCR engine calls by engine and status",
		},
		[]string{"engine", "status"},
	)

	FetchBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfocr",
			Name:      "fetch_bytes_total",
			Help:      "Bytes downloaded from document sources",
		},
	)

	FetchRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfocr",
			Name:      "fetch_retries_total",
			Help:      "Document download retries",
		},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfocr",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

var extractionMetricsRegistered bool

// RegisterExtractionMetrics registers extraction metrics. Must be called once from main.
func RegisterExtractionMetrics() {
	if extractionMetricsRegistered {
		return
	}
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(DocumentPages)
	prometheus.MustRegister(PagesTotal)
	prometheus.MustRegister(PageStageDuration)
	prometheus.MustRegister(RecognitionRequestsTotal)
	prometheus.MustRegister(FetchBytesTotal)
	prometheus.MustRegister(FetchRetriesTotal)
	prometheus.MustRegister(RateLimitedTotal)
	extractionMetricsRegistered = true
}
