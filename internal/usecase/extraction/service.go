package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/domain/pagetext"
	logpkg "github.com/kailas-cloud/pdfocr/internal/logger"
	"github.com/kailas-cloud/pdfocr/internal/metrics"
)

// Result is the aggregated text of one document.
type Result struct {
	Text  string
	Pages []pagetext.PageText
	// DegradedPages lists 1-based page numbers whose render or recognition failed.
	DegradedPages []int
}

// Service runs the per-page hybrid extraction pipeline:
// decode, budget check, then render, recognize and merge each page in index order.
type Service struct {
	decoder     domain.Decoder
	recognizer  domain.Recognizer
	fetcher     Fetcher
	inspector   Inspector
	maxPages    int
	scale       float64
	policy      FailurePolicy
	pageTimeout time.Duration
	logger      *zap.Logger
}

// New creates an extraction service with the fixed page budget and render scale.
func New(decoder domain.Decoder, recognizer domain.Recognizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		decoder:    decoder,
		recognizer: recognizer,
		maxPages:   domain.MaxPages,
		scale:      domain.RenderScale,
		policy:     PolicyDegrade,
		logger:     logger,
	}
}

// WithFetcher enables ExtractURL.
func (s *Service) WithFetcher(f Fetcher) *Service {
	s.fetcher = f
	return s
}

// WithInspector enables structural validation before decoding.
func (s *Service) WithInspector(i Inspector) *Service {
	s.inspector = i
	return s
}

// WithMaxPages lowers the page budget. Values outside 1..domain.MaxPages are ignored.
func (s *Service) WithMaxPages(n int) *Service {
	if n > 0 && n <= domain.MaxPages {
		s.maxPages = n
	}
	return s
}

// WithPolicy sets the page failure policy.
func (s *Service) WithPolicy(p FailurePolicy) *Service {
	if p != "" {
		s.policy = p
	}
	return s
}

// WithPageTimeout bounds each page's render and recognition. Zero disables the bound.
func (s *Service) WithPageTimeout(d time.Duration) *Service {
	if d > 0 {
		s.pageTimeout = d
	}
	return s
}

// MaxPages returns the effective page budget.
func (s *Service) MaxPages() int { return s.maxPages }

// ExtractURL downloads the document at url and extracts it.
func (s *Service) ExtractURL(ctx context.Context, url string) (Result, error) {
	if s.fetcher == nil {
		return Result{}, errors.New("extraction: no fetcher configured")
	}

	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		err = fmt.Errorf("fetch document: %w", timeoutOr(ctx, err))
		metrics.DocumentsTotal.WithLabelValues(outcome(err)).Inc()
		return Result{}, err
	}
	return s.Extract(ctx, data)
}

// Extract runs the pipeline over raw document bytes.
func (s *Service) Extract(ctx context.Context, data []byte) (res Result, err error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	start := time.Now()
	defer func() {
		metrics.DocumentsTotal.WithLabelValues(outcome(err)).Inc()
	}()

	if s.inspector != nil {
		n, err := s.inspector.Inspect(ctx, data)
		if err != nil {
			return Result{}, fmt.Errorf("inspect document: %w", timeoutOr(ctx, err))
		}
		if n > s.maxPages {
			return Result{}, domain.NewTooManyPages(n, s.maxPages)
		}
	}

	doc, err := s.decoder.Decode(ctx, data)
	if err != nil {
		return Result{}, fmt.Errorf("decode document: %w", timeoutOr(ctx, err))
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.Warn("Failed to close document", zap.Error(cerr))
		}
	}()

	n := doc.PageCount()
	if n > s.maxPages {
		log.Info("Document rejected: page budget exceeded",
			zap.Int("pages", n),
			zap.Int("max_pages", s.maxPages),
		)
		return Result{}, domain.NewTooManyPages(n, s.maxPages)
	}
	metrics.DocumentPages.Observe(float64(n))

	pages := make([]pagetext.PageText, 0, n)
	var degraded []int
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("page %d: %w", i+1, timeoutOr(ctx, err))
		}

		pt, err := s.processPage(ctx, log, doc, i)
		if err != nil {
			return Result{}, err
		}
		if pt.Degraded {
			degraded = append(degraded, pt.Number)
		}
		countPage(pt)
		pages = append(pages, pt)
	}

	res = Result{
		Text:          pagetext.Join(pages),
		Pages:         pages,
		DegradedPages: degraded,
	}

	log.Info("Document extracted",
		zap.Int("pages", n),
		zap.Int("bytes", len(data)),
		zap.Int("text_len", len(res.Text)),
		zap.Ints("degraded_pages", degraded),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// processPage renders, recognizes and merges one page.
func (s *Service) processPage(ctx context.Context, log *zap.Logger, doc domain.Document, index int) (pagetext.PageText, error) {
	number := index + 1
	if s.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.pageTimeout)
		defer cancel()
	}

	page, err := doc.Page(index)
	if err != nil {
		return s.pageFailure(ctx, log, number, "", fmt.Errorf("page %d: %w", number, err))
	}

	embedded, err := page.EmbeddedText(ctx)
	if err != nil {
		return s.pageFailure(ctx, log, number, "", fmt.Errorf("embedded text page %d: %w", number, err))
	}

	renderStart := time.Now()
	img, err := page.Render(ctx, s.scale)
	metrics.PageStageDuration.WithLabelValues("render").Observe(time.Since(renderStart).Seconds())
	if err != nil {
		return s.pageFailure(ctx, log, number, embedded, fmt.Errorf("render page %d: %w", number, err))
	}

	fragments, err := s.recognizer.Recognize(ctx, img)
	img = domain.RasterImage{} // release the raster before merging
	if err != nil {
		return s.pageFailure(ctx, log, number, embedded, &domain.RecognitionError{Page: number, Err: err})
	}

	pt := pagetext.Merge(number, embedded, fragments)
	log.Debug("Page extracted",
		zap.Int("page", number),
		zap.Bool("embedded", pt.HasEmbedded()),
		zap.Bool("ocr", pt.HasOCR()),
		zap.Int("fragments", len(fragments)),
	)
	return pt, nil
}

// pageFailure applies the failure policy. Deadline and cancellation always abort.
func (s *Service) pageFailure(
	ctx context.Context, log *zap.Logger, number int, embedded string, err error,
) (pagetext.PageText, error) {
	if ctx.Err() != nil || isContextErr(err) {
		return pagetext.PageText{}, timeoutOr(ctx, err)
	}
	if s.policy == PolicyFail {
		return pagetext.PageText{}, err
	}

	log.Warn("Page degraded to embedded text",
		zap.Int("page", number),
		zap.Error(err),
	)
	pt := pagetext.Merge(number, embedded, nil)
	pt.Degraded = true
	return pt, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// timeoutOr marks err as domain.ErrTimeout when it stems from the context.
func timeoutOr(ctx context.Context, err error) error {
	if isContextErr(err) || ctx.Err() != nil {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return err
}

func countPage(pt pagetext.PageText) {
	switch {
	case pt.Degraded:
		metrics.PagesTotal.WithLabelValues("degraded").Inc()
	case pt.Empty():
		metrics.PagesTotal.WithLabelValues("empty").Inc()
	}
	if pt.HasEmbedded() {
		metrics.PagesTotal.WithLabelValues("embedded").Inc()
	}
	if pt.HasOCR() {
		metrics.PagesTotal.WithLabelValues("ocr").Inc()
	}
}

// outcome maps an error to the documents_total status label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrDownload):
		return "download_error"
	case errors.Is(err, domain.ErrDecode):
		return "decode_error"
	case errors.Is(err, domain.ErrTooManyPages):
		return "too_many_pages"
	case errors.Is(err, domain.ErrRecognition):
		return "recognition_error"
	case errors.Is(err, domain.ErrRender):
		return "render_error"
	default:
		return "error"
	}
}
