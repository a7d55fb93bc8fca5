package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDownload signals that the source document could not be retrieved.
	ErrDownload = errors.New("download failed")
	// ErrDecode signals bytes that are not a parseable PDF document.
	ErrDecode = errors.New("invalid document")
	// ErrTooManyPages signals a document over the page budget.
	ErrTooManyPages = errors.New("too many pages")
	// ErrRecognition signals an OCR engine failure.
	ErrRecognition = errors.New("recognition failed")
	// ErrRender signals a page that could not be rasterized or read.
	ErrRender = errors.New("render failed")
	// ErrTimeout signals an exhausted request or page deadline.
	ErrTimeout = errors.New("timeout")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidRequest signals a malformed client request.
	ErrInvalidRequest = errors.New("invalid request")
)

// TooManyPagesError wraps ErrTooManyPages with the offending page count.
type TooManyPagesError struct {
	Pages int
	Limit int
}

func (e *TooManyPagesError) Error() string {
	return fmt.Sprintf("%s: document has %d pages, limit is %d", ErrTooManyPages.Error(), e.Pages, e.Limit)
}

func (e *TooManyPagesError) Unwrap() error { return ErrTooManyPages }

// NewTooManyPages creates a page budget error.
func NewTooManyPages(pages, limit int) error {
	return &TooManyPagesError{Pages: pages, Limit: limit}
}

// RecognitionError wraps an engine failure for a single page (1-based).
type RecognitionError struct {
	Page int
	Err  error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%s on page %d: %v", ErrRecognition.Error(), e.Page, e.Err)
}

// Is reports ErrRecognition in addition to the wrapped cause.
func (e *RecognitionError) Is(target error) bool { return target == ErrRecognition }

func (e *RecognitionError) Unwrap() error { return e.Err }

// DownloadError wraps ErrDownload with the source URL and HTTP status (0 for transport errors).
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d", ErrDownload.Error(), e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDownload.Error(), e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrDownload.Error(), e.URL)
}

// Is reports ErrDownload in addition to the wrapped cause.
func (e *DownloadError) Is(target error) bool { return target == ErrDownload }

func (e *DownloadError) Unwrap() error { return e.Err }
