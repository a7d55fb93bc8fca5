package pdfocr

import "github.com/kailas-cloud/pdfocr/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDownload     = domain.ErrDownload
	ErrDecode       = domain.ErrDecode
	ErrTooManyPages = domain.ErrTooManyPages
	ErrRecognition  = domain.ErrRecognition
	ErrRender       = domain.ErrRender
	ErrTimeout      = domain.ErrTimeout
)

// MaxPages is the largest document the pipeline accepts.
const MaxPages = domain.MaxPages
