package chi

// ErrorCode is the machine-readable error identifier returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeDownloadFailed    ErrorCode = "download_failed"
	ErrorCodeInvalidDocument   ErrorCode = "invalid_document"
	ErrorCodeTooManyPages      ErrorCode = "too_many_pages"
	ErrorCodeRecognitionFailed ErrorCode = "recognition_failed"
	ErrorCodeRenderFailed      ErrorCode = "render_failed"
	ErrorCodeTimeout           ErrorCode = "timeout"
	ErrorCodeRateLimited       ErrorCode = "rate_limited"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Pages and Limit are set for too_many_pages.
	Pages *int `json:"pages,omitempty"`
	Limit *int `json:"limit,omitempty"`
}

// OCRRequest is the body of POST /ocr.
type OCRRequest struct {
	PDFURL string `json:"pdf_url"`
}

// OCRResponse is the 200 body of POST /ocr.
type OCRResponse struct {
	Text          string `json:"text"`
	Pages         int    `json:"pages"`
	DegradedPages []int  `json:"degraded_pages,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
