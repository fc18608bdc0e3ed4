// Package apierror provides the error envelope returned by the API.
// Every 4xx/5xx response goes through this package so internal details
// (SQL errors, stack traces) never reach clients.
package apierror

// Stable machine-readable codes. Clients switch on Code, never on Detail.
const (
	CodeBadRequest        = "bad_request"
	CodeValidation        = "validation_failed"
	CodeNotFound          = "not_found"
	CodeInsufficientStock = "insufficient_stock"
	CodeInvalidTransition = "invalid_transition"
	CodeUnavailable       = "service_unavailable"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal_error"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code   string         `json:"code"`
	Detail string         `json:"detail"`
	Meta   map[string]any `json:"meta,omitempty"`
}

func New(code, msg string) *APIError {
	return &APIError{Code: code, Detail: msg}
}

// WithMeta attaches structured context, e.g. the product that ran short.
func (e *APIError) WithMeta(meta map[string]any) *APIError {
	e.Meta = meta
	return e
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "validation failed", Fields: fields}
}
