// Package apierror holds the JSON envelopes used for every 4xx/5xx response.
// Handlers never serialize raw errors; they pick a message that is safe for the
// cashier to read.
package apierror

// APIError is the canonical error body: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds per-field failures keyed by JSON path (e.g. "cart[0].qty")
// with the failed rule as value.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
