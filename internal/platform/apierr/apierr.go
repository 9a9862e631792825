package apierr

import "fmt"

// Stable machine-readable error codes returned in API envelopes.
const (
	CodeUploadRejected        = "upload_rejected"
	CodeDocumentParseError    = "document_parse_error"
	CodeGenerationUnavailable = "generation_unavailable"
	CodeGenerationParseError  = "generation_parse_error"
	CodeIndexOutOfRange       = "index_out_of_range"
	CodeUnauthorized          = "unauthorized"
	CodeValidationFailed      = "validation_failed"
	CodeNotFound              = "not_found"
	CodeInvalidTransition     = "invalid_transition"
	CodeConflict              = "conflict"
	CodeInternal              = "internal_error"
)

// Error carries an HTTP status and a stable code alongside the wrapped cause.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}
