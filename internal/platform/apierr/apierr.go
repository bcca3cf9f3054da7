package apierr

import "fmt"

// Codes returned in the error envelope of the admin API.
const (
	CodeInvalidRequest      = "invalid_request"
	CodeInvalidInput        = "invalid_input"
	CodeGenerationExhausted = "generation_exhausted"
	CodeGenerationFailed    = "generation_failed"
)

// Error carries the HTTP status and envelope code for a failure.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}
