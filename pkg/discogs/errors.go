package discogs

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every *Error wraps exactly one of these, so callers can branch
// with errors.Is.
var (
	// ErrTransport marks requests that never produced a response.
	ErrTransport = errors.New("transport failure")
	// ErrStatus marks the well-known statuses 401, 403, 404, 405, 422 and 500.
	ErrStatus = errors.New("api status error")
	// ErrValidation marks a 400 response with a JSON body. Fields is set when the
	// body is an object.
	ErrValidation = errors.New("api validation error")
	// ErrUnexpectedStatus marks any other status outside 200 and 201.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrDecode marks a body that could not be parsed as JSON.
	ErrDecode = errors.New("decode failure")
	// ErrUnknownContentType marks a successful response that is neither JSON nor an image.
	ErrUnknownContentType = errors.New("unknown content type")
)

const (
	msgTransport          = "request failed to send"
	msgRequestFailed      = "request failed"
	msgDecode             = "could not parse response as JSON"
	msgNotObject          = "validation response body is not a JSON object"
	msgUnknownContentType = "unknown content type"
)

// statusMessages holds the fixed explanation for each well-known status.
var statusMessages = map[int]string{
	http.StatusUnauthorized:        "You’re attempting to access a resource that first requires authentication",
	http.StatusForbidden:           "You’re not allowed to access this resource. Even if you authenticated, or already have, you simply don’t have permission.",
	http.StatusNotFound:            "The resource you requested doesn’t exist",
	http.StatusMethodNotAllowed:    "You’re trying to use an HTTP verb that isn’t supported by the resource.",
	http.StatusUnprocessableEntity: "Your request was well-formed, but there’s something semantically wrong with the body of the request.",
	http.StatusInternalServerError: "Server side issue",
}

// StatusMessage returns the fixed explanation for a well-known status code.
func StatusMessage(code int) (string, bool) {
	msg, ok := statusMessages[code]
	return msg, ok
}

// Error is returned for every failed call.
type Error struct {
	// Message is the human readable explanation. For validation errors it is
	// the "message" field of the response body when present.
	Message string
	// StatusCode is the HTTP status, or zero when no status applies.
	StatusCode int
	// Fields holds the decoded body of a 400 response.
	Fields map[string]any
	// Err is the error kind.
	Err error

	cause error
}

func (e *Error) Error() string {
	msg := "discogs: " + e.Message
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.cause}
}

func transportError(cause error) *Error {
	return &Error{Message: msgTransport, Err: ErrTransport, cause: cause}
}

func decodeError(cause error) *Error {
	return &Error{Message: msgDecode, Err: ErrDecode, cause: cause}
}
