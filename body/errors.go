package body

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is matched by every body decoding failure.
	ErrDecode = errors.New("body: malformed request body")

	// ErrUnsupportedMediaType is returned for content types the parser
	// does not understand.
	ErrUnsupportedMediaType = errors.New("body: unsupported media type")

	// ErrTooLarge is returned when the body exceeds the configured limit.
	ErrTooLarge = errors.New("body: request body too large")

	// ErrMissingBoundary is returned for multipart bodies without a boundary
	// parameter.
	ErrMissingBoundary = errors.New("body: multipart boundary is missing")

	// ErrNotObject is returned when a JSON body is not a JSON object.
	ErrNotObject = errors.New("body: JSON body must be an object")

	// ErrTempFilesClosed is returned by File.Save once the request owning
	// the file has been answered and its temp files removed.
	ErrTempFilesClosed = errors.New("body: temp files already cleaned up")
)

// DecodeError describes a failure to decode a request body.
type DecodeError struct {
	MediaType string
	Err       error
}

func (e *DecodeError) Error() string {
	if e.MediaType == "" {
		return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrDecode, e.MediaType, e.Err)
}

// Unwrap exposes both ErrDecode and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

func decodeError(mediaType string, err error) error {
	return &DecodeError{MediaType: mediaType, Err: err}
}
