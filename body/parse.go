package body

import (
	"errors"
	"io"
	"mime"
	"strings"
)

// Media types understood by Parse.
const (
	MediaTypeJSON      = "application/json"
	MediaTypeForm      = "application/x-www-form-urlencoded"
	MediaTypeText      = "text/plain"
	MediaTypeMultipart = "multipart/form-data"
)

// Body is a decoded request body.
type Body struct {
	Fields map[string]any
	Files  map[string]*File
}

func newBody() *Body {
	return &Body{
		Fields: make(map[string]any),
		Files:  make(map[string]*File),
	}
}

// Option configures Parse.
type Option func(*options)

type options struct {
	temps *TempFiles
}

// WithTempFiles attaches a tracker to every parsed file so that File.Save
// writes into its directory and Cleanup removes what was written.
func WithTempFiles(t *TempFiles) Option {
	return func(o *options) { o.temps = t }
}

// Parse decodes raw according to contentType.
func Parse(contentType string, raw []byte, opts ...Option) (*Body, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(contentType) == "" {
		return newBody(), nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, decodeError("", errors.Join(ErrUnsupportedMediaType, err))
	}

	switch mediaType {
	case MediaTypeJSON:
		return parseJSON(raw)
	case MediaTypeForm:
		return parseForm(raw)
	case MediaTypeText:
		b := newBody()
		b.Fields["text"] = string(raw)
		return b, nil
	case MediaTypeMultipart:
		return parseMultipart(raw, params["boundary"], o.temps)
	default:
		return nil, decodeError(mediaType, ErrUnsupportedMediaType)
	}
}

// ReadAll reads r up to limit bytes. A non-positive limit disables the
// check. Reading more than limit bytes fails with ErrTooLarge.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	if limit <= 0 {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, decodeError("", err)
		}
		return raw, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, decodeError("", err)
	}
	if int64(len(raw)) > limit {
		return nil, decodeError("", ErrTooLarge)
	}
	return raw, nil
}
