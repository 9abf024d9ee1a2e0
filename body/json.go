package body

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// parseJSON decodes a single JSON object. Trailing data after the object is
// an error.
func parseJSON(raw []byte) (*Body, error) {
	b := newBody()
	if len(bytes.TrimSpace(raw)) == 0 {
		return b, nil
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&v); err != nil {
		return nil, decodeError(MediaTypeJSON, err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, decodeError(MediaTypeJSON, errors.New("unexpected trailing data after JSON value"))
	}

	fields, ok := v.(map[string]any)
	if !ok {
		return nil, decodeError(MediaTypeJSON, ErrNotObject)
	}

	b.Fields = fields
	return b, nil
}
