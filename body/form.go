package body

import "net/url"

// parseForm decodes an application/x-www-form-urlencoded body. Only the
// first value of repeated keys is kept.
func parseForm(raw []byte) (*Body, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, decodeError(MediaTypeForm, err)
	}

	b := newBody()
	for key, vs := range values {
		if len(vs) > 0 {
			b.Fields[key] = vs[0]
		}
	}
	return b, nil
}
