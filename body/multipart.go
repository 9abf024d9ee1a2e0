package body

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
)

// parseMultipart splits a multipart/form-data body into string fields and
// files. Parts with a filename become files, the rest become fields. The
// first part wins when a name repeats.
func parseMultipart(raw []byte, boundary string, temps *TempFiles) (*Body, error) {
	if boundary == "" {
		return nil, decodeError(MediaTypeMultipart, ErrMissingBoundary)
	}

	b := newBody()
	mr := multipart.NewReader(bytes.NewReader(raw), boundary)

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return b, nil
		}
		if err != nil {
			return nil, decodeError(MediaTypeMultipart, err)
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		content, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, decodeError(MediaTypeMultipart, err)
		}

		if fileName := part.FileName(); fileName != "" {
			if _, exists := b.Files[name]; !exists {
				b.Files[name] = &File{
					FileName:    fileName,
					Size:        int64(len(content)),
					ContentType: part.Header.Get("Content-Type"),
					Content:     content,
					temps:       temps,
				}
			}
			continue
		}

		if _, exists := b.Fields[name]; !exists {
			b.Fields[name] = string(content)
		}
	}
}
