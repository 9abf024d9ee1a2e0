// Package body decodes raw HTTP request bodies into a field map and a file
// map, dispatching on the request media type.
//
// Supported media types:
//
//	application/json                  - top-level object, decoded into map[string]any
//	application/x-www-form-urlencoded - string values, first value per key
//	text/plain                        - {"text": <body>}
//	multipart/form-data               - string fields plus File entries
//
// An absent content type yields an empty body. Any other media type fails
// with ErrUnsupportedMediaType. All failures are *DecodeError values that
// match ErrDecode with errors.Is.
//
// # Files
//
// Multipart files are kept in memory. File.Save writes the content to disk
// on first call, under the directory of the TempFiles tracker attached with
// WithTempFiles, using a sanitized file name with a random prefix:
//
//	temps := body.NewTempFiles("temp")
//	defer temps.Cleanup()
//
//	b, err := body.Parse(r.Header.Get("Content-Type"), raw, body.WithTempFiles(temps))
//	if err != nil {
//	    return err
//	}
//	path, err := b.Files["avatar"].Save()
package body
