package body

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("empty content type yields empty body", func(t *testing.T) {
		b, err := Parse("", []byte("ignored"))
		require.NoError(t, err)
		assert.Empty(t, b.Fields)
		assert.Empty(t, b.Files)
	})

	t.Run("unsupported media type", func(t *testing.T) {
		_, err := Parse("application/xml", []byte("<a/>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDecode)
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "application/xml", de.MediaType)
	})

	t.Run("malformed content type", func(t *testing.T) {
		_, err := Parse("application/json; =broken", []byte("{}"))
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	})

	t.Run("text plain wraps body", func(t *testing.T) {
		b, err := Parse("text/plain; charset=utf-8", []byte("hello world"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"text": "hello world"}, b.Fields)
	})
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr error
	}{
		{name: "object", raw: `{"name":"Sam","age":30,"tags":["a"]}`, want: map[string]any{"name": "Sam", "age": float64(30), "tags": []any{"a"}}},
		{name: "empty body", raw: "", want: map[string]any{}},
		{name: "whitespace body", raw: "  \n", want: map[string]any{}},
		{name: "nested object", raw: `{"address":{"city":"Oslo"}}`, want: map[string]any{"address": map[string]any{"city": "Oslo"}}},
		{name: "array top level", raw: `[1,2]`, wantErr: ErrNotObject},
		{name: "scalar top level", raw: `"x"`, wantErr: ErrNotObject},
		{name: "malformed", raw: `{"a":`, wantErr: ErrDecode},
		{name: "trailing data", raw: `{"a":1}{"b":2}`, wantErr: ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse("application/json", []byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrDecode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Fields)
		})
	}
}

func TestParseForm(t *testing.T) {
	t.Run("decodes string values", func(t *testing.T) {
		b, err := Parse("application/x-www-form-urlencoded", []byte("name=Sam+Lee&city=Oslo&name=other"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "Sam Lee", "city": "Oslo"}, b.Fields)
	})

	t.Run("invalid escape", func(t *testing.T) {
		_, err := Parse("application/x-www-form-urlencoded", []byte("a=%zz"))
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func buildMultipart(t *testing.T, build func(w *multipart.Writer)) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	build(w)
	require.NoError(t, w.Close())

	return w.FormDataContentType(), buf.Bytes()
}

func TestParseMultipart(t *testing.T) {
	t.Run("splits fields and files", func(t *testing.T) {
		ct, raw := buildMultipart(t, func(w *multipart.Writer) {
			require.NoError(t, w.WriteField("name", "Sam"))
			fw, err := w.CreateFormFile("avatar", "me.png")
			require.NoError(t, err)
			_, err = fw.Write([]byte("\x89PNG\r\n--not-a-boundary\r\n"))
			require.NoError(t, err)
		})

		b, err := Parse(ct, raw)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"name": "Sam"}, b.Fields)
		require.Contains(t, b.Files, "avatar")

		f := b.Files["avatar"]
		assert.Equal(t, "me.png", f.FileName)
		assert.Equal(t, []byte("\x89PNG\r\n--not-a-boundary\r\n"), f.Content)
		assert.Equal(t, int64(len(f.Content)), f.Size)
		assert.Equal(t, "application/octet-stream", f.ContentType)
		assert.Empty(t, f.Path())
	})

	t.Run("first part wins on repeated names", func(t *testing.T) {
		ct, raw := buildMultipart(t, func(w *multipart.Writer) {
			require.NoError(t, w.WriteField("name", "first"))
			require.NoError(t, w.WriteField("name", "second"))
		})

		b, err := Parse(ct, raw)
		require.NoError(t, err)
		assert.Equal(t, "first", b.Fields["name"])
	})

	t.Run("empty multipart body", func(t *testing.T) {
		ct, raw := buildMultipart(t, func(_ *multipart.Writer) {})

		b, err := Parse(ct, raw)
		require.NoError(t, err)
		assert.Empty(t, b.Fields)
		assert.Empty(t, b.Files)
	})

	t.Run("missing boundary", func(t *testing.T) {
		_, err := Parse("multipart/form-data", []byte("whatever"))
		assert.ErrorIs(t, err, ErrMissingBoundary)
	})

	t.Run("unterminated body", func(t *testing.T) {
		raw := "--xyz\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nvalue"
		_, err := Parse("multipart/form-data; boundary=xyz", []byte(raw))
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("hand written body with closing marker", func(t *testing.T) {
		raw := strings.Join([]string{
			"--xyz",
			`Content-Disposition: form-data; name="title"`,
			"",
			"Hello",
			"--xyz",
			`Content-Disposition: form-data; name="doc"; filename="a.txt"`,
			"Content-Type: text/plain",
			"",
			"line1\r\nline2",
			"--xyz--",
			"",
		}, "\r\n")

		b, err := Parse("multipart/form-data; boundary=xyz", []byte(raw))
		require.NoError(t, err)
		assert.Equal(t, "Hello", b.Fields["title"])
		require.Contains(t, b.Files, "doc")
		assert.Equal(t, "line1\r\nline2", string(b.Files["doc"].Content))
		assert.Equal(t, "text/plain", b.Files["doc"].ContentType)
	})
}

func TestReadAll(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		raw, err := ReadAll(strings.NewReader("abc"), 3)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(raw))
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := ReadAll(strings.NewReader("abcd"), 3)
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("no limit", func(t *testing.T) {
		raw, err := ReadAll(strings.NewReader("abcd"), 0)
		require.NoError(t, err)
		assert.Len(t, raw, 4)
	})

	t.Run("nil reader", func(t *testing.T) {
		raw, err := ReadAll(nil, 10)
		require.NoError(t, err)
		assert.Nil(t, raw)
	})
}

func TestTempFiles(t *testing.T) {
	t.Run("save is lazy and idempotent", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")
		temps := NewTempFiles(dir)

		ct, raw := buildMultipart(t, func(w *multipart.Writer) {
			fw, err := w.CreateFormFile("doc", "../../etc/passwd")
			require.NoError(t, err)
			_, err = fw.Write([]byte("content"))
			require.NoError(t, err)
		})

		b, err := Parse(ct, raw, WithTempFiles(temps))
		require.NoError(t, err)

		_, err = os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "nothing is written before Save")

		f := b.Files["doc"]
		path, err := f.Save()
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasSuffix(path, "_passwd"))

		again, err := f.Save()
		require.NoError(t, err)
		assert.Equal(t, path, again)
		assert.Equal(t, []string{path}, temps.Paths())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))

		require.NoError(t, temps.Cleanup())
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
		assert.Empty(t, temps.Paths())
	})

	t.Run("cleanup ignores already removed files", func(t *testing.T) {
		temps := NewTempFiles(t.TempDir())
		path, err := temps.write("a.txt", []byte("x"))
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))
		assert.NoError(t, temps.Cleanup())
	})

	t.Run("writes after cleanup are refused", func(t *testing.T) {
		dir := t.TempDir()
		temps := NewTempFiles(dir)
		require.NoError(t, temps.Cleanup())

		f := &File{FileName: "late.txt", Content: []byte("x"), temps: temps}
		path, err := f.Save()
		assert.ErrorIs(t, err, ErrTempFilesClosed)
		assert.Empty(t, path)
		assert.Empty(t, f.Path())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("empty dir falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultTempDir, NewTempFiles("").Dir())
	})
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\file.txt`, "file.txt"},
		{".hidden", "hidden"},
		{"", "upload"},
		{"..", "upload"},
		{"привет.txt", "______.txt"},
		{strings.Repeat("a", 150) + ".txt", strings.Repeat("a", 96) + ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}
