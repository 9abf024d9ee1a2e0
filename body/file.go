package body

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultTempDir is used by File.Save when no tracker is attached.
const DefaultTempDir = "temp"

const maxFileNameLength = 100

// File is an uploaded multipart file. Content stays in memory until Save is
// called.
type File struct {
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"-"`

	mu    sync.Mutex
	path  string
	temps *TempFiles
}

// Save writes the file content to the temp directory on first call and
// returns its path. Later calls return the same path.
func (f *File) Save() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.path != "" {
		return f.path, nil
	}

	temps := f.temps
	if temps == nil {
		temps = NewTempFiles(DefaultTempDir)
	}

	path, err := temps.write(f.FileName, f.Content)
	if err != nil {
		return "", err
	}

	f.path = path
	return path, nil
}

// Path returns the path written by Save, or an empty string.
func (f *File) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// TempFiles records files materialized for a single request so they can be
// removed once the response is sent.
type TempFiles struct {
	dir string

	mu     sync.Mutex
	paths  []string
	closed bool
}

// NewTempFiles returns a tracker writing into dir.
func NewTempFiles(dir string) *TempFiles {
	if dir == "" {
		dir = DefaultTempDir
	}
	return &TempFiles{dir: dir}
}

// Dir returns the directory files are written to.
func (t *TempFiles) Dir() string {
	return t.dir
}

// Paths returns the files written so far.
func (t *TempFiles) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.paths...)
}

// write holds the lock for the whole write so Cleanup never races a file
// into existence behind it.
func (t *TempFiles) write(name string, content []byte) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return "", ErrTempFilesClosed
	}

	if err := os.MkdirAll(t.dir, 0o750); err != nil {
		return "", err
	}

	path := filepath.Join(t.dir, uuid.NewString()+"_"+SanitizeFileName(name))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", err
	}

	t.paths = append(t.paths, path)
	return path, nil
}

// Cleanup removes every file written through the tracker. Missing files are
// ignored. Later writes fail with ErrTempFilesClosed.
func (t *TempFiles) Cleanup() error {
	t.mu.Lock()
	paths := t.paths
	t.paths = nil
	t.closed = true
	t.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SanitizeFileName reduces a client supplied file name to a safe base name
// made of letters, digits, dots, dashes and underscores.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	clean := strings.TrimLeft(b.String(), ".")
	if len(clean) > maxFileNameLength {
		clean = clean[len(clean)-maxFileNameLength:]
	}
	if clean == "" || clean == "_" {
		return "upload"
	}
	return clean
}
