package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit
var ErrFileTooLarge = errors.New("uploaded file is too large")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageStore writes product images to disk under a single directory. Only
// the stored filename is ever persisted in the database; the bytes live on
// disk.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore creates the upload directory if needed
func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the upload directory
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes the uploaded file under a timestamp-prefixed sanitized name and
// returns that name.
func (s *ImageStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	name := sanitizeFilename(header.Filename)
	if name == "" {
		name = "upload"
	}

	filename := time.Now().Format("20060102_150405_") + name
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return filename, nil
}

// sanitizeFilename strips path components and characters unsafe for a
// filesystem name
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}
