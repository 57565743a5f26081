package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxFileSize = 10 * 1024 * 1024

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
	ErrOutsideRoot     = errors.New("path is outside of the media directory")
)

var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Local keeps category photos and discount images under a media directory.
// Returned paths are relative to that directory.
type Local struct {
	baseDir string
}

func NewLocal(baseDir string) *Local {
	if baseDir == "" {
		baseDir = "./media"
	}
	return &Local{baseDir: baseDir}
}

// Store writes data under dir with a fresh uuid file name and returns the relative path.
func (l *Local) Store(r io.Reader, dir string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if len(data) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	mimeType := strings.Split(http.DetectContentType(data), ";")[0]
	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return "", ErrInvalidMimeType
	}

	dir = sanitizeDir(dir)
	absDir := filepath.Join(l.baseDir, dir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	name := uuid.New().String() + ext
	absPath := filepath.Join(absDir, name)
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(dir, name)), nil
}

// StoreBytes is Store for an in-memory payload.
func (l *Local) StoreBytes(data []byte, dir string) (string, error) {
	return l.Store(bytes.NewReader(data), dir)
}

// Delete removes a file previously returned by Store. Missing files are not an error.
func (l *Local) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	abs, err := l.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (l *Local) resolve(relPath string) (string, error) {
	root, err := filepath.Abs(l.baseDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

func sanitizeDir(dir string) string {
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	parts := strings.Split(dir, "/")
	clean := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		clean = append(clean, p)
	}
	return filepath.Join(clean...)
}
