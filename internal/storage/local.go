package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// MaxReceiptSize is the largest receipt upload accepted (10 MB)
const MaxReceiptSize = 10 * 1024 * 1024

var receiptContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// IsValidReceiptType checks if the content type is allowed for receipts
func IsValidReceiptType(contentType string) bool {
	return receiptContentTypes[strings.ToLower(contentType)]
}

// LocalStorage keeps uploaded files (expense receipts, generated reports) on disk
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// Save writes r under subDir/YYYY/MM with a generated name keeping the
// original extension, and returns the path relative to the storage root
func (s *LocalStorage) Save(r io.Reader, filename, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, filepath.Clean("/"+subDir), s.now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	filePath := filepath.Join(dir, uuid.NewString()+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filepath.Rel(s.basePath, filePath)
}

// Open returns a stored file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	full, err := s.FullPath(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes a stored file; a missing file is not an error
func (s *LocalStorage) Delete(relativePath string) error {
	full, err := s.FullPath(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	full, err := s.FullPath(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// FullPath resolves a relative path inside the storage root
func (s *LocalStorage) FullPath(relativePath string) (string, error) {
	if relativePath == "" || filepath.IsAbs(relativePath) {
		return "", ErrInvalidPath
	}
	clean := filepath.Clean(relativePath)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.basePath, clean), nil
}
