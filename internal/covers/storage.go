// Package covers stores uploaded book cover images behind a Storage
// interface with local-disk and S3 backends. Stored object names are random
// so uploads can never collide or traverse paths.
package covers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded cover images.
type Storage interface {
	// Save stores the uploaded file and returns the stored object name.
	Save(file *multipart.FileHeader) (string, error)
	// Delete removes a stored object. Deleting a missing object is not an
	// error.
	Delete(name string) error
	// URL returns the client-facing URL for a stored object name.
	URL(name string) string
	// List returns all stored object names. Used by the orphan sweep.
	List() ([]string, error)
}

// objectName builds a random name preserving the upload's extension.
func objectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.NewString() + ext
}

// LocalStorage keeps covers on the local filesystem, served by the router
// under /covers.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the storage directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the storage directory, for static file serving.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := objectName(file.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

func (s *LocalStorage) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return "/covers/" + name
}

func (s *LocalStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
