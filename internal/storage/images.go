// Package storage persists uploaded post images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// URLPrefix is the public path under which stored images are served
const URLPrefix = "images"

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpg":  ".jpg",
	"image/jpeg": ".jpg",
}

// AllowedType reports whether an upload with this content type is accepted
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[strings.ToLower(contentType)]
	return ok
}

// Images stores files under a single directory
type Images struct {
	dir string
	log *logrus.Logger
}

// NewImages creates the directory if needed
func NewImages(dir string, log *logrus.Logger) (*Images, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Images{dir: dir, log: log}, nil
}

// Dir returns the backing directory
func (s *Images) Dir() string {
	return s.dir
}

// Save writes src under a generated name and returns its public path. The
// extension always follows the accepted content type, never the client name.
func (s *Images) Save(contentType string, src io.Reader) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	s.log.Infof("Image stored: %s", name)
	return path.Join(URLPrefix, name), nil
}

// Clear deletes the file behind a public path. Only the base name is used,
// so a path can never point outside the directory. Missing files are ignored.
func (s *Images) Clear(publicPath string) error {
	name, ok := s.fileName(publicPath)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear image: %w", err)
	}
	if err == nil {
		s.log.Infof("Image cleared: %s", name)
	}
	return nil
}

func (s *Images) fileName(publicPath string) (string, bool) {
	if publicPath == "" || publicPath == "undefined" {
		return "", false
	}
	name := path.Base(filepath.ToSlash(publicPath))
	if name == "." || name == "/" || name == ".." {
		return "", false
	}
	return name, true
}
