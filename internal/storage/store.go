package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dineqr/dineqr/pkg/crypto"
	apperrors "github.com/dineqr/dineqr/pkg/errors"
)

// MaxImageSize caps uploaded dish images at 5 MiB.
const MaxImageSize = 5 << 20

// extensionByType maps accepted image content types to stored extensions.
var extensionByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStore abstracts where uploaded menu images live.
type ImageStore interface {
	// Save persists the image and returns the public path it is served from.
	Save(ctx context.Context, r io.Reader, contentType string, size int64) (string, error)
	// Delete removes a previously stored image by its public path.
	Delete(ctx context.Context, publicPath string) error
}

var _ ImageStore = (*DiskImageStore)(nil)

// DiskImageStore persists images on the local filesystem under a single root
// directory served as static content at /uploads.
type DiskImageStore struct {
	root string
}

// NewDiskImageStore initialises a filesystem-backed image store rooted at dir.
func NewDiskImageStore(dir string) (*DiskImageStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("image store: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image store: ensure root directory: %w", err)
	}
	return &DiskImageStore{root: dir}, nil
}

// Save validates and writes the image, returning its public /uploads path.
// Names are random so uploads never collide or reveal anything about the dish.
func (s *DiskImageStore) Save(_ context.Context, r io.Reader, contentType string, size int64) (string, error) {
	if s == nil {
		return "", errors.New("image store: store not initialised")
	}

	ext, ok := extensionByType[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", apperrors.NewBadRequest("Only JPEG, PNG, WebP, and GIF images are accepted")
	}
	if size > MaxImageSize {
		return "", apperrors.NewBadRequest("Image exceeds the 5 MB size limit")
	}

	name, err := crypto.GenerateToken(16)
	if err != nil {
		return "", fmt.Errorf("image store: generate name: %w", err)
	}
	filename := name + ext
	fullPath := filepath.Join(s.root, filename)

	fh, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("image store: create file: %w", err)
	}

	// LimitReader guards against clients lying about the declared size.
	written, err := io.Copy(fh, io.LimitReader(r, MaxImageSize+1))
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("image store: write file: %w", err)
	}
	if written > MaxImageSize {
		_ = os.Remove(fullPath)
		return "", apperrors.NewBadRequest("Image exceeds the 5 MB size limit")
	}

	return "/uploads/" + filename, nil
}

// Delete removes a stored image. Unknown paths are ignored so stale database
// references never block a dish update.
func (s *DiskImageStore) Delete(_ context.Context, publicPath string) error {
	if s == nil {
		return errors.New("image store: store not initialised")
	}

	filename := filepath.Base(strings.TrimPrefix(publicPath, "/uploads/"))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("image store: delete file: %w", err)
	}
	return nil
}

// Root returns the directory backing the store, used to mount static serving.
func (s *DiskImageStore) Root() string {
	return s.root
}
