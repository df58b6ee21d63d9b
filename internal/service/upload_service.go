package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/inkwell/blog/internal/metrics"
	"github.com/inkwell/blog/internal/storage"
	"github.com/inkwell/blog/internal/utils"
)

// Upload sources, used as metric labels
const (
	UploadSourceArticle  = "article"
	UploadSourceEndpoint = "upload_endpoint"
)

// UploadService stores uploaded images under sanitized names
type UploadService struct {
	provider storage.Provider
}

// NewUploadService creates an UploadService
func NewUploadService(provider storage.Provider) *UploadService {
	return &UploadService{provider: provider}
}

// Save stores the uploaded file and returns its sanitized filename.
// A file with the same sanitized name is replaced.
func (s *UploadService) Save(ctx context.Context, header *multipart.FileHeader, source string) (string, error) {
	if header == nil {
		return "", validationError("image is required")
	}

	filename := utils.SecureFilename(header.Filename)
	if filename == "" {
		return "", validationError("invalid image filename %q", header.Filename)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := s.provider.Put(ctx, filename, src, header.Header.Get("Content-Type")); err != nil {
		return "", fmt.Errorf("store image %s: %w", filename, err)
	}

	metrics.ImagesStoredTotal.WithLabelValues(source).Inc()
	return filename, nil
}

// Open returns a stored image. Names that are not already sanitized are never looked up.
func (s *UploadService) Open(ctx context.Context, filename string) (*storage.Object, error) {
	if filename == "" || utils.SecureFilename(filename) != filename {
		return nil, ErrNotFound
	}

	obj, err := s.provider.Get(ctx, filename)
	if errors.Is(err, storage.ErrNotExist) || errors.Is(err, storage.ErrInvalidKey) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", filename, err)
	}
	return obj, nil
}
