package service

import (
	"context"
	"net/http"
	"os"

	"go-image-press/internal/encoder"
	apperrors "go-image-press/internal/errors"
	"go-image-press/internal/logger"
	"go-image-press/internal/store"
	"go-image-press/pkg/models"

	"github.com/sirupsen/logrus"
)

// ImageFieldName is the sole multipart field the pipeline consumes.
const ImageFieldName = "image"

// CompressService runs the upload-to-compression pipeline for one request:
// materialize the upload, read it back, re-encode it.
type CompressService interface {
	CompressUpload(ctx context.Context, r *http.Request) (*models.CompressionResult, error)
}

type compressService struct {
	store  *store.TempStore
	enc    encoder.ImageEncoder
	params encoder.Params
}

// NewCompressService creates the pipeline service with deployment-fixed
// encoding params.
func NewCompressService(s *store.TempStore, enc encoder.ImageEncoder, params encoder.Params) CompressService {
	return &compressService{store: s, enc: enc, params: params}
}

// CompressUpload executes the strictly ordered store -> read -> encode chain.
// The temp file is owned by this request and removed before returning.
func (s *compressService) CompressUpload(ctx context.Context, r *http.Request) (*models.CompressionResult, error) {
	uploaded, err := s.store.ReceiveFile(r, ImageFieldName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if removeErr := uploaded.Remove(); removeErr != nil {
			logger.WithError(removeErr).WithFields(logrus.Fields{
				"path": uploaded.Path,
			}).Warn("Failed to remove upload temp file")
		}
	}()

	raw, err := os.ReadFile(uploaded.Path)
	if err != nil {
		return nil, apperrors.NewReadError("failed to read uploaded file", err)
	}

	compressed, err := s.enc.Encode(ctx, raw, s.params)
	if err != nil {
		return nil, err
	}

	return &models.CompressionResult{
		CompressedBytes: compressed,
		SourcePath:      uploaded.Path,
		OriginalSize:    uploaded.Size,
	}, nil
}
