package store

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	apperrors "go-image-press/internal/errors"
)

// UploadedFile describes one multipart file payload materialized to disk.
type UploadedFile struct {
	FieldName        string
	OriginalFilename string
	Path             string
	Size             int64
}

// Remove deletes the temp file. Safe to call once the response is written;
// the file must not be referenced afterwards.
func (f *UploadedFile) Remove() error {
	return os.Remove(f.Path)
}

// TempStore streams a request's multipart body and materializes a single
// named file field to a temporary location. The raw body stream must reach
// it unconsumed; callers must not run any framework form parsing first.
type TempStore struct {
	dir     string
	maxSize int64
}

func NewTempStore(dir string, maxSize int64) *TempStore {
	if dir == "" {
		dir = os.TempDir()
	}
	return &TempStore{dir: dir, maxSize: maxSize}
}

// ReceiveFile scans the multipart stream for the given field and writes its
// payload to a temp file, reporting path, size and the declared filename.
func (s *TempStore) ReceiveFile(r *http.Request, fieldName string) (*UploadedFile, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperrors.NewValidationError("request body is not multipart form data", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewValidationError("malformed multipart stream", err)
		}
		if part.FormName() != fieldName || part.FileName() == "" {
			part.Close()
			continue
		}

		uploaded, err := s.materialize(part)
		part.Close()
		if err != nil {
			return nil, err
		}
		uploaded.FieldName = fieldName
		return uploaded, nil
	}

	return nil, apperrors.NewMissingFileError("no file uploaded under field "+fieldName, nil)
}

func (s *TempStore) materialize(part *multipart.Part) (*UploadedFile, error) {
	tmp, err := os.CreateTemp(s.dir, "upload-*.img")
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create temp file", err)
	}

	limited := io.LimitReader(part, s.maxSize+1)
	size, err := io.Copy(tmp, limited)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return nil, apperrors.NewReadError("failed to write upload to temp file", err)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return nil, apperrors.NewReadError("failed to flush upload to temp file", closeErr)
	}
	if size > s.maxSize {
		os.Remove(tmp.Name())
		return nil, apperrors.NewValidationError("uploaded file exceeds the size limit", errTooLarge)
	}
	if size == 0 {
		os.Remove(tmp.Name())
		return nil, apperrors.NewMissingFileError("uploaded file is empty", nil)
	}

	return &UploadedFile{
		OriginalFilename: part.FileName(),
		Path:             tmp.Name(),
		Size:             size,
	}, nil
}

var errTooLarge = errors.New("upload too large")
