package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go-image-press/internal/encoder"
	apperrors "go-image-press/internal/errors"
	"go-image-press/internal/store"
)

// stubEncoder echoes the input reversed so tests can assert the pipeline
// wiring without running a real codec.
type stubEncoder struct {
	err error
}

func (s *stubEncoder) Encode(_ context.Context, raw []byte, _ encoder.Params) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[len(raw)-1-i] = b
	}
	return out, nil
}

func uploadRequest(t *testing.T, fieldName string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, "in.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(payload)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/compress", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCompressUpload_Pipeline(t *testing.T) {
	dir := t.TempDir()
	svc := NewCompressService(
		store.NewTempStore(dir, 1<<20),
		&stubEncoder{},
		encoder.Params{Quality: 30, Effort: 6},
	)

	payload := []byte("abcdef")
	result, err := svc.CompressUpload(context.Background(), uploadRequest(t, "image", payload))
	if err != nil {
		t.Fatalf("CompressUpload returned error: %v", err)
	}

	if string(result.CompressedBytes) != "fedcba" {
		t.Errorf("pipeline did not pass bytes through the encoder: %q", result.CompressedBytes)
	}
	if result.OriginalSize != int64(len(payload)) {
		t.Errorf("expected original size %d, got %d", len(payload), result.OriginalSize)
	}
	if result.SourcePath == "" {
		t.Error("expected source path to be reported")
	}

	// The temp file is owned by the request and must be gone afterwards.
	if _, err := os.Stat(result.SourcePath); !os.IsNotExist(err) {
		t.Error("temp file survived past the pipeline run")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list temp dir: %v", err)
	}
	for _, e := range entries {
		t.Errorf("leftover temp file: %s", filepath.Join(dir, e.Name()))
	}
}

func TestCompressUpload_MissingField(t *testing.T) {
	svc := NewCompressService(
		store.NewTempStore(t.TempDir(), 1<<20),
		&stubEncoder{},
		encoder.Params{Quality: 30, Effort: 6},
	)

	_, err := svc.CompressUpload(context.Background(), uploadRequest(t, "document", []byte("x")))
	if err == nil {
		t.Fatal("expected error, got none")
	}
	if !apperrors.IsKind(err, apperrors.KindMissingFile) {
		t.Errorf("expected missing_file kind, got %s", apperrors.KindOf(err))
	}
}

func TestCompressUpload_EncoderFailure(t *testing.T) {
	encErr := apperrors.NewCompressionError("input is not a decodable image", nil)
	svc := NewCompressService(
		store.NewTempStore(t.TempDir(), 1<<20),
		&stubEncoder{err: encErr},
		encoder.Params{Quality: 30, Effort: 6},
	)

	_, err := svc.CompressUpload(context.Background(), uploadRequest(t, "image", []byte("garbage")))
	if err == nil {
		t.Fatal("expected error, got none")
	}
	if !apperrors.IsKind(err, apperrors.KindCompression) {
		t.Errorf("expected compression kind, got %s", apperrors.KindOf(err))
	}
}
