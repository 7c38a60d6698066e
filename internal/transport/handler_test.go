package transport

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-image-press/internal/config"
	"go-image-press/internal/encoder"
	"go-image-press/internal/service"
	"go-image-press/internal/store"
	"go-image-press/pkg/models"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Host:           "127.0.0.1",
		Port:           "8080",
		RequestTimeout: 30 * time.Second,
		MaxUploadSize:  1 << 20,
		TempDir:        t.TempDir(),
		Quality:        30,
		Effort:         6,
	}
	tempStore := store.NewTempStore(cfg.TempDir, cfg.MaxUploadSize)
	enc := encoder.NewWebPEncoder(1)
	svc := service.NewCompressService(tempStore, enc, encoder.Params{Quality: cfg.Quality, Effort: cfg.Effort})
	return NewHandler(svc, cfg)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x + y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func postImage(t *testing.T, handler http.Handler, fieldName string, payload []byte) (*httptest.ResponseRecorder, models.CompressResponse) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, "upload.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("failed to write payload: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/compress", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp models.CompressResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v (body: %s)", err, w.Body.String())
	}
	return w, resp
}

func TestCompressImage_Success(t *testing.T) {
	handler := newTestHandler(t)

	w, resp := postImage(t, handler, "image", testPNG(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !resp.Success {
		t.Fatalf("expected success, got error: %+v", resp.Error)
	}
	if resp.Extra == "" {
		t.Error("expected extra to carry the temp file path")
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		t.Fatalf("data is not valid base64: %v", err)
	}
	if len(decoded) == 0 {
		t.Fatal("data decoded to an empty byte sequence")
	}
	if !bytes.HasPrefix(decoded, []byte("RIFF")) {
		t.Error("decoded payload is not a WebP container")
	}
}

func TestCompressImage_Deterministic(t *testing.T) {
	handler := newTestHandler(t)
	payload := testPNG(t)

	_, first := postImage(t, handler, "image", payload)
	_, second := postImage(t, handler, "image", payload)

	if !first.Success || !second.Success {
		t.Fatal("expected both submissions to succeed")
	}
	if first.Data != second.Data {
		t.Error("identical submissions produced different compressed data")
	}
}

func TestCompressImage_Failures(t *testing.T) {
	tests := []struct {
		name       string
		fieldName  string
		payload    []byte
		expectKind string
	}{
		{
			name:       "missing image field",
			fieldName:  "document",
			payload:    []byte("not-the-right-field"),
			expectKind: "missing_file",
		},
		{
			name:       "non-image payload",
			fieldName:  "image",
			payload:    []byte("0123456789"),
			expectKind: "compression",
		},
	}

	handler := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := postImage(t, handler, tt.fieldName, tt.payload)

			// Handled failures keep the success transport status.
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200 for handled failure, got %d", w.Code)
			}
			if resp.Success {
				t.Fatal("expected success=false")
			}
			if resp.Error == nil {
				t.Fatal("expected structured error body")
			}
			if resp.Error.Kind != tt.expectKind {
				t.Errorf("expected kind %s, got %s", tt.expectKind, resp.Error.Kind)
			}
			if resp.Error.Message == "" {
				t.Error("expected a human-readable error message")
			}
		})
	}
}

func TestCompressImage_ShrinksLargeImage(t *testing.T) {
	handler := newTestHandler(t)
	payload := testPNG(t)

	_, resp := postImage(t, handler, "image", payload)
	if !resp.Success {
		t.Fatalf("expected success, got error: %+v", resp.Error)
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		t.Fatalf("data is not valid base64: %v", err)
	}
	// Lossy q30 output must not blow past the input plus container overhead.
	if len(decoded) > len(payload)+1024 {
		t.Errorf("compressed output %d exceeds input %d beyond container overhead", len(decoded), len(payload))
	}
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
