package encoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"runtime"

	"github.com/gen2brain/webp"

	apperrors "go-image-press/internal/errors"
)

// Params holds the lossy re-encoding knobs. Both must lie inside the codec's
// accepted range or Encode fails before touching the input.
type Params struct {
	Quality int // fidelity vs size, 0-100
	Effort  int // compression time vs size, 0-6
}

// Validate checks the params against the codec's accepted ranges.
func (p Params) Validate() error {
	if p.Quality < 0 || p.Quality > 100 {
		return apperrors.NewValidationError(
			fmt.Sprintf("quality must be in [0,100] (got %d)", p.Quality), nil)
	}
	if p.Effort < 0 || p.Effort > 6 {
		return apperrors.NewValidationError(
			fmt.Sprintf("effort must be in [0,6] (got %d)", p.Effort), nil)
	}
	return nil
}

// ImageEncoder re-encodes raw image bytes into a lossy target codec.
// Deterministic: identical input and params produce identical output.
type ImageEncoder interface {
	Encode(ctx context.Context, raw []byte, params Params) ([]byte, error)
}

// WebPEncoder implements ImageEncoder on top of the libwebp port. Encodes are
// CPU bound, so a semaphore caps how many run at once; waiting callers stay
// cancellable through their context.
type WebPEncoder struct {
	sem chan struct{}
}

// NewWebPEncoder creates an encoder allowing up to maxConcurrent encodes.
// Zero or negative means one per CPU.
func NewWebPEncoder(maxConcurrent int) *WebPEncoder {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}
	return &WebPEncoder{sem: make(chan struct{}, maxConcurrent)}
}

func (e *WebPEncoder) Encode(ctx context.Context, raw []byte, params Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apperrors.NewCompressionError("empty input", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCompressionError("encode cancelled", err)
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return nil, apperrors.NewCompressionError("encode cancelled", ctx.Err())
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewCompressionError("input is not a decodable image", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCompressionError("encode cancelled", err)
	}

	var buf bytes.Buffer
	err = webp.Encode(&buf, img, webp.Options{
		Quality: params.Quality,
		Method:  params.Effort,
	})
	if err != nil {
		return nil, apperrors.NewCompressionError(
			fmt.Sprintf("failed to re-encode %s image", format), err)
	}

	return buf.Bytes(), nil
}
