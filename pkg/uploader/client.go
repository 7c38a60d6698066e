package uploader

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"go-image-press/pkg/models"
)

// CompressedMediaType tags the bytes a successful upload decodes to.
const CompressedMediaType = "image/webp"

// FieldName is the multipart field the server consumes.
const FieldName = "image"

// StateListener observes every state transition, e.g. to render progress.
type StateListener func(State)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithHandleLifetime bounds how long download handles stay resolvable.
func WithHandleLifetime(d time.Duration) Option {
	return func(c *Client) { c.handles = NewHandleRegistry(d) }
}

// WithListener registers a transition observer.
func WithListener(fn StateListener) Option {
	return func(c *Client) { c.listener = fn }
}

// Client drives the single-image upload lifecycle against the compress
// endpoint: build request, report progress, decode the response, expose a
// download handle, recover from any failure. One upload is in flight at a
// time; starting a new one cancels and supersedes the previous one.
type Client struct {
	endpoint   string
	httpClient *http.Client
	handles    *HandleRegistry
	listener   StateListener

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// New creates a controller for the given compress endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		handles:    NewHandleRegistry(DefaultHandleLifetime),
		state:      State{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle snapshot.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Handles exposes the download handle registry.
func (c *Client) Handles() *HandleRegistry {
	return c.handles
}

// Reset cancels any in-flight upload and returns to Idle.
func (c *Client) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Transition(c.state, Reset{Generation: c.gen})
	s := c.state
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(s)
	}
}

// Upload runs one complete lifecycle synchronously and returns the final
// state for this upload's generation. A newer upload started concurrently
// supersedes this one: its late events become no-ops and its request context
// is cancelled.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, size int64) State {
	c.mu.Lock()
	if c.cancel != nil {
		// Abandon the previous in-flight upload deliberately.
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.state = Transition(c.state, FileSelected{Generation: gen})
	s := c.state
	listener := c.listener
	c.mu.Unlock()
	if listener != nil {
		listener(s)
	}
	defer cancel()

	resp, err := c.send(ctx, gen, filename, content, size)
	if err != nil {
		return c.apply(Failed{Generation: gen, Message: err.Error()})
	}

	// A response in hand implies the body went out in full; make sure the
	// Processing transition lands before the terminal one even if the
	// writer goroutine's BodySent is still in flight.
	c.apply(BodySent{Generation: gen})
	return c.finish(gen, resp, size)
}

// send streams the multipart body, emitting Progress and BodySent events as
// bytes go out.
func (c *Client) send(ctx context.Context, gen uint64, filename string, content io.Reader, size int64) (*models.CompressResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(FieldName, filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		counted := &progressReader{
			r:     content,
			total: size,
			onProgress: func(sent int64) {
				c.apply(Progress{Generation: gen, Sent: sent, Total: size})
			},
		}
		if _, err := io.Copy(part, counted); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
		// Body fully sent; the response has not arrived yet.
		c.apply(BodySent{Generation: gen})
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var wire models.CompressResponse
	if err := sonic.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}
	return &wire, nil
}

// finish converts the wire response into Done or Failed. The failure message
// priority is: server-reported error, then transport error, then the raw
// value stringified.
func (c *Client) finish(gen uint64, wire *models.CompressResponse, originalSize int64) State {
	if !wire.Success {
		return c.apply(Failed{Generation: gen, Message: serverErrorMessage(wire.Error)})
	}
	if wire.Data == "" {
		return c.apply(Failed{Generation: gen, Message: "response carried no image data"})
	}

	raw, err := base64.StdEncoding.DecodeString(wire.Data)
	if err != nil {
		return c.apply(Failed{Generation: gen, Message: fmt.Sprintf("undecodable image payload: %v", err)})
	}
	if len(raw) == 0 {
		return c.apply(Failed{Generation: gen, Message: "response carried an empty image"})
	}

	handle := c.handles.Put(raw, CompressedMediaType)
	return c.apply(Succeeded{
		Generation: gen,
		Outcome: Outcome{
			CompressedSize: int64(len(raw)),
			OriginalSize:   originalSize,
			Handle:         handle,
		},
	})
}

func (c *Client) apply(ev Event) State {
	c.mu.Lock()
	c.state = Transition(c.state, ev)
	s := c.state
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(s)
	}
	return s
}

func serverErrorMessage(e *models.ErrorBody) string {
	if e == nil {
		return "something went wrong"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != "" {
		return e.Kind
	}
	return "something went wrong"
}

// progressReader counts bytes as the transport pulls them.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress func(sent int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.onProgress(p.sent)
	}
	return n, err
}
