package uploader

import (
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/google/uuid"
)

// DefaultHandleLifetime bounds how long a download handle stays resolvable.
const DefaultHandleLifetime = 300 * time.Second

// Handle is an ephemeral in-memory reference to decoded image bytes, the
// local stand-in for a browser object URL. Valid only while the registry
// keeps it.
type Handle struct {
	ID        string
	MediaType string
	data      []byte
}

// Bytes returns the referenced image bytes.
func (h *Handle) Bytes() []byte {
	return h.data
}

// HandleRegistry stores handles with a bounded lifetime.
type HandleRegistry struct {
	cache *ttlworker.Cache[string, *Handle]
}

func NewHandleRegistry(lifetime time.Duration) *HandleRegistry {
	if lifetime <= 0 {
		lifetime = DefaultHandleLifetime
	}
	return &HandleRegistry{
		cache: ttlworker.NewCache[string, *Handle](lifetime),
	}
}

// Put registers the bytes under a fresh id and returns the handle.
func (r *HandleRegistry) Put(data []byte, mediaType string) *Handle {
	h := &Handle{
		ID:        uuid.New().String(),
		MediaType: mediaType,
		data:      data,
	}
	r.cache.Set(h.ID, h)
	return h
}

// Get resolves a handle by id.
func (r *HandleRegistry) Get(id string) (*Handle, bool) {
	h := r.cache.Get(id)
	return h, h != nil
}

// Revoke drops a handle before its lifetime expires.
func (r *HandleRegistry) Revoke(id string) {
	r.cache.Delete(id)
}
