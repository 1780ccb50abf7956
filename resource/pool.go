package resource

import (
	"errors"
	"fmt"
	"sync"
)

// ImageRef is a reference to an image in a Pool.
type ImageRef uint32

// BufferRef is a reference to a buffer in a Pool.
type BufferRef uint32

// InvalidRef is the sentinel value for an invalid reference.
const InvalidRef = ^uint32(0)

// IsValid returns true if the reference is not InvalidRef.
func (r ImageRef) IsValid() bool { return uint32(r) != InvalidRef }

// IsValid returns true if the reference is not InvalidRef.
func (r BufferRef) IsValid() bool { return uint32(r) != InvalidRef }

// ErrHandleNotFound is returned when a reference does not name a live resource.
var ErrHandleNotFound = errors.New("resource: handle not found")

// Pool stores images and buffers addressed by integer handle.
// Released slots are never reused, so a stale handle fails instead of
// resolving to a different resource.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu      sync.RWMutex
	images  []*Image
	buffers []*Buffer
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		images:  make([]*Image, 0, 8),
		buffers: make([]*Buffer, 0, 16),
	}
}

// AddImage stores img and returns its reference.
func (p *Pool) AddImage(img *Image) ImageRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.images = append(p.images, img)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return ImageRef(uint32(len(p.images) - 1))
}

// Image resolves an image reference.
func (p *Pool) Image(ref ImageRef) (*Image, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(ref) >= len(p.images) || p.images[ref] == nil {
		return nil, fmt.Errorf("%w: image %d", ErrHandleNotFound, uint32(ref))
	}
	return p.images[ref], nil
}

// ReleaseImage drops an image. Later lookups of ref fail.
func (p *Pool) ReleaseImage(ref ImageRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(ref) < len(p.images) {
		p.images[ref] = nil
	}
}

// AddBuffer stores buf and returns its reference.
func (p *Pool) AddBuffer(buf *Buffer) BufferRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers = append(p.buffers, buf)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return BufferRef(uint32(len(p.buffers) - 1))
}

// Buffer resolves a buffer reference.
func (p *Pool) Buffer(ref BufferRef) (*Buffer, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(ref) >= len(p.buffers) || p.buffers[ref] == nil {
		return nil, fmt.Errorf("%w: buffer %d", ErrHandleNotFound, uint32(ref))
	}
	return p.buffers[ref], nil
}

// ReleaseBuffer drops a buffer. Later lookups of ref fail.
func (p *Pool) ReleaseBuffer(ref BufferRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(ref) < len(p.buffers) {
		p.buffers[ref] = nil
	}
}

// ImageCount returns the number of image slots, including released ones.
func (p *Pool) ImageCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.images)
}

// BufferCount returns the number of buffer slots, including released ones.
func (p *Pool) BufferCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.buffers)
}
