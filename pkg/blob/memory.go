package blob

import (
	"context"
	"sync"
	"time"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// MemoryGateway keeps blobs in a map. It backs tests and single-process
// development setups; everything is lost on restart.
type MemoryGateway struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{blobs: make(map[string][]byte)}
}

func (g *MemoryGateway) Upload(_ context.Context, path string, data []byte, overwrite bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.blobs[path]; exists && !overwrite {
		return errs.New(errs.KindStorage, "file already exists in storage")
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	g.blobs[path] = stored
	return nil
}

func (g *MemoryGateway) Download(_ context.Context, path string) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	data, exists := g.blobs[path]
	if !exists {
		return nil, errs.New(errs.KindNotFound, "file not found")
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (g *MemoryGateway) Remove(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.blobs, path)
	return nil
}

func (g *MemoryGateway) DownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNotSupported
}

func (g *MemoryGateway) UploadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNotSupported
}

func (g *MemoryGateway) Ping(context.Context) error {
	return nil
}

// Len reports the number of stored blobs.
func (g *MemoryGateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.blobs)
}
