package blob

import (
	"context"
	"time"

	"github.com/raccoonpkg/rack/pkg/observability"
)

// instrumented wraps a Gateway with operation and error counters.
type instrumented struct {
	next    Gateway
	metrics *observability.Metrics
}

// Instrument wraps the gateway so every storage call is counted.
func Instrument(next Gateway, metrics *observability.Metrics) Gateway {
	return &instrumented{next: next, metrics: metrics}
}

func (g *instrumented) record(operation string, err error) {
	g.metrics.StorageOperationsTotal.WithLabelValues(operation).Inc()
	if err != nil {
		g.metrics.StorageErrorsTotal.WithLabelValues(operation).Inc()
	}
}

func (g *instrumented) Upload(ctx context.Context, path string, data []byte, overwrite bool) error {
	err := g.next.Upload(ctx, path, data, overwrite)
	g.record("upload", err)
	return err
}

func (g *instrumented) Download(ctx context.Context, path string) ([]byte, error) {
	data, err := g.next.Download(ctx, path)
	g.record("download", err)
	return data, err
}

func (g *instrumented) Remove(ctx context.Context, path string) error {
	err := g.next.Remove(ctx, path)
	g.record("remove", err)
	return err
}

func (g *instrumented) DownloadURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	url, err := g.next.DownloadURL(ctx, path, expires)
	g.record("presign", err)
	return url, err
}

func (g *instrumented) UploadURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	url, err := g.next.UploadURL(ctx, path, expires)
	g.record("presign", err)
	return url, err
}

func (g *instrumented) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}
