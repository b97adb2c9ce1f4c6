// Package publish implements the version publication pipeline: archive
// extraction, manifest validation, authorization, blob upload and the final
// registry commit.
package publish

import (
	"context"
	"fmt"

	"github.com/raccoonpkg/rack/pkg/blob"
	"github.com/raccoonpkg/rack/pkg/errs"
	"github.com/raccoonpkg/rack/pkg/observability"
	"github.com/raccoonpkg/rack/pkg/registry"
	"github.com/raccoonpkg/rack/pkg/tokens"
)

// Pipeline publishes package versions.
type Pipeline struct {
	packages *registry.Store
	tokens   *tokens.Service
	storage  blob.Gateway
	metrics  *observability.Metrics
}

// NewPipeline creates a publication pipeline.
func NewPipeline(packages *registry.Store, tokenSvc *tokens.Service, storage blob.Gateway, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{packages: packages, tokens: tokenSvc, storage: storage, metrics: metrics}
}

// Publish runs the full pipeline on an uploaded archive. The steps are
// ordered so that nothing is stored before the manifest is valid and the
// actor is authorized, and the blob is uploaded before the version row is
// committed. If a concurrent publish wins the version row, the blob it
// already overwrote is the surviving one, so nothing needs cleanup.
//
// The package named by the manifest must already exist; publishing never
// creates packages implicitly.
func (p *Pipeline) Publish(ctx context.Context, actor tokens.Actor, archive []byte) (*registry.PackageVersion, error) {
	version, err := p.publish(ctx, actor, archive)
	p.metrics.PublishTotal.WithLabelValues(outcome(err)).Inc()
	return version, err
}

func (p *Pipeline) publish(ctx context.Context, actor tokens.Actor, archive []byte) (*registry.PackageVersion, error) {
	raw, err := extractManifest(archive)
	if err != nil {
		return nil, err
	}

	manifest, err := parseManifest(raw)
	if err != nil {
		return nil, err
	}

	pkg, err := p.packages.Get(ctx, manifest.Name)
	if err != nil {
		return nil, err
	}

	if err := p.tokens.AuthorizePublish(actor, pkg); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/versions/%s-%s.tar.gz", manifest.Name, manifest.Version)
	if err := p.storage.Upload(ctx, path, archive, true); err != nil {
		return nil, err
	}

	version, err := p.packages.RegisterVersion(ctx, manifest.Name, manifest.Version, raw, path)
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Info("published package version",
		"package", manifest.Name, "version", manifest.Version)
	return version, nil
}

// outcome buckets a publish result for the metrics counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errs.KindOf(err) != errs.KindInternal:
		return "rejected"
	default:
		return "error"
	}
}
