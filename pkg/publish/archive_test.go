package publish

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// buildArchive writes the given entries into a tar stream, gzipped unless
// plain is requested.
func buildArchive(t *testing.T, compress bool, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var out *tar.Writer
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(&buf)
		out = tar.NewWriter(gz)
	} else {
		out = tar.NewWriter(&buf)
	}

	for name, content := range entries {
		require.NoError(t, out.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := out.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, out.Close())
	if gz != nil {
		require.NoError(t, gz.Close())
	}
	return buf.Bytes()
}

func TestExtractManifestGzipped(t *testing.T) {
	manifest := []byte(`{"name": "libx"}`)
	archive := buildArchive(t, true, map[string][]byte{
		"README.md":    []byte("# libx"),
		"package.json": manifest,
	})

	raw, err := extractManifest(archive)
	require.NoError(t, err)
	assert.Equal(t, manifest, raw)
}

func TestExtractManifestPlainTar(t *testing.T) {
	manifest := []byte(`{"name": "libx"}`)
	archive := buildArchive(t, false, map[string][]byte{"package.json": manifest})

	raw, err := extractManifest(archive)
	require.NoError(t, err)
	assert.Equal(t, manifest, raw)
}

func TestExtractManifestDotSlashEntry(t *testing.T) {
	manifest := []byte(`{"name": "libx"}`)
	archive := buildArchive(t, true, map[string][]byte{"./package.json": manifest})

	raw, err := extractManifest(archive)
	require.NoError(t, err)
	assert.Equal(t, manifest, raw)
}

func TestExtractManifestNotAnArchive(t *testing.T) {
	_, err := extractManifest([]byte("definitely not a tarball"))
	assert.Equal(t, errs.KindPackage, errs.KindOf(err))
	assert.Equal(t, "file is not a tar archive", errs.Detail(err))
}

func TestExtractManifestMissingEntry(t *testing.T) {
	archive := buildArchive(t, true, map[string][]byte{"README.md": []byte("# libx")})

	_, err := extractManifest(archive)
	assert.Equal(t, errs.KindPackage, errs.KindOf(err))
	assert.Equal(t, "filename 'package.json' not found", errs.Detail(err))
}
