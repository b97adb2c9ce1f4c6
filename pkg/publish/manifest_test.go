package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoonpkg/rack/pkg/errs"
)

func TestParseManifest(t *testing.T) {
	raw := []byte(`{
		"name": "libx",
		"version": "2.0.0-beta.1+build.5",
		"description": "extended library",
		"license": "MIT",
		"dependencies": {"liby": "^1.2.3", "libz": ">=0.4.0"}
	}`)

	m, err := parseManifest(raw)
	require.NoError(t, err)
	assert.Equal(t, "libx", m.Name)
	assert.Equal(t, "2.0.0-beta.1+build.5", m.Version)
	assert.Equal(t, "MIT", m.License)
	assert.Equal(t, "^1.2.3", m.Dependencies["liby"])
}

func TestParseManifestNotJSON(t *testing.T) {
	_, err := parseManifest([]byte("not json at all"))
	assert.Equal(t, errs.KindPackage, errs.KindOf(err))
	assert.Equal(t, "json decode error", errs.Detail(err))
}

func TestParseManifestFieldProblems(t *testing.T) {
	raw := []byte(`{
		"name": "",
		"version": "one-point-oh",
		"license": "",
		"dependencies": {"liby": "latest"}
	}`)

	_, err := parseManifest(raw)
	require.Error(t, err)
	assert.Equal(t, errs.KindPackage, errs.KindOf(err))

	detail := errs.Detail(err)
	assert.Contains(t, detail, "name: must not be empty")
	assert.Contains(t, detail, `version: "one-point-oh" is not a semantic version`)
	assert.Contains(t, detail, "license: must not be empty")
	assert.Contains(t, detail, `dependencies.liby: "latest" is not a version range`)
}

func TestParseManifestNoDependencies(t *testing.T) {
	raw := []byte(`{"name": "libx", "version": "1.0.0", "description": "", "license": "MIT"}`)

	m, err := parseManifest(raw)
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies)
}
