package publish

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// Manifest is the package.json document inside a version archive.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	License      string            `json:"license"`
	Dependencies map[string]string `json:"dependencies"`
}

// parseManifest decodes and validates the manifest. Validation gathers every
// field problem so the publisher can fix the whole file in one attempt.
func parseManifest(raw []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, errs.Wrap(errs.KindPackage, "json decode error", err)
	}

	var problems []string
	if m.Name == "" {
		problems = append(problems, "name: must not be empty")
	}
	if !ValidVersion(m.Version) {
		problems = append(problems, fmt.Sprintf("version: %q is not a semantic version", m.Version))
	}
	if m.License == "" {
		problems = append(problems, "license: must not be empty")
	}

	deps := make([]string, 0, len(m.Dependencies))
	for dep := range m.Dependencies {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	for _, dep := range deps {
		if !ValidRange(m.Dependencies[dep]) {
			problems = append(problems,
				fmt.Sprintf("dependencies.%s: %q is not a version range", dep, m.Dependencies[dep]))
		}
	}

	if len(problems) > 0 {
		return nil, errs.New(errs.KindPackage, "invalid manifest: "+strings.Join(problems, "; "))
	}
	return m, nil
}
