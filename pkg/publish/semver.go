package publish

import (
	"regexp"
	"strings"
)

// semver.org 2.0.0, including prerelease and build metadata.
var semVerRe = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// rangeOperators are the prefixes a dependency constraint may carry. Longer
// operators come first so ">=" is not consumed as ">".
var rangeOperators = []string{">=", "<=", "^", "~", "=", ">", "<"}

// ValidVersion reports whether s is a well-formed semantic version.
func ValidVersion(s string) bool {
	return semVerRe.MatchString(s)
}

// ValidRange reports whether s is a well-formed dependency constraint: a
// semantic version with an optional operator prefix, e.g. "^1.2.3".
func ValidRange(s string) bool {
	for _, op := range rangeOperators {
		if strings.HasPrefix(s, op) {
			return ValidVersion(s[len(op):])
		}
	}
	return ValidVersion(s)
}
