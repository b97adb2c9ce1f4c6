package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidVersion(t *testing.T) {
	valid := []string{
		"0.0.1",
		"1.2.3",
		"10.20.30",
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"2.0.0-beta.1+build.5",
		"1.0.0+20130313144700",
	}
	for _, v := range valid {
		assert.True(t, ValidVersion(v), v)
	}

	invalid := []string{
		"",
		"1",
		"1.2",
		"01.2.3",
		"1.2.3.4",
		"v1.2.3",
		"1.2.3-",
		"1.2.3+",
		"^1.2.3",
	}
	for _, v := range invalid {
		assert.False(t, ValidVersion(v), v)
	}
}

func TestValidRange(t *testing.T) {
	valid := []string{
		"1.2.3",
		"^1.2.3",
		"~1.2.3",
		"=1.2.3",
		">1.2.3",
		">=1.2.3",
		"<2.0.0",
		"<=2.0.0-rc.1",
		"^2.0.0-beta.1+build.5",
	}
	for _, r := range valid {
		assert.True(t, ValidRange(r), r)
	}

	invalid := []string{
		"",
		"^",
		"^^1.2.3",
		"^1.2",
		"latest",
		">= 1.2.3",
	}
	for _, r := range invalid {
		assert.False(t, ValidRange(r), r)
	}
}
