package images

import (
	"fmt"

	"github.com/distribution/reference"
)

// NormalizeSource validates an OCI image reference and returns it the way the
// registry stores it. An empty source stays empty.
//   - "alpine" -> "docker.io/library/alpine:latest"
//   - "ghcr.io/org/app:v1" -> unchanged
//   - "alpine@sha256:..." -> "docker.io/library/alpine@sha256:..."
func NormalizeSource(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	named, err := reference.ParseNormalizedNamed(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidSource, s, err)
	}
	if canonical, ok := named.(reference.Canonical); ok {
		return canonical.String(), nil
	}
	return reference.TagNameOnly(named).String(), nil
}
