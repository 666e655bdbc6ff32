// Package version implements the dotted-numeric ordering used to rank release tags,
// along with helpers for deriving a host's major.minor line and telling tags apart from branches.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/kaws-dev/gitplug/internal/errors"
)

// releaseTagPattern matches references that look like a full release (e.g. v1.2.3, 6.6.0.0).
var releaseTagPattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+`)

// Normalize strips any leading 'v' or 'V' characters and surrounding whitespace.
func Normalize(v string) string {
	return strings.TrimLeft(strings.TrimSpace(v), "vV")
}

// Compare returns -1, 0 or 1 depending on whether a is lower than, equal to or greater than b.
// Both values are normalized first. Release fields are compared numerically, as many as either side has,
// and missing fields count as zero, so "2.1" > "2.0.9" > "2" and "2" == "2.0.0".
// Pre-release and build suffixes do not take part, so "1.0.0-rc1" == "1.0.0".
func Compare(a, b string) int {
	fa, fb := Fields(a), Fields(b)

	n := max(len(fa), len(fb))
	for i := range n {
		x, y := fieldAt(fa, i), fieldAt(fb, i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}

	return 0
}

// Fields returns the numeric release fields of v.
// Semantic versions contribute their release segments.
// Anything else contributes the dot-separated digits of its leading numeric run, e.g. [1 2 0] for "1.2.x".
func Fields(v string) []int64 {
	v = Normalize(v)

	if parsed, err := goversion.NewVersion(v); err == nil {
		return parsed.Segments64()
	}

	end := 0
	for end < len(v) && (v[end] == '.' || (v[end] >= '0' && v[end] <= '9')) {
		end++
	}
	if end == 0 {
		return nil
	}

	parts := strings.Split(v[:end], ".")
	fields := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			n = 0
		}
		fields = append(fields, n)
	}

	return fields
}

// MajorMinor returns the "major.minor" token of the given version, e.g. "6.6" for "v6.6.3.1".
func MajorMinor(v string) (string, error) {
	parts := strings.Split(Normalize(v), ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: version '%s' has no major.minor component", errors.ErrInvalidInput, v)
	}

	return parts[0] + "." + parts[1], nil
}

// IsReleaseTag reports whether the reference looks like a release tag (at least three numeric fields,
// optionally prefixed with 'v'). Anything else is treated as a branch name.
func IsReleaseTag(ref string) bool {
	return releaseTagPattern.MatchString(strings.TrimSpace(ref))
}

func fieldAt(fields []int64, i int) int64 {
	if i >= len(fields) {
		return 0
	}

	return fields[i]
}
