// Package constraint evaluates the compatibility requirement a plugin declares against a host platform version.
//
// Requirements use a small, deliberately lenient dialect rather than full semantic-version ranges:
//
//	~X.Y   the target starts with "X.Y"
//	^X     the target starts with "X."
//	6.*    the target starts with the requirement without its '*' characters
//	other  the requirement contains the target as a substring
//
// Branches may be combined with "||", in which case any matching branch is enough.
package constraint

import (
	"strings"

	"github.com/kaws-dev/gitplug/internal/version"
)

const orSeparator = "||"

// Matches reports whether the requirement accepts the target version.
// It never fails: malformed requirements simply do not match.
func Matches(requirement string, target string) bool {
	target = version.Normalize(target)
	if target == "" {
		return false
	}

	for _, branch := range strings.Split(requirement, orSeparator) {
		if matchBranch(strings.TrimSpace(branch), target) {
			return true
		}
	}

	return false
}

func matchBranch(requirement string, target string) bool {
	if requirement == "" {
		return false
	}

	if rest, ok := strings.CutPrefix(requirement, "~"); ok {
		// A tilde without at least major.minor falls through to the remaining rules.
		parts := strings.Split(strings.TrimLeft(rest, "~"), ".")
		if len(parts) >= 2 {
			return strings.HasPrefix(target, parts[0]+"."+parts[1])
		}
	}

	if rest, ok := strings.CutPrefix(requirement, "^"); ok {
		major, _, _ := strings.Cut(strings.TrimLeft(rest, "^"), ".")
		return strings.HasPrefix(target, major+".")
	}

	if strings.Contains(requirement, "*") {
		return strings.HasPrefix(target, strings.ReplaceAll(requirement, "*", ""))
	}

	return strings.Contains(requirement, target)
}
