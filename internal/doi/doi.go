// Package doi canonicalizes Digital Object Identifier strings.
//
// Exports from different bibliography databases carry the same DOI in wildly
// different shapes: resolver URLs, "doi:" labels, mixed case, and (for ACM)
// suffix segments of inconsistent length. Normalize collapses all of them
// into one comparable form.
package doi

import (
	"regexp"
	"strings"
)

// prefixes are stripped before pattern matching, first match wins and only
// one is removed. Order matters: longer prefixes shadow shorter ones.
var prefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"doi.org/",
	"doi: ",
	"doi:",
}

// Pattern cascade, tried in priority order. The ACM pattern is a strict
// subset of the dotted pattern, which is itself a subset of the generic one;
// reordering the cascade changes results, so the order is a contract.
var (
	// acmPattern matches a canonical ACM DOI: two 7-digit suffix segments.
	acmPattern = regexp.MustCompile(`10\.1145/\d{7}\.\d{7}\b`)

	// dottedPattern matches any registrant with a two-segment numeric suffix.
	dottedPattern = regexp.MustCompile(`10\.\d{4}/\d+\.\d+`)

	// genericPattern matches any plausible DOI shape.
	genericPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)
)

const acmRegistrant = "10.1145"

// acmSegmentDigits is the digit count ACM suffix segments are truncated to.
// ACM DOIs appear in the wild with 1-to-9-digit segments referring to the
// same work.
const acmSegmentDigits = 7

// Normalize canonicalizes a raw identifier string. It returns "" when no
// identifier can be recognized; callers must treat that as "no identifier",
// not as an error. Normalize is idempotent on its non-empty outputs.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}

	if m := acmPattern.FindString(s); m != "" {
		return m
	}

	if m := dottedPattern.FindString(s); m != "" {
		return canonicalizeDotted(m)
	}

	if m := genericPattern.FindString(s); m != "" {
		return strings.TrimRight(m, ".,;:)")
	}

	return ""
}

// canonicalizeDotted truncates ACM suffix segments to a fixed digit count.
// Non-ACM registrants pass through unchanged.
func canonicalizeDotted(d string) string {
	registrant, suffix, ok := strings.Cut(d, "/")
	if !ok || registrant != acmRegistrant {
		return d
	}

	base, rest, ok := strings.Cut(suffix, ".")
	if !ok {
		return d
	}

	if len(base) > acmSegmentDigits {
		base = base[:acmSegmentDigits]
	}
	if len(rest) > acmSegmentDigits {
		rest = rest[:acmSegmentDigits]
	}

	return registrant + "/" + base + "." + rest
}

// Base truncates a normalized DOI to its base form: the registrant plus the
// first suffix segment before any dot. Two DOIs differing only in a trailing
// sub-part share a base.
func Base(d string) string {
	registrant, suffix, ok := strings.Cut(d, "/")
	if !ok {
		return d
	}
	if i := strings.Index(suffix, "."); i > 0 {
		suffix = suffix[:i]
	}
	return registrant + "/" + suffix
}
