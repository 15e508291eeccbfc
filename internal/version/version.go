// Package version orders interpreter release tags for display.
package version

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeTag strips a single leading "v" or "V" from a git tag for display.
//
// Examples:
//   - "v3.12.0" -> "3.12.0"
//   - "V3.9"    -> "3.9"
//   - "3.9"     -> "3.9"
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if len(tag) > 1 && (tag[0] == 'v' || tag[0] == 'V') {
		return tag[1:]
	}
	return tag
}

// Pre-release phases, lowest first. A final release ranks above all of them.
const (
	phaseAlpha = iota
	phaseBeta
	phaseCandidate
	phaseFinal
)

// versionKey understands release tags of the form
//   - "3.12.0", "3.12", "2.7.18"
//   - "3.13.0a1", "3.13.0b3", "3.13.0rc2"   (PEP 440 style, as CPython tags them)
//   - "1.0.0-beta.1"                        (semver style)
type versionKey struct {
	ok    bool
	core  []int
	phase int
	num   int
	pre   []string // semver prerelease identifiers
}

func parseVersion(s string) versionKey {
	s = strings.TrimSpace(s)
	k := versionKey{phase: phaseFinal}

	// Version-like values start with a digit.
	if s == "" || !unicode.IsDigit(rune(s[0])) {
		return versionKey{}
	}

	main := s
	if i := strings.IndexByte(s, '-'); i >= 0 {
		main = s[:i]
		if pre := s[i+1:]; pre != "" {
			k.phase = phaseAlpha
			k.pre = strings.Split(pre, ".")
		}
	}

	parts := strings.Split(main, ".")
	last := parts[len(parts)-1]
	if j := strings.IndexFunc(last, func(r rune) bool { return !unicode.IsDigit(r) }); j > 0 {
		phase, num, ok := parsePhase(last[j:])
		if !ok {
			return versionKey{}
		}
		k.phase, k.num = phase, num
		parts[len(parts)-1] = last[:j]
	}

	k.core = make([]int, 0, len(parts))
	for _, p := range parts {
		v, ok := isNumericIdent(p)
		if !ok {
			return versionKey{}
		}
		k.core = append(k.core, v)
	}

	k.ok = true
	return k
}

// parsePhase reads "a1", "b2", "rc3" (the number is optional).
func parsePhase(s string) (int, int, bool) {
	var phase int
	switch {
	case strings.HasPrefix(s, "rc"):
		phase, s = phaseCandidate, s[2:]
	case strings.HasPrefix(s, "a"):
		phase, s = phaseAlpha, s[1:]
	case strings.HasPrefix(s, "b"):
		phase, s = phaseBeta, s[1:]
	default:
		return 0, 0, false
	}
	if s == "" {
		return phase, 0, true
	}
	n, ok := isNumericIdent(s)
	return phase, n, ok
}

func isNumericIdent(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cmpPrerelease(a, b []string) int {
	// -1 if a<b, 0 if equal, +1 if a>b (semver precedence rules)
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ain, aNum := isNumericIdent(a[i])
		bin, bNum := isNumericIdent(b[i])

		switch {
		case aNum && bNum:
			if ain != bin {
				return cmpInt(ain, bin)
			}
		case aNum:
			// numeric < non-numeric
			return -1
		case bNum:
			return 1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(a), len(b))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Greater returns true if aTag should sort ahead of bTag in descending order.
//
// Tags are compared as versions when both are version-like (after dropping a
// leading "v"); version-like tags rank ahead of the rest, and the rest fall
// back to lexical descending order.
func Greater(aTag, bTag string) bool {
	a := parseVersion(NormalizeTag(aTag))
	b := parseVersion(NormalizeTag(bTag))

	if a.ok != b.ok {
		return a.ok
	}
	if !a.ok {
		return aTag > bTag
	}

	// Missing core segments count as 0.
	n := len(a.core)
	if len(b.core) > n {
		n = len(b.core)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a.core) {
			av = a.core[i]
		}
		if i < len(b.core) {
			bv = b.core[i]
		}
		if av != bv {
			return av > bv
		}
	}

	if a.phase != b.phase {
		return a.phase > b.phase
	}
	if a.num != b.num {
		return a.num > b.num
	}
	if c := cmpPrerelease(a.pre, b.pre); c != 0 {
		return c > 0
	}
	return aTag > bTag
}

// SortDescending orders tags newest first.
func SortDescending(tags []string) {
	sort.SliceStable(tags, func(i, j int) bool {
		return Greater(tags[i], tags[j])
	})
}

// Latest returns the newest tag, or "" for an empty list.
func Latest(tags []string) string {
	var best string
	for _, t := range tags {
		if best == "" || Greater(t, best) {
			best = t
		}
	}
	return best
}
