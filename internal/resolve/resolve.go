// Package resolve checks a requested tag against the set of known tags and
// computes suggestions when it is missing.
package resolve

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"pybuilder/internal/errors"
)

// TagSet is an unordered set of tag names.
type TagSet map[string]struct{}

// NewTagSet builds a set from names, skipping empty strings.
func NewTagSet(names ...string) TagSet {
	s := make(TagSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name unless it is empty.
func (s TagSet) Add(name string) {
	if name == "" {
		return
	}
	s[name] = struct{}{}
}

// Has reports membership.
func (s TagSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in ascending byte order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Result is the outcome of a lookup.
type Result struct {
	Tag         string
	Found       bool
	Suggestions []string
}

// Err returns nil for a hit and a *NotFoundError for a miss.
func (r Result) Err() error {
	if r.Found {
		return nil
	}
	return &NotFoundError{Tag: r.Tag, Suggestions: r.Suggestions}
}

// Resolve looks tag up in known.
func Resolve(tag string, known TagSet) Result {
	if known.Has(tag) {
		return Result{Tag: tag, Found: true}
	}
	return Result{Tag: tag, Suggestions: NearTags(tag, known)}
}

// NearTags returns every known tag containing tag as a substring, sorted
// ascending. Plain containment: "v3.1" matches "v3.11.0".
func NearTags(tag string, known TagSet) []string {
	near := make([]string, 0)
	for t := range known {
		if strings.Contains(t, tag) {
			near = append(near, t)
		}
	}
	sort.Strings(near)
	return near
}

// NotFoundError reports a tag that is not in the repository.
type NotFoundError struct {
	Tag         string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find tag %q", e.Tag)
}

// Is matches errors.ErrTagNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == errors.ErrTagNotFound
}

// Report writes the user-facing message with one suggestion per line.
func (e *NotFoundError) Report(w io.Writer) {
	fmt.Fprintf(w, "Could not find tag '%s'.\n", e.Tag)
	fmt.Fprintln(w, "Maybe you meant: ")
	for _, t := range e.Suggestions {
		fmt.Fprintf(w, "\t%s\n", t)
	}
}
