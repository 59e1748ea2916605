// Package slug derives and validates the URL slugs of events and categories.
package slug

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmpty is returned when a slug is empty.
	ErrEmpty = errors.New("slug must not be empty")

	// ErrFormat is returned when a slug does not match the required pattern.
	ErrFormat = errors.New("slug must contain only lowercase alphanumeric characters and single hyphens, and must not start or end with a hyphen")

	// pattern matches runs of lowercase alphanumerics joined by single hyphens.
	pattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	stripRe = regexp.MustCompile(`[^a-z0-9-]`)
)

// Make lowercases name, turns whitespace and underscores into hyphens,
// strips anything outside [a-z0-9-] and collapses repeated hyphens. The
// result is either empty or passes Validate.
func Make(name string) string {
	s := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = stripRe.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// Validate checks that s is a well-formed slug. It does NOT check
// uniqueness; that is handled at the store layer.
func Validate(s string) error {
	if s == "" {
		return ErrEmpty
	}
	if !pattern.MatchString(s) {
		return ErrFormat
	}
	return nil
}
