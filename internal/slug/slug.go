// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-friendly identifiers from titles and names.
package slug

import (
	"regexp"
	"strings"
)

var (
	// unsafe matches anything that isn't a lowercase letter, digit, hyphen or whitespace.
	unsafe = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of spaces, tabs and newlines.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid is the accepted shape of a post slug.
	valid = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Generate creates a URL-friendly slug from a post title.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = unsafe.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Key derives the stable id of a tag or category from its display name:
// lowercased, with whitespace runs replaced by a single hyphen. Punctuation
// is kept, so "CI/CD" becomes "ci/cd".
func Key(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Valid reports whether s is an acceptable post slug.
func Valid(s string) bool {
	return valid.MatchString(s)
}
