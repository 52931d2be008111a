// Package slugs turns arbitrary text into names that are safe to use as item
// directory names.
package slugs

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// MaxLength bounds suggested names; it matches the item name limit.
const MaxLength = 255

// ComponentSlug converts s into a lower-case, dash-separated path component.
func ComponentSlug(s string) string {
	s = strings.TrimSpace(s)
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.ReplaceAll(s, " ", "-"))
	}
	return slugged
}

// Suggest proposes a legal item name derived from a rejected one. It returns
// "" when nothing usable is left, e.g. for "..".
func Suggest(name string) string {
	s := goslug.Make(strings.TrimSpace(name))
	s = strings.Trim(s, "-.")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	return s
}
