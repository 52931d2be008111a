package item

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxNameLength is the longest name accepted, in bytes. Most filesystems
// reject longer path segments.
const MaxNameLength = 255

// unsafeNameChars may not appear anywhere in an item name.
const unsafeNameChars = `?*/\%!@#$^&|<>[]:;`

// CheckName reports whether name can be used as an item name, i.e. as a
// single directory name in a workspace.
func CheckName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("No name is specified")
	}
	if name != strings.TrimSpace(name) {
		return errors.New("name must not begin or end with whitespace")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("“%s” is not an allowed name", name)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name is too long (%d bytes, max %d)", len(name), MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name contains control character %U", r)
		}
		if strings.ContainsRune(unsafeNameChars, r) {
			return fmt.Errorf("‘%c’ is an unsafe character", r)
		}
	}
	return nil
}
