// Package namecodec translates between userland filenames and stored
// note titles. Folders are never transformed: only note titles carry
// the ".md" convention.
package namecodec

import "strings"

const suffix = ".md"

// ToStoreTitle strips a single trailing ".md" from a userland name, if
// present. Names without the suffix pass through unchanged.
func ToStoreTitle(name string) string {
	if strings.HasSuffix(name, suffix) {
		return strings.TrimSuffix(name, suffix)
	}
	return name
}

// ToUserName appends ".md" to a stored title unless it is already
// present.
func ToUserName(title string) string {
	if strings.HasSuffix(title, suffix) {
		return title
	}
	return title + suffix
}
