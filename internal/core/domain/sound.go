package domain

import (
	"strings"
	"unicode/utf8"
)

// SanitizeReplacement substitutes every rune SanitizeName cannot keep.
const SanitizeReplacement = '_'

// SanitizeName maps a stored sound name to a filesystem safe directory name by
// replacing non-ASCII runes and path separators. The mapping is lossy, distinct
// names can share a result.
func SanitizeName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))

	for _, r := range name {
		if r >= utf8.RuneSelf || r == '/' || r == '\\' {
			sb.WriteRune(SanitizeReplacement)
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

// IsSafeName reports whether name can be used as a single directory name as-is:
// non-empty, unchanged by SanitizeName and not a relative path element.
func IsSafeName(name string) bool {
	return name != "" && name != "." && name != ".." && SanitizeName(name) == name
}
