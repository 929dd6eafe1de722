package protocol

import "strings"

const invalidFilenameChars = `<>:"/\|?*`

// SanitizeFilename replaces characters that are invalid in file and folder
// names with underscores and trims surrounding whitespace. Distinct inputs
// may sanitize to the same output; collisions are not deduplicated.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(invalidFilenameChars, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
