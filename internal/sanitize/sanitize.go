package sanitize

import (
	"regexp"
	"strings"
)

var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// Filename removes characters that are not allowed in file or folder names.
func Filename(name string) string {
	// Remove illegal chars
	name = illegalChars.ReplaceAllString(name, "")

	// Trim spaces & dots
	return strings.Trim(name, " .")
}
