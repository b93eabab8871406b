package textutil

import "strings"

// unsafeReplacer maps characters that are unsafe in file names to safe
// substitutes. Path separators and drive markers become dashes; shell
// metacharacters are dropped.
var unsafeReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes an externally supplied file name safe to use as
// a single path segment. Surrounding whitespace is trimmed; the result
// may be empty when nothing safe remains.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(unsafeReplacer.Replace(name))
}
