package decode

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Printed labels usually embed the identifier in a lookup URL. When the
// payload does not match that shape it is treated as a bare identifier.
var tagPathPattern = regexp.MustCompile(`/tag/([A-Za-z0-9_-]+)`)

// ExtractTagID pulls the tag identifier out of a raw symbol payload.
// Payloads arrive from scanner output and camera apps in inconsistent
// Unicode forms, so the value is NFC normalized before matching.
func ExtractTagID(payload string) string {
	cleaned := norm.NFC.String(strings.TrimSpace(payload))
	if m := tagPathPattern.FindStringSubmatch(cleaned); m != nil {
		return m[1]
	}
	return cleaned
}
