package slug

import (
	"regexp"
	"strings"
)

var (
	separatorRun = regexp.MustCompile(`[\s\v\x{85}\p{Z}.,;:'"()]+`)
	specialChars = regexp.MustCompile(`[&/\\#,+()$~%.'":*?<>{}]`)
	hyphenRun    = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a section title into the identifier used for anchors and
// related-section cache keys. Distinct titles may map to the same slug.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = separatorRun.ReplaceAllString(s, "-")
	s = specialChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
