package folio

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify converts a title to a URL-safe slug: lower-case, each maximal run
// of whitespace collapsed to a single hyphen, then everything outside
// [a-z0-9-] stripped. Literal hyphens survive; punctuation not adjacent to
// whitespace is simply dropped ("Don't Panic" -> "dont-panic",
// "Hello,World" -> "helloworld"). Pure and deterministic. An empty or
// all-symbol title legitimately reduces to "" — callers that need a route
// key must treat that as an error.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case r == '-', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// uniqueSlug derives a slug from title and disambiguates collisions with a
// numeric suffix (-2, -3, ...) until exists reports a free slug. The chosen
// slug is assigned once at creation and never rewritten afterwards.
func uniqueSlug(title string, exists func(slug string) (bool, error)) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", ErrEmptySlug
	}
	candidate := base
	for n := 2; ; n++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
