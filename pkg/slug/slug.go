package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// translit maps Cyrillic letters to ASCII equivalents. The upstream catalog
// feed is Russian, so product and category names arrive in Cyrillic.
var translit = strings.NewReplacer(
	"а", "a", "б", "b", "в", "v", "г", "g", "д", "d", "е", "e", "ё", "e",
	"ж", "zh", "з", "z", "и", "i", "й", "y", "к", "k", "л", "l", "м", "m",
	"н", "n", "о", "o", "п", "p", "р", "r", "с", "s", "т", "t", "у", "u",
	"ф", "f", "х", "h", "ц", "ts", "ч", "ch", "ш", "sh", "щ", "sch",
	"ъ", "", "ы", "y", "ь", "", "э", "e", "ю", "yu", "я", "ya",
)

// Generate creates a URL-friendly slug from the given name.
// Cyrillic characters are transliterated to ASCII equivalents.
//
// Examples:
//   - "Платье летнее" → "plate-letnee"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = translit.Replace(slug)

	// Replace any non-alphanumeric characters with hyphens
	slug = slugRegexp.ReplaceAllString(slug, "-")

	// Trim leading and trailing hyphens
	slug = strings.Trim(slug, "-")

	// Collapse consecutive hyphens into single hyphens
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return slug
}

// FromLink derives a slug from a catalog URL by taking its last non-empty
// path segment, minus a trailing ".html" suffix. Query strings and fragments
// are dropped. Returns "" when the link has no usable segment, in which case
// the caller should fall back to Generate on the name.
func FromLink(link string) string {
	s := strings.TrimSpace(link)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ".html")
	return Generate(s)
}

// Unique returns base, or base with a numeric suffix, such that taken
// reports false for the result. Intended for callers that need a
// guaranteed-unique slug; the importer itself relies on external-id
// idempotency and does not use it.
func Unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
