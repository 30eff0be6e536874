package pipeline

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/sells-group/newsletter-cli/internal/model"
)

var keyFolder = cases.Fold()

// IdentityKey derives the stable key used to match records referring to the
// same newsletter across sources. The normalized link's host+path is
// preferred since the link is the most source-stable unique identifier.
// Without a link it falls back to a folded name, combined with the publisher
// when present to reduce accidental collisions between unrelated newsletters
// sharing a generic name. The fallback tier is a heuristic: two distinct
// newsletters with identical fallback keys will be merged.
func IdentityKey(f model.Fields) string {
	if f.Link != "" {
		if key := linkKey(f.Link); key != "" {
			return key
		}
	}
	if f.Name == "" {
		return ""
	}
	key := foldAlphanumeric(f.Name)
	if f.Publisher != "" {
		key += "|" + foldAlphanumeric(f.Publisher)
	}
	return key
}

// linkKey reduces a normalized link to case-folded host+path with the
// leading www. and trailing slash stripped.
func linkKey(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(keyFolder.String(u.Host), "www.")
	path := strings.TrimSuffix(keyFolder.String(u.Path), "/")
	return host + path
}

// foldAlphanumeric case-folds s and strips everything that is not a letter
// or digit.
func foldAlphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range keyFolder.String(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
