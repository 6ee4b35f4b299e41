// Package slug turns free-form names into ASCII identifiers made of
// lowercase letters, digits and a separator. Accented Latin letters are
// folded to their base letter with Unicode decomposition; every other
// character becomes a separator, or with StripPunctuation only whitespace
// does and the rest is dropped.
//
//	slug.Make("José  Álvarez!")                      // "jose-alvarez"
//	slug.Make("Dr. O'Brien", slug.StripPunctuation()) // "dr-obrien"
//	slug.Make("日本", slug.Fallback("u"))             // "u"
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures the slug generation behavior.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	fallback  string
	strip     bool
}

// MaxLength truncates the slug to n characters. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator sets the separator. Default is "-".
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// Fallback is returned when nothing of the input survives. Default is "user".
func Fallback(s string) Option {
	return func(c *config) { c.fallback = s }
}

// StripPunctuation removes characters other than letters, digits and
// whitespace instead of turning them into separators.
func StripPunctuation() Option {
	return func(c *config) { c.strip = true }
}

// Letters that carry no combining mark and so survive decomposition.
var foldMap = map[rune]string{
	'ß': "ss", 'æ': "ae", 'œ': "oe", 'ø': "o", 'ł': "l", 'đ': "d", 'ð': "d", 'þ': "th", 'ı': "i",
}

// Make creates a slug from s.
func Make(s string, opts ...Option) string {
	cfg := config{separator: "-", fallback: "user"}
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	count := 0
	for _, r := range fold(s) {
		r = unicode.ToLower(r)

		var piece string
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			piece = string(r)
		case foldMap[r] != "":
			piece = foldMap[r]
		case cfg.strip && !unicode.IsSpace(r):
			continue
		default:
			pendingSep = b.Len() > 0
			continue
		}

		if pendingSep {
			piece = cfg.separator + piece
			pendingSep = false
		}
		if cfg.maxLength > 0 && count+len(piece) > cfg.maxLength {
			break
		}
		b.WriteString(piece)
		count += len(piece)
	}

	if b.Len() == 0 {
		return cfg.fallback
	}
	return b.String()
}

// fold strips combining marks: "é" decomposes to "e" + U+0301 and the mark
// is dropped.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
