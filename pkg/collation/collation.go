// Package collation implements the Unicode-aware comparison and
// normalization primitives that sit at the bottom of the dependency order in
// spec.md §2: locale-aware compare, casefold, NFC/NFD/NFKC/NFKD, and
// diacritic stripping. Everything above this package (the ontology model,
// the SQL interface's registered collations, the SPARQL string functions)
// builds on these.
package collation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var defaultCollator = collate.New(language.Und)

// Compare is the default Unicode locale-aware collation: SQLite's "default"
// custom collation (spec §4.5).
func Compare(a, b string) int {
	return defaultCollator.CompareString(a, b)
}

// CaseFold performs Unicode case folding, used by the case_fold() SPARQL
// function. Unlike lower-casing, folding is defined to make case-insensitive
// comparison correct even for scripts where simple lower-casing isn't enough
// (e.g. German ß).
func CaseFold(s string) string {
	return cases.Fold().String(s)
}

// LowerCase / UpperCase implement the SPARQL lower_case()/upper_case()
// functions using locale-independent Unicode case mapping.
func LowerCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

func UpperCase(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Form identifies one of the four Unicode normalization forms exposed by the
// normalize() SPARQL function.
type Form string

const (
	NFC  Form = "nfc"
	NFD  Form = "nfd"
	NFKC Form = "nfkc"
	NFKD Form = "nfkd"
)

// Normalize applies the named Unicode normalization form to s.
func Normalize(s string, form Form) (string, error) {
	switch form {
	case NFC:
		return norm.NFC.String(s), nil
	case NFD:
		return norm.NFD.String(s), nil
	case NFKC:
		return norm.NFKC.String(s), nil
	case NFKD:
		return norm.NFKD.String(s), nil
	default:
		return "", fmt.Errorf("collation: unknown normalization form %q", form)
	}
}

// Unaccent normalizes s to NFKD and then strips every combining mark that
// decomposition introduced, leaving the base letters behind. This is exactly
// the set of marks NFKD(s) would add relative to s, which is the invariant
// tested in spec §8 ("Unaccent+NFKD property").
func Unaccent(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		// transform.String only errors on writer failures, which cannot
		// happen against a strings.Builder-backed sink; fall back to the
		// decomposed-but-unstripped form rather than losing the text.
		return norm.NFKD.String(s)
	}
	return out
}

// StripPunctuation removes every rune in Unicode general category P
// (connector, dash, open/close, initial/final, other punctuation).
func StripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var leadingNonAlnum = regexp.MustCompile(`^[^\p{L}\p{N}]+`)

// TitleCompare implements the "title" collation: strip any leading
// non-alphanumeric characters and then any of the configured title articles
// (matched as whole leading words, case-insensitively) before falling back
// to Compare. articles is typically split from a translated "the|a|an"
// string (spec §4.5).
func TitleCompare(a, b string, articles []string) int {
	return Compare(stripTitle(a, articles), stripTitle(b, articles))
}

func stripTitle(s string, articles []string) string {
	s = leadingNonAlnum.ReplaceAllString(s, "")
	lower := strings.ToLower(s)
	for _, article := range articles {
		article = strings.TrimSpace(article)
		if article == "" {
			continue
		}
		prefix := strings.ToLower(article)
		if len(lower) <= len(prefix) || !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := s[len(prefix):]
		next := rune(rest[0])
		if unicode.IsSpace(next) || unicode.IsPunct(next) {
			return leadingNonAlnum.ReplaceAllString(strings.TrimLeft(rest, " \t"), "")
		}
	}
	return s
}
