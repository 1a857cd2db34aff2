package sparqlfn

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"

	"github.com/mimir-aip/ontostore/pkg/collation"
	"github.com/mimir-aip/ontostore/pkg/langstring"
)

// regexCache memoizes compiled regexp2 patterns keyed by "flags\x00pattern".
// It is a single process-wide cache shared by every call site, not one cache
// per SQL call site.
var (
	regexCacheMu sync.Mutex
	regexCache   = map[string]*regexp2.Regexp{}
)

func compileRegex(pattern, flags string) (*regexp2.Regexp, error) {
	key := flags + "\x00" + pattern
	regexCacheMu.Lock()
	defer regexCacheMu.Unlock()
	if re, ok := regexCache[key]; ok {
		return re, nil
	}
	opts := regexp2.None
	for _, f := range flags {
		switch f {
		case 's':
			opts |= regexp2.Singleline
		case 'm':
			opts |= regexp2.Multiline
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		default:
			return nil, fmt.Errorf("regex: unknown flag %q", f)
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("regex: %w", err)
	}
	regexCache[key] = re
	return re, nil
}

// Regex implements regex(text, pattern[, flags]) (spec §4.5).
func Regex(text, pattern, flags string) (bool, error) {
	re, err := compileRegex(pattern, flags)
	if err != nil {
		return false, err
	}
	m, err := re.MatchString(text)
	if err != nil {
		return false, fmt.Errorf("regex: %w", err)
	}
	return m, nil
}

// Replace implements replace(text, pattern, replacement[, flags]) with
// XPath 2.0 semantics (spec §4.5): "$" must be followed by a digit or
// preceded by "\"; "$N" addresses capture group N (recognising N up to the
// pattern's own capture count, so "$12" binds to group 12 when the pattern
// has at least 12 groups, else group 1 followed by the literal digit "2" —
// the Open Question resolution recorded in DESIGN.md); "\$" unescapes to a
// literal "$". An empty-string match is an error.
func Replace(text, pattern, replacement, flags string) (string, error) {
	re, err := compileRegex(pattern, flags)
	if err != nil {
		return "", err
	}
	// GetGroupNumbers always includes the implicit whole-match group 0, so
	// the real capture count is one less.
	explicitGroups := len(re.GetGroupNumbers()) - 1
	if explicitGroups < 0 {
		explicitGroups = 0
	}

	translated, err := translateReplacement(replacement, explicitGroups)
	if err != nil {
		return "", err
	}

	m, err := re.FindStringMatch(text)
	if err != nil {
		return "", fmt.Errorf("replace: %w", err)
	}
	if m != nil && m.Length == 0 {
		return "", fmt.Errorf("replace: pattern matches the empty string")
	}

	var out strings.Builder
	last := 0
	for m != nil {
		if m.Length == 0 {
			return "", fmt.Errorf("replace: pattern matches the empty string")
		}
		out.WriteString(text[last:m.Index])
		out.WriteString(expandGroups(m, translated))
		last = m.Index + m.Length
		m, err = re.FindNextMatch(m)
		if err != nil {
			return "", fmt.Errorf("replace: %w", err)
		}
	}
	out.WriteString(text[last:])
	return out.String(), nil
}

// replacementToken is a parsed piece of the replacement string: either a
// literal run or a group reference.
type replacementToken struct {
	literal string
	group   int // -1 for a literal-only token
}

func translateReplacement(replacement string, groupCount int) ([]replacementToken, error) {
	var tokens []replacementToken
	i := 0
	for i < len(replacement) {
		ch := replacement[i]
		switch {
		case ch == '\\' && i+1 < len(replacement) && replacement[i+1] == '$':
			tokens = append(tokens, replacementToken{literal: "$", group: -1})
			i += 2
		case ch == '$':
			j := i + 1
			for j < len(replacement) && replacement[j] >= '0' && replacement[j] <= '9' {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("replace: \"$\" not followed by a digit at position %d", i)
			}
			digits := replacement[i+1 : j]
			n, err := parseGroupNumber(digits, groupCount)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, replacementToken{group: n.group})
			if n.trailingLiteral != "" {
				tokens = append(tokens, replacementToken{literal: n.trailingLiteral, group: -1})
			}
			i = j
		default:
			start := i
			for i < len(replacement) && replacement[i] != '$' && replacement[i] != '\\' {
				i++
			}
			if i == start {
				tokens = append(tokens, replacementToken{literal: string(ch), group: -1})
				i++
				continue
			}
			tokens = append(tokens, replacementToken{literal: replacement[start:i], group: -1})
		}
	}
	return tokens, nil
}

type groupRef struct {
	group           int
	trailingLiteral string
}

// parseGroupNumber resolves a run of digits after "$" into a group number,
// preferring the longest prefix that names a group the pattern actually
// has, and treating any leftover digits as a literal suffix (spec §9's
// recorded N>9 precedence rule).
func parseGroupNumber(digits string, groupCount int) (groupRef, error) {
	for l := len(digits); l >= 1; l-- {
		n := 0
		for _, d := range digits[:l] {
			n = n*10 + int(d-'0')
		}
		if n >= 1 && n <= groupCount || (groupCount == 0 && l == 1) {
			return groupRef{group: n, trailingLiteral: digits[l:]}, nil
		}
	}
	return groupRef{}, fmt.Errorf("replace: %q does not name a capture group", "$"+digits)
}

func expandGroups(m *regexp2.Match, tokens []replacementToken) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.group < 0 {
			b.WriteString(t.literal)
			continue
		}
		g := m.GroupByNumber(t.group)
		if g != nil {
			b.WriteString(g.String())
		}
	}
	return b.String()
}

// LowerCase, UpperCase, CaseFold delegate to pkg/collation's Unicode-aware
// transforms.
func LowerCase(s string) string { return collation.LowerCase(s) }
func UpperCase(s string) string { return collation.UpperCase(s) }
func CaseFold(s string) string  { return collation.CaseFold(s) }

// Normalize implements normalize(s, form).
func Normalize(s, form string) (string, error) {
	return collation.Normalize(s, collation.Form(form))
}

// Unaccent implements unaccent(s): NFKD then strip combining marks.
func Unaccent(s string) string { return collation.Unaccent(s) }

// StripPunctuation implements strip_punctuation(s): remove Unicode
// category P characters.
func StripPunctuation(s string) string { return collation.StripPunctuation(s) }

// StringBefore implements string_before(s, sub).
func StringBefore(s, sub string) string {
	if sub == "" {
		return ""
	}
	idx := strings.Index(s, sub)
	if idx < 0 {
		return ""
	}
	return s[:idx]
}

// StringAfter implements string_after(s, sub).
func StringAfter(s, sub string) string {
	if sub == "" {
		return s
	}
	idx := strings.Index(s, sub)
	if idx < 0 {
		return ""
	}
	return s[idx+len(sub):]
}

// Checksum implements checksum(s, algo).
func Checksum(s, algo string) (string, error) {
	switch strings.ToLower(algo) {
	case "md5":
		sum := md5.Sum([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "sha1":
		sum := sha1.Sum([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "sha256":
		sum := sha256.Sum256([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "sha384":
		sum := sha512.Sum384([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "sha512":
		sum := sha512.Sum512([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("checksum: unsupported algorithm %q", algo)
	}
}

// Langmatches implements langmatches(langStringBlob, tag): a plain TEXT
// input carries no language data and always yields false; a BLOB input is
// decoded per the `text\0tag` layout and its tag compared exactly.
func Langmatches(v any, tag string) (bool, error) {
	blob, ok := v.([]byte)
	if !ok {
		return false, nil
	}
	return langstring.MatchesLanguage(blob, tag), nil
}

// Strlang implements strlang(s, tag): produces the `text\0tag` blob layout.
func Strlang(s, tag string) []byte {
	return langstring.Encode(s, tag)
}

// ResourceURIResolver looks up a Resource row's URI by id, used by PrintIri.
type ResourceURIResolver interface {
	URIForID(id int64) (uri string, ok bool)
}

// PrintIri implements print_iri(v): an INTEGER row id is looked up against
// the Resource table (empty URI yields the blank-node printable form); TEXT
// passes through unchanged.
func PrintIri(v any, resolver ResourceURIResolver) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		uri, ok := resolver.URIForID(val)
		if !ok || uri == "" {
			return fmt.Sprintf("urn:bnode:%d", val), nil
		}
		return uri, nil
	case int:
		return PrintIri(int64(val), resolver)
	default:
		return "", fmt.Errorf("print_iri: unsupported value %T", v)
	}
}
