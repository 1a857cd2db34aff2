// Package langstring implements the on-disk encoding of RDF language-tagged
// strings: a text value paired with an IETF language tag, persisted as a
// single blob laid out "text\0langTag" (see spec §3, §6).
package langstring

import (
	"bytes"
	"fmt"
)

// Encode lays out text and lang as a single blob with an embedded NUL
// separator. The blob length covers both halves, so lang may itself be
// empty without becoming ambiguous with "no language".
func Encode(text, lang string) []byte {
	buf := make([]byte, 0, len(text)+1+len(lang))
	buf = append(buf, text...)
	buf = append(buf, 0)
	buf = append(buf, lang...)
	return buf
}

// Decode splits a langString blob back into text and lang. It fails if blob
// does not contain the separating NUL byte, since that means the value was
// never produced by Encode (or came from a plain TEXT column rather than a
// BLOB one).
func Decode(blob []byte) (text, lang string, err error) {
	idx := bytes.IndexByte(blob, 0)
	if idx < 0 {
		return "", "", fmt.Errorf("langstring: missing NUL separator")
	}
	return string(blob[:idx]), string(blob[idx+1:]), nil
}

// MatchesLanguage reports whether blob decodes successfully and its language
// tag is exactly tag (case-sensitive, per spec §4.5 langmatches on a BLOB
// input). A plain TEXT value passed as blob (i.e. carrying no separator) is
// defined by spec §4.5 to have no language data, so it never matches.
func MatchesLanguage(blob []byte, tag string) bool {
	_, lang, err := Decode(blob)
	if err != nil {
		return false
	}
	return lang == tag
}
