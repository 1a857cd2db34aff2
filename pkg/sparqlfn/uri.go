package sparqlfn

import (
	"fmt"
	"path"
	"strings"
)

// StringFromFilename implements string_from_filename(path) (spec §4.5):
// basename, strip the last extension, replace '.' and '_' with spaces.
func StringFromFilename(p string) string {
	base := path.Base(p)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.ReplaceAll(base, ".", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return base
}

// hasURIScheme reports whether s begins with a "xxx://"-shaped scheme, or
// contains "://" at all (spec §4.5's loose acceptance criterion).
func hasURIScheme(s string) bool {
	return strings.Contains(s, "://")
}

func schemeAndPath(s string) (scheme, rest string, ok bool) {
	idx := strings.Index(s, "://")
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], strings.TrimSuffix(s[idx+3:], "/"), true
}

// UriIsParent implements uri_is_parent(parent, uri): true iff uri is a
// direct child of parent under a scheme-bearing URI.
func UriIsParent(parent, uri string) bool {
	if !hasURIScheme(parent) || !hasURIScheme(uri) {
		return false
	}
	pScheme, pPath, ok := schemeAndPath(parent)
	if !ok {
		return false
	}
	uScheme, uPath, ok := schemeAndPath(uri)
	if !ok || uScheme != pScheme {
		return false
	}
	if !strings.HasPrefix(uPath, pPath+"/") {
		return false
	}
	remainder := strings.TrimPrefix(uPath, pPath+"/")
	return remainder != "" && !strings.Contains(remainder, "/")
}

// UriIsDescendant implements uri_is_descendant(p1, ..., pN, uri): true iff
// any of the parent candidates is a strict ancestor of uri. uri_is_parent
// implies uri_is_descendant, and uri_is_descendant(u, u) is always false
// (spec §8 invariant).
func UriIsDescendant(uri string, parents ...string) bool {
	if !hasURIScheme(uri) {
		return false
	}
	uScheme, uPath, ok := schemeAndPath(uri)
	if !ok {
		return false
	}
	for _, parent := range parents {
		if parent == uri {
			continue
		}
		pScheme, pPath, ok := schemeAndPath(parent)
		if !ok || pScheme != uScheme {
			continue
		}
		if strings.HasPrefix(uPath, pPath+"/") {
			return true
		}
	}
	return false
}

// pathReserved are the RFC 3986 path-reserved characters uri() leaves
// unescaped, unlike encode_for_uri's full percent-encoding.
const pathReserved = "/:@!$&'()*+,;="

// EncodeForURI percent-encodes every character outside RFC 3986 unreserved
// (spec §4.5). This is generic percent-encoding, not
// application/x-www-form-urlencoded: space becomes "%20", never "+".
func EncodeForURI(s string) string {
	return percentEncode(s, "")
}

// URI percent-encodes s but preserves the path-reserved character set,
// suitable for building a path segment rather than a query component.
func URI(s string) string {
	return percentEncode(s, pathReserved)
}

// percentEncode RFC 3986 percent-encodes every byte of s that is neither
// unreserved nor in extraUnescaped, operating byte-wise so multi-byte UTF-8
// sequences are escaped one octet at a time.
func percentEncode(s string, extraUnescaped string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedByte(c) || strings.IndexByte(extraUnescaped, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreservedByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
