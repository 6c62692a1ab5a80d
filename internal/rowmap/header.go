package rowmap

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// utf8BOM is stripped from the first header cell of BOM-prefixed exports.
const utf8BOM = "\uFEFF"

// accentFold decomposes, removes nonspacing marks, and recomposes, so that
// accented header labels still hit the ASCII dictionary keys.
var accentFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldHeader canonicalizes a column label for dictionary lookup: BOM strip,
// trim, accent folding. Case is left to the caller.
func FoldHeader(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, utf8BOM))
	folded, _, err := transform.String(accentFold, s)
	if err != nil {
		return s
	}
	return folded
}

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}
