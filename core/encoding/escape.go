// Package encoding provides shared text escaping for XML output.
package encoding

import (
	"strings"
	"unicode/utf8"
)

// EscapeXMLText escapes the reserved characters of XML text content.
// Carriage returns are written as character references so a parser does
// not fold them into newlines. Characters XML cannot carry and bytes that
// are not valid UTF-8 are replaced with U+FFFD.
func EscapeXMLText(s string) string {
	if !needsTextEscape(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\r':
			b.WriteString("&#xD;")
		default:
			if !isXMLChar(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

func needsTextEscape(s string) bool {
	if !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		switch r {
		case '&', '<', '>', '\r':
			return true
		}
		if !isXMLChar(r) {
			return true
		}
	}
	return false
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
