package encoding

import (
	"strings"
)

// URLEncodeMode selects which characters URL encoding escapes.
type URLEncodeMode int

const (
	// URLEncodeReadable escapes only whitespace and unsafe punctuation.
	// Multibyte characters stay readable, and the mode can be applied to
	// a URL that is already encoded without double-escaping its percent
	// sequences on decode.
	URLEncodeReadable URLEncodeMode = iota + 1

	// URLEncodePath escapes everything outside the unreserved set except
	// the path separator "/".
	URLEncodePath

	// URLEncodeData escapes everything outside the unreserved set.
	URLEncodeData
)

func isUnreservedByte(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

// isUnsafeByte reports whether c must be escaped even in readable URLs.
func isUnsafeByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '"', '<', '>', '#', '%', '\\', '^', '[', ']', '{', '}', '|':
		return true
	}
	return false
}

const hexDigits = "0123456789ABCDEF"

// EncodeURL percent-encodes url according to mode. Escaping works on the
// UTF-8 bytes of the string; in readable mode multibyte characters are
// left as they are.
func EncodeURL(url string, mode URLEncodeMode) string {
	var b strings.Builder
	for i := 0; i < len(url); i++ {
		c := url[i]
		var escape bool
		switch mode {
		case URLEncodeReadable:
			escape = isUnsafeByte(c)
		case URLEncodePath:
			escape = !isUnreservedByte(c) && c != '/'
		default:
			escape = !isUnreservedByte(c)
		}
		if escape {
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xF])
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// DecodeURL reverses EncodeURL. In readable mode only the escapes of
// unsafe characters are decoded, so percent sequences that belong to the
// URL itself survive a readable round trip. Malformed escapes pass
// through unchanged.
func DecodeURL(url string, mode URLEncodeMode) string {
	var b strings.Builder
	for i := 0; i < len(url); i++ {
		if url[i] == '%' && i+2 < len(url) {
			hi, ok1 := unhex(url[i+1])
			lo, ok2 := unhex(url[i+2])
			if ok1 && ok2 {
				c := hi<<4 | lo
				if mode != URLEncodeReadable || isUnsafeByte(c) {
					b.WriteByte(c)
					i += 2
					continue
				}
			}
		}
		b.WriteByte(url[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
