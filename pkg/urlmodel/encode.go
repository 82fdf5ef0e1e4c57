package urlmodel

import (
	"strings"
)

// encodeSet is a 128-entry table of characters that must NOT be
// percent-encoded for a given URL component.
type encodeSet [128]bool

func newEncodeSet(allowed string) encodeSet {
	var s encodeSet
	for i := 0; i < 128; i++ {
		c := byte(i)
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			s[i] = true
		}
	}
	for i := 0; i < len(allowed); i++ {
		s[allowed[i]] = true
	}
	return s
}

var (
	// encodeUserInfo allows RFC 3986 "unreserved" plus sub-delims.
	encodeUserInfo = newEncodeSet("-._~!$&'()*+,;=")
	// encodePathSegment additionally allows ':' and '@' (legal within a
	// path segment) but not '/'.
	encodePathSegment = newEncodeSet("-._~!$&'()*+,;=:@")
	// encodeQueryComponent is the path set without '&' and '=' (so literal
	// occurrences in names/values are always encoded), plus '/' and '?'.
	encodeQueryComponent = newEncodeSet("-._~!$'()*+,;:@/?")
	// encodeFragment allows everything query does, plus '=' and '&' since
	// a fragment has no further internal delimiter syntax.
	encodeFragment = newEncodeSet("-._~!$&'()*+,;=:@/?")
)

func percentEncode(s string, allowed encodeSet) string {
	var needsEncoding bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 128 || !allowed[c] {
			needsEncoding = true
			break
		}
	}
	if !needsEncoding {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 128 && allowed[c] {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(hexDigit(c >> 4))
			b.WriteByte(hexDigit(c & 0x0f))
		}
	}
	return b.String()
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + n - 10
}

// percentDecode decodes %XX escapes. It preserves any byte sequence that is
// not a well-formed escape, rather than failing, since many real-world URLs
// contain a stray '%' that is not part of an escape.
func percentDecode(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' {
			if i+2 < len(s) {
				hi, okHi := unhex(s[i+1])
				lo, okLo := unhex(s[i+2])
				if okHi && okLo {
					b.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
		}
		b.WriteByte(c)
	}
	return b.String(), nil
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
