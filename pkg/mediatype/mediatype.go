// Package mediatype parses and builds HTTP media-type strings
// ("type/subtype; param=value; ...") as used in Content-Type headers.
package mediatype

import (
	"strings"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
)

// param is a single (name, value) parameter pair in declaration order.
type param struct {
	name  string
	value string
}

// MediaType is a parsed "type/subtype" with an ordered parameter list.
type MediaType struct {
	Type    string
	Subtype string
	params  []param
}

// Parse parses s into a MediaType. Type and subtype are lowercased;
// parameter names are matched case-insensitively via Param. Quoted-string
// parameter values are unquoted and unescaped.
func Parse(s string) (*MediaType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NewParseError("mediatype", "empty media type")
	}

	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return nil, errors.NewParseError("mediatype", "missing '/' in "+s)
	}
	semi := strings.IndexByte(s, ';')
	if semi >= 0 && semi < slash {
		return nil, errors.NewParseError("mediatype", "missing subtype in "+s)
	}

	typePart := s[:slash]
	rest := s[slash+1:]

	var subtypePart string
	var paramsStr string
	if idx := strings.IndexByte(rest, ';'); idx >= 0 {
		subtypePart = rest[:idx]
		paramsStr = rest[idx+1:]
	} else {
		subtypePart = rest
	}

	typePart = strings.TrimSpace(typePart)
	subtypePart = strings.TrimSpace(subtypePart)
	if typePart == "" || subtypePart == "" {
		return nil, errors.NewParseError("mediatype", "empty type or subtype in "+s)
	}
	if !isToken(typePart) || !isToken(subtypePart) {
		return nil, errors.NewParseError("mediatype", "invalid token in "+s)
	}

	mt := &MediaType{
		Type:    strings.ToLower(typePart),
		Subtype: strings.ToLower(subtypePart),
	}

	params, err := parseParams(paramsStr)
	if err != nil {
		return nil, err
	}
	mt.params = params
	return mt, nil
}

func parseParams(s string) ([]param, error) {
	var out []param
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			return nil, errors.NewParseError("mediatype", "malformed parameter: "+s)
		}
		name := strings.TrimSpace(s[:eq])
		s = s[eq+1:]

		var value string
		var err error
		if len(s) > 0 && s[0] == '"' {
			value, s, err = parseQuoted(s)
			if err != nil {
				return nil, err
			}
		} else if semi := strings.IndexByte(s, ';'); semi < 0 {
			value = strings.TrimSpace(s)
			s = ""
		} else {
			value = strings.TrimSpace(s[:semi])
			s = s[semi:]
		}
		out = append(out, param{name: strings.ToLower(name), value: value})

		s = strings.TrimLeft(s, " \t")
		if strings.HasPrefix(s, ";") {
			s = s[1:]
		} else if s != "" {
			return nil, errors.NewParseError("mediatype", "malformed parameter separator: "+s)
		}
	}
	return out, nil
}

// parseQuoted parses a quoted-string starting at s[0]=='"' and returns the
// unescaped value and the remainder of s (from just past the closing quote,
// not yet stripped of a following ';').
func parseQuoted(s string) (value, rest string, err error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			return b.String(), s[i+1:], nil
		}
		b.WriteByte(c)
		i++
	}
	return "", "", errors.NewParseError("mediatype", "unterminated quoted string in "+s)
}

// Param returns a parameter's value by case-insensitive name.
func (m *MediaType) Param(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, p := range m.params {
		if p.name == name {
			return p.value, true
		}
	}
	return "", false
}

// Charset is a convenience accessor for the "charset" parameter.
func (m *MediaType) Charset(fallback string) string {
	if v, ok := m.Param("charset"); ok {
		return v
	}
	return fallback
}

// String renders the canonical form "type/subtype; name=value; ...",
// quoting parameter values that contain token-breaking characters.
func (m *MediaType) String() string {
	var b strings.Builder
	b.WriteString(m.Type)
	b.WriteByte('/')
	b.WriteString(m.Subtype)
	for _, p := range m.params {
		b.WriteString("; ")
		b.WriteString(p.name)
		b.WriteByte('=')
		if isToken(p.value) {
			b.WriteString(p.value)
		} else {
			b.WriteByte('"')
			b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(p.value))
			b.WriteByte('"')
		}
	}
	return b.String()
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			continue
		}
		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
			continue
		}
		return false
	}
	return true
}
