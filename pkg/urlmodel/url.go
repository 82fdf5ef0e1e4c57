// Package urlmodel implements the HTTP-ecosystem URL model: an eight-field
// canonical URL (scheme, username, password, host, port, path segments,
// query, fragment), percent-encoding per RFC 3986, IDN/Punycode host
// canonicalization, and effective-TLD-plus-one lookup.
package urlmodel

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
)

// QueryParam is one name/value pair from the query string, in declaration
// order. Value is nil if the name appeared without "=".
type QueryParam struct {
	Name  string
	Value *string
}

// URL is the parsed, canonical form of an http:// or https:// URL.
type URL struct {
	Scheme   string // "http" or "https"
	Username string // decoded
	Password string // decoded
	Host     string // canonical: lowercase ASCII, Punycode, or canonical IP literal
	Port     int    // always set; defaults applied (80/443)

	PathSegments []string // decoded, between slashes; never includes the leading "/"
	Query        []QueryParam
	Fragment     *string // decoded, nil if absent

	canonical string
}

var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.VerifyDNSLength(true),
	idna.BidiRule(),
)

// Parse parses an absolute http(s) or ws(s) URL string into a canonical URL.
// ws/wss schemes are silently rewritten to http/https per the HTTP-ecosystem
// convention that a WebSocket URL is an HTTP URL with an upgrade in flight.
func Parse(raw string) (*URL, error) {
	scheme, rest, err := cutScheme(raw)
	if err != nil {
		return nil, err
	}
	scheme = rewriteScheme(scheme)
	if scheme != "http" && scheme != "https" {
		return nil, errors.NewParseError("url", "unsupported scheme: "+scheme)
	}
	if !strings.HasPrefix(rest, "//") {
		return nil, errors.NewParseError("url", "expected authority after scheme in "+raw)
	}
	rest = rest[2:]

	authority, pathQueryFrag := splitAuthority(rest)
	username, password, hostport, err := splitAuthorityParts(authority)
	if err != nil {
		return nil, err
	}
	host, port, err := splitHostPort(hostport, scheme)
	if err != nil {
		return nil, err
	}
	canonicalHost, err := ToCanonicalHost(host)
	if err != nil {
		return nil, err
	}

	pathPart, queryPart, fragPart := splitPathQueryFragment(pathQueryFrag)
	segments, err := parsePathSegments(pathPart)
	if err != nil {
		return nil, err
	}
	query, err := parseQuery(queryPart)
	if err != nil {
		return nil, err
	}

	u := &URL{
		Scheme:       scheme,
		Username:     username,
		Password:     password,
		Host:         canonicalHost,
		Port:         port,
		PathSegments: segments,
		Query:        query,
	}
	if fragPart != nil {
		decoded, err := percentDecode(*fragPart)
		if err != nil {
			return nil, err
		}
		u.Fragment = &decoded
	}
	u.canonical = u.buildCanonical()
	return u, nil
}

func rewriteScheme(scheme string) string {
	switch strings.ToLower(scheme) {
	case "ws":
		return "http"
	case "wss":
		return "https"
	default:
		return strings.ToLower(scheme)
	}
}

func cutScheme(raw string) (scheme, rest string, err error) {
	idx := strings.IndexByte(raw, ':')
	if idx <= 0 {
		return "", "", errors.NewParseError("url", "missing scheme in "+raw)
	}
	return raw[:idx], raw[idx+1:], nil
}

// splitAuthority splits "authority/path?query#frag" at the first '/', '?',
// or '#' that is not part of the authority.
func splitAuthority(s string) (authority, rest string) {
	idx := strings.IndexAny(s, "/?#")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

func splitAuthorityParts(authority string) (username, password, hostport string, err error) {
	at := strings.LastIndexByte(authority, '@')
	userinfo := ""
	if at >= 0 {
		userinfo = authority[:at]
		hostport = authority[at+1:]
	} else {
		hostport = authority
	}
	if userinfo != "" {
		if colon := strings.IndexByte(userinfo, ':'); colon >= 0 {
			username, err = percentDecode(userinfo[:colon])
			if err != nil {
				return
			}
			password, err = percentDecode(userinfo[colon+1:])
			if err != nil {
				return
			}
		} else {
			username, err = percentDecode(userinfo)
			if err != nil {
				return
			}
		}
	}
	if hostport == "" {
		err = errors.NewParseError("url", "empty host")
	}
	return
}

func splitHostPort(hostport, scheme string) (host string, port int, err error) {
	defaultPort := 80
	if scheme == "https" {
		defaultPort = 443
	}

	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return "", 0, errors.NewParseError("url", "unterminated IPv6 literal in "+hostport)
		}
		host = hostport[:end+1]
		remainder := hostport[end+1:]
		if remainder == "" {
			return host, defaultPort, nil
		}
		if !strings.HasPrefix(remainder, ":") {
			return "", 0, errors.NewParseError("url", "invalid characters after IPv6 literal")
		}
		port, err = parsePort(remainder[1:])
		return host, port, err
	}

	if idx := strings.LastIndexByte(hostport, ':'); idx >= 0 {
		host = hostport[:idx]
		port, err = parsePort(hostport[idx+1:])
		return host, port, err
	}
	return hostport, defaultPort, nil
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, errors.NewParseError("url", "empty port")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, errors.NewParseError("url", "invalid port: "+s)
	}
	return n, nil
}

// ToCanonicalHost canonicalizes a hostname or IP literal: IPv6 literals
// (optionally bracketed) are parsed and RFC 5952-compressed, IPv4-mapped
// IPv6 addresses fold to IPv4, and DNS names are IDNA-mapped and lowercased
// via golang.org/x/net/idna.
func ToCanonicalHost(host string) (string, error) {
	if host == "" {
		return "", errors.NewParseError("url", "empty host")
	}
	bare := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if ip := net.ParseIP(bare); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
		return "[" + ip.String() + "]", nil
	}
	if strings.ContainsAny(host, " #%/:?@[]\\") {
		return "", errors.NewParseError("url", "invalid character in host: "+host)
	}
	ascii, err := idnaProfile.ToASCII(host)
	if err != nil {
		return "", errors.NewParseError("url", "invalid IDN host "+host+": "+err.Error())
	}
	ascii = strings.ToLower(ascii)
	for _, label := range strings.Split(ascii, ".") {
		if len(label) == 0 || len(label) > 63 {
			return "", errors.NewParseError("url", "label length out of bounds in host: "+host)
		}
	}
	if len(ascii) > 253 {
		return "", errors.NewParseError("url", "host too long: "+host)
	}
	return ascii, nil
}

// EffectiveTLDPlusOne returns the registered domain (eTLD+1) for host, e.g.
// "www.google.com" -> "google.com". It returns an error if host is itself a
// public suffix (or equal to it), mirroring the "no eTLD+1 exists" case the
// original describes as returning null.
func EffectiveTLDPlusOne(host string) (string, error) {
	canonical, err := ToCanonicalHost(host)
	if err != nil {
		return "", err
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(canonical)
	if err != nil {
		return "", errors.NewParseError("url", "no effective TLD+1 for "+host+": "+err.Error())
	}
	return etld1, nil
}

func splitPathQueryFragment(s string) (path, query string, frag *string) {
	if hashIdx := strings.IndexByte(s, '#'); hashIdx >= 0 {
		f := s[hashIdx+1:]
		frag = &f
		s = s[:hashIdx]
	}
	if qIdx := strings.IndexByte(s, '?'); qIdx >= 0 {
		query = s[qIdx+1:]
		s = s[:qIdx]
	}
	path = s
	return
}

func parsePathSegments(path string) ([]string, error) {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, nil
	}
	raw := strings.Split(path, "/")
	var decoded []string
	for _, seg := range raw {
		d, err := percentDecode(seg)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, d)
	}
	return foldDotSegments(decoded), nil
}

// foldDotSegments resolves "." and ".." segments per RFC 3986 §5.2.4,
// treating segments equal to "." or ".." after decoding (including their
// percent-encoded spellings, already decoded by the caller) as relative
// navigation rather than literal names.
func foldDotSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case ".":
			// drop
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return out
}

func parseQuery(query string) ([]QueryParam, error) {
	if query == "" {
		return nil, nil
	}
	var out []QueryParam
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			name, err := percentDecode(pair[:idx])
			if err != nil {
				return nil, err
			}
			value, err := percentDecode(pair[idx+1:])
			if err != nil {
				return nil, err
			}
			out = append(out, QueryParam{Name: name, Value: &value})
		} else {
			name, err := percentDecode(pair)
			if err != nil {
				return nil, err
			}
			out = append(out, QueryParam{Name: name})
		}
	}
	return out, nil
}

// String returns the memoized canonical string form.
func (u *URL) String() string {
	return u.canonical
}

// ResetCanonical recomputes the memoized canonical string; callers that
// mutate a URL's fields directly (rather than via Resolve) must call this
// before relying on String().
func (u *URL) ResetCanonical() {
	u.canonical = u.buildCanonical()
}

func (u *URL) buildCanonical() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	if u.Username != "" || u.Password != "" {
		b.WriteString(percentEncode(u.Username, encodeUserInfo))
		if u.Password != "" {
			b.WriteByte(':')
			b.WriteString(percentEncode(u.Password, encodeUserInfo))
		}
		b.WriteByte('@')
	}
	b.WriteString(u.Host)
	defaultPort := 80
	if u.Scheme == "https" {
		defaultPort = 443
	}
	if u.Port != defaultPort {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.Port))
	}
	for _, seg := range u.PathSegments {
		b.WriteByte('/')
		b.WriteString(percentEncode(seg, encodePathSegment))
	}
	if len(u.PathSegments) == 0 {
		b.WriteByte('/')
	}
	if len(u.Query) > 0 {
		b.WriteByte('?')
		for i, p := range u.Query {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(percentEncode(p.Name, encodeQueryComponent))
			if p.Value != nil {
				b.WriteByte('=')
				b.WriteString(percentEncode(*p.Value, encodeQueryComponent))
			}
		}
	}
	if u.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(percentEncode(*u.Fragment, encodeFragment))
	}
	return b.String()
}

// IsHTTPS reports whether u uses TLS.
func (u *URL) IsHTTPS() bool {
	return u.Scheme == "https"
}

// Clone returns a deep copy of u.
func (u *URL) Clone() *URL {
	c := *u
	c.PathSegments = append([]string(nil), u.PathSegments...)
	c.Query = append([]QueryParam(nil), u.Query...)
	for i, p := range c.Query {
		if p.Value != nil {
			v := *p.Value
			c.Query[i].Value = &v
		}
	}
	if u.Fragment != nil {
		f := *u.Fragment
		c.Fragment = &f
	}
	return &c
}
