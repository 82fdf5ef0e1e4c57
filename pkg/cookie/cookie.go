// Package cookie parses and serializes HTTP cookies per RFC 6265, and
// defines the minimal jar interface a caller can implement for storage.
// This package provides no persistent jar implementation; that is left to
// the caller, same as the upstream cookie interface it is modeled on.
package cookie

import (
	"strings"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/httpdate"
	"github.com/jayo-projects/jayo-http-sub002/pkg/urlmodel"
)

func parseErr(message string) error {
	return errors.NewParseError("cookie", message)
}

// SameSite is the Set-Cookie SameSite attribute.
type SameSite string

const (
	SameSiteUnspecified SameSite = ""
	SameSiteStrict      SameSite = "Strict"
	SameSiteLax         SameSite = "Lax"
	SameSiteNone        SameSite = "None"
)

// Cookie is a single parsed cookie.
type Cookie struct {
	Name   string
	Value  string
	Expiry time.Time // Min() sentinel means already expired; Max() means session-capped

	Domain     string // canonical
	Path       string
	Secure     bool
	HTTPOnly   bool
	Persistent bool
	HostOnly   bool
	SameSite   SameSite
}

// Min returns the sentinel expiry meaning "already expired".
func Min() time.Time { return time.Unix(0, 0).UTC() }

// Max returns the sentinel expiry meaning "no declared expiry" (session
// cookie capped at a far-future instant so expiry comparisons stay total).
func Max() time.Time { return time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC) }

// Parse parses a single Set-Cookie header value as observed for requestURL.
// It applies RFC 6265 §5.2/§5.3: Max-Age overrides Expires; Domain absence
// makes the cookie host-only; Path defaults to the request URL's path up to
// (not including) the last "/".
func Parse(setCookieValue string, requestURL *urlmodel.URL) (*Cookie, error) {
	parts := strings.Split(setCookieValue, ";")
	if len(parts) == 0 {
		return nil, errNoCookie(setCookieValue)
	}
	nameValue := strings.TrimSpace(parts[0])
	eq := strings.IndexByte(nameValue, '=')
	if eq < 0 {
		return nil, errNoCookie(setCookieValue)
	}
	name := strings.TrimSpace(nameValue[:eq])
	value := strings.TrimSpace(nameValue[eq+1:])
	if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) && len(value) >= 2 {
		value = value[1 : len(value)-1]
	}
	if name == "" {
		return nil, errNoCookie(setCookieValue)
	}

	c := &Cookie{
		Name:       name,
		Value:      value,
		Expiry:     Max(),
		Path:       defaultPath(requestURL),
		Domain:     requestURL.Host,
		HostOnly:   true,
		Persistent: false,
	}

	var maxAgeSet bool
	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		var attrName, attrValue string
		if idx := strings.IndexByte(attr, '='); idx >= 0 {
			attrName = strings.TrimSpace(attr[:idx])
			attrValue = strings.TrimSpace(attr[idx+1:])
		} else {
			attrName = attr
		}
		switch strings.ToLower(attrName) {
		case "expires":
			if !maxAgeSet {
				if t, ok := httpdate.Parse(attrValue); ok {
					c.Expiry = t
					c.Persistent = true
				}
			}
		case "max-age":
			if seconds, ok := parseMaxAge(attrValue); ok {
				maxAgeSet = true
				c.Persistent = true
				if seconds <= 0 {
					c.Expiry = Min()
				} else {
					c.Expiry = time.Now().UTC().Add(time.Duration(seconds) * time.Second)
				}
			}
		case "domain":
			if attrValue != "" {
				d := strings.TrimPrefix(strings.ToLower(attrValue), ".")
				canon, err := urlmodel.ToCanonicalHost(d)
				if err == nil {
					c.Domain = canon
					c.HostOnly = false
				}
			}
		case "path":
			if strings.HasPrefix(attrValue, "/") {
				c.Path = attrValue
			}
		case "secure":
			c.Secure = true
		case "httponly":
			c.HTTPOnly = true
		case "samesite":
			c.SameSite = parseSameSite(attrValue)
		}
	}

	if !DomainMatch(c.Domain, requestURL.Host) && c.Domain != requestURL.Host {
		// Domain attribute didn't match the setting host at all: RFC 6265
		// §5.3 step 10 says reject; here we fall back to host-only instead
		// of dropping the cookie, since callers rarely want a silent loss.
		c.Domain = requestURL.Host
		c.HostOnly = true
	}

	if rejectPublicSuffix(c.Domain, requestURL.Host, c.HostOnly) {
		return nil, errPublicSuffixDomain(c.Domain)
	}

	return c, nil
}

func defaultPath(u *urlmodel.URL) string {
	if len(u.PathSegments) <= 1 {
		return "/"
	}
	segs := u.PathSegments[:len(u.PathSegments)-1]
	return "/" + strings.Join(segs, "/")
}

func parseMaxAge(s string) (int64, bool) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

func parseSameSite(v string) SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return SameSiteStrict
	case "lax":
		return SameSiteLax
	case "none":
		return SameSiteNone
	default:
		return SameSiteUnspecified
	}
}

// DomainMatch reports whether cookieDomain (host-only or a Domain
// attribute) applies to requestHost per RFC 6265 §5.1.3: exact match, or
// requestHost is a subdomain of cookieDomain.
func DomainMatch(cookieDomain, requestHost string) bool {
	if cookieDomain == requestHost {
		return true
	}
	return strings.HasSuffix(requestHost, "."+cookieDomain)
}

// PathMatch reports whether cookiePath applies to requestPath per RFC 6265
// §5.1.4.
func PathMatch(cookiePath, requestPath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if strings.HasPrefix(requestPath, cookiePath) {
		if strings.HasSuffix(cookiePath, "/") {
			return true
		}
		return len(requestPath) > len(cookiePath) && requestPath[len(cookiePath)] == '/'
	}
	return false
}

// rejectPublicSuffix blocks a non-host-only cookie whose Domain attribute
// is itself a registrable public suffix (the supercookie defense), unless
// the Domain equals the full request host (e.g. a site legitimately running
// directly on a public suffix like "github.io").
func rejectPublicSuffix(domain, requestHost string, hostOnly bool) bool {
	if hostOnly || domain == requestHost {
		return false
	}
	if _, err := urlmodel.EffectiveTLDPlusOne(domain); err != nil {
		// domain has no eTLD+1, i.e. it IS a public suffix itself.
		return true
	}
	return false
}

// String serializes c in the Cookie request-header form "name=value".
func (c *Cookie) String() string {
	return c.Name + "=" + c.Value
}

// Expired reports whether c has passed its expiry relative to now.
func (c *Cookie) Expired(now time.Time) bool {
	return c.Persistent && !now.Before(c.Expiry)
}

// Jar is the minimal cookie storage interface: save cookies received for a
// URL, and load the cookies applicable to a URL. Implementations decide
// persistence, matching, and eviction; this package ships none.
type Jar interface {
	Save(url *urlmodel.URL, cookies []*Cookie)
	Load(url *urlmodel.URL) []*Cookie
}

func errNoCookie(raw string) error {
	return parseErr("malformed Set-Cookie value: " + raw)
}

func errPublicSuffixDomain(domain string) error {
	return parseErr("cookie Domain is a public suffix: " + domain)
}
