// Package cachestrategy implements the RFC 7234 decision of whether a
// request can be served from a stored response, must be revalidated, or
// must go to the network untouched.
package cachestrategy

import (
	"strings"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/cachecontrol"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
	"github.com/jayo-projects/jayo-http-sub002/pkg/httpdate"
)

// StoredEntry is everything about a cached response the strategy needs to
// judge freshness and build a conditional request.
type StoredEntry struct {
	StatusCode   int
	Headers      *headers.Headers
	RequestTime  time.Time // when the original request that produced this entry was sent
	ResponseTime time.Time // when its response was fully received
}

// cacheableByDefault lists the status codes RFC 7231 §6.1 marks as
// heuristically cacheable without an explicit freshness directive.
var cacheableByDefault = map[int]bool{
	200: true, 203: true, 204: true,
	300: true, 301: true, 308: true,
	404: true, 405: true, 410: true, 414: true, 501: true,
}

// Decision is the outcome of evaluating a request against a (possibly nil)
// stored entry.
type Decision struct {
	// UseNetwork is true if the network must be contacted: either there is
	// nothing usable cached, or a conditional revalidation is required.
	UseNetwork bool
	// ServeCache is true if the stored entry can be returned without
	// contacting the network (StoredEntry is fresh and request permits it).
	ServeCache bool
	// Conditional is true if UseNetwork is also true and the request
	// should carry the headers in ConditionalHeaders to revalidate rather
	// than fetch a fresh copy unconditionally.
	Conditional        bool
	ConditionalHeaders *headers.Headers
	// Unsatisfiable is true if the request demanded only-if-cached and no
	// usable entry exists; the caller should synthesize a 504.
	Unsatisfiable bool
}

// Compute decides how to satisfy a request given now and an optional stored
// entry (nil if nothing is cached for this request).
func Compute(now time.Time, requestMethod string, requestCC cachecontrol.Directives, stored *StoredEntry) Decision {
	if requestMethod != "GET" && requestMethod != "HEAD" {
		return Decision{UseNetwork: true}
	}
	if requestCC.NoStore {
		return Decision{UseNetwork: true}
	}

	if stored == nil {
		if requestCC.OnlyIfCached {
			return Decision{Unsatisfiable: true}
		}
		return Decision{UseNetwork: true}
	}

	if !isCacheable(stored) {
		if requestCC.OnlyIfCached {
			return Decision{Unsatisfiable: true}
		}
		return Decision{UseNetwork: true}
	}

	responseCC := cachecontrol.Parse(headerValue(stored.Headers, "Cache-Control"))
	if responseCC.NoStore {
		if requestCC.OnlyIfCached {
			return Decision{Unsatisfiable: true}
		}
		return Decision{UseNetwork: true}
	}

	age := computeAge(now, stored)
	lifetime := freshnessLifetime(stored, responseCC)

	minFresh := 0
	if requestCC.MinFresh >= 0 {
		minFresh = requestCC.MinFresh
	}
	maxStaleAllowed := 0
	if requestCC.MaxStaleSet {
		maxStaleAllowed = requestCC.MaxStale
	}

	fresh := age+time.Duration(minFresh)*time.Second < lifetime+time.Duration(maxStaleAllowed)*time.Second

	forceRevalidate := requestCC.NoCache || responseCC.NoCache || responseCC.MustRevalidate

	if fresh && !forceRevalidate {
		return Decision{ServeCache: true}
	}

	cond := buildConditionalHeaders(stored)
	if cond.Len() == 0 {
		if requestCC.OnlyIfCached {
			return Decision{Unsatisfiable: true}
		}
		return Decision{UseNetwork: true}
	}
	return Decision{UseNetwork: true, Conditional: true, ConditionalHeaders: cond}
}

func isCacheable(stored *StoredEntry) bool {
	switch stored.StatusCode {
	case 302, 307:
		_, hasExpires := stored.Headers.Get("Expires")
		cc := cachecontrol.Parse(headerValue(stored.Headers, "Cache-Control"))
		return hasExpires || cc.MaxAge >= 0 || cc.SMaxAge >= 0
	}
	return cacheableByDefault[stored.StatusCode]
}

func headerValue(h *headers.Headers, name string) string {
	v, _ := h.Get(name)
	return v
}

// computeAge follows RFC 7234 §4.2.3: the server's own reported age, plus
// apparent age from the Date header, plus half the request/response round
// trip (to account for the time the response spent in flight, split evenly
// between request and response legs since neither endpoint's clock is
// trusted to line up exactly with the other's).
func computeAge(now time.Time, stored *StoredEntry) time.Duration {
	var dateAge time.Duration
	if dateVal, ok := stored.Headers.Get("Date"); ok {
		if d, ok := httpdate.Parse(dateVal); ok {
			if a := stored.ResponseTime.Sub(d); a > 0 {
				dateAge = a
			}
		}
	}
	var reportedAge time.Duration
	if ageVal, ok := stored.Headers.Get("Age"); ok {
		if secs, ok := parseNonNegativeInt(ageVal); ok {
			reportedAge = time.Duration(secs) * time.Second
		}
	}
	var transitAge time.Duration
	if !stored.RequestTime.IsZero() && !stored.ResponseTime.IsZero() {
		if rt := stored.ResponseTime.Sub(stored.RequestTime); rt > 0 {
			transitAge = rt / 2
		}
	}

	residentAge := now.Sub(stored.ResponseTime)
	if residentAge < 0 {
		residentAge = 0
	}

	return reportedAge + dateAge + transitAge + residentAge
}

// freshnessLifetime follows RFC 7234 §4.2.1: s-maxage, then max-age, then
// Expires-Date, then a heuristic tenth of the Last-Modified/Date delta.
func freshnessLifetime(stored *StoredEntry, responseCC cachecontrol.Directives) time.Duration {
	if responseCC.SMaxAge >= 0 {
		return time.Duration(responseCC.SMaxAge) * time.Second
	}
	if responseCC.MaxAge >= 0 {
		return time.Duration(responseCC.MaxAge) * time.Second
	}
	dateVal, hasDate := stored.Headers.Get("Date")
	date, dateOK := httpdate.Parse(dateVal)
	if !dateOK {
		date = stored.ResponseTime
		dateOK = true
		hasDate = true
	}
	if expiresVal, ok := stored.Headers.Get("Expires"); ok && hasDate {
		if expires, ok := httpdate.Parse(expiresVal); ok {
			if d := expires.Sub(date); d > 0 {
				return d
			}
			return 0
		}
	}
	if lastModVal, ok := stored.Headers.Get("Last-Modified"); ok && dateOK {
		if lastMod, ok := httpdate.Parse(lastModVal); ok {
			if d := date.Sub(lastMod); d > 0 {
				return d / 10
			}
		}
	}
	return 0
}

func buildConditionalHeaders(stored *StoredEntry) *headers.Headers {
	h := headers.New()
	if etag, ok := stored.Headers.Get("ETag"); ok {
		h.Add("If-None-Match", etag)
	} else if lastMod, ok := stored.Headers.Get("Last-Modified"); ok {
		h.Add("If-Modified-Since", lastMod)
	} else if dateVal, ok := stored.Headers.Get("Date"); ok {
		h.Add("If-Modified-Since", dateVal)
	}
	return h
}

func parseNonNegativeInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// hopByHopHeaders are dropped from a 304 combination, per RFC 7230 §6.1.
var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"TE":                  true,
	"Trailers":            true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// CombineHeaders merges a 304 network response's headers onto the cached
// response's headers per RFC 7234 §4.3.4: the cached entry's headers win
// for stored content headers; hop-by-hop headers and any "Warning: 1xx" are
// dropped; everything else from the network response is added/overrides.
func CombineHeaders(cached, network *headers.Headers) *headers.Headers {
	out := headers.New()
	cached.ForEach(func(name, value string) {
		if hopByHopHeaders[canonicalName(name)] {
			return
		}
		if strings.EqualFold(name, "Warning") && strings.HasPrefix(value, "1") {
			return
		}
		out.Add(name, value)
	})
	network.ForEach(func(name, value string) {
		if hopByHopHeaders[canonicalName(name)] {
			return
		}
		if strings.EqualFold(name, "Warning") && strings.HasPrefix(value, "1") {
			return
		}
		isContent := strings.EqualFold(name, "Content-Length") ||
			strings.EqualFold(name, "Content-Encoding") ||
			strings.EqualFold(name, "Content-Type")
		if isContent && out.Has(name) {
			return
		}
		if !out.Has(name) {
			out.Add(name, value)
		} else {
			out.Set(name, value)
		}
	})
	return out
}

func canonicalName(name string) string {
	for k := range hopByHopHeaders {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}
