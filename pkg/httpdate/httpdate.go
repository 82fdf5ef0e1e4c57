// Package httpdate parses and formats the HTTP-date formats used in Date,
// Expires, Last-Modified, and If-Modified-Since headers (RFC 7231 §7.1.1.1),
// plus the lenient variants real servers still emit.
package httpdate

import "time"

// preferredFormat is the format this package always writes.
const preferredFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// lenientFormats are parsed, in order, after preferredFormat fails. They
// cover RFC 850 (obsolete, two-digit year) and ANSI C asctime(), both of
// which RFC 7231 requires recipients to accept.
var lenientFormats = []string{
	preferredFormat,
	time.RFC1123,
	time.RFC1123Z,
	"Monday, 02-Jan-06 15:04:05 MST", // RFC 850
	time.ANSIC,                       // "Mon Jan _2 15:04:05 2006"
	"Mon Jan 2 15:04:05 2006",
	"Mon, 02 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05Z07:00", // RFC 3339, seen from misbehaving servers
}

// Parse attempts every known HTTP-date layout in turn and returns the first
// match in UTC. ok is false if no layout matched.
func Parse(s string) (t time.Time, ok bool) {
	for _, layout := range lenientFormats {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// Format renders t in the single preferred wire format (RFC 1123, GMT).
func Format(t time.Time) string {
	return t.UTC().Format(preferredFormat)
}
