// Package headers provides an ordered, case-insensitive HTTP header multimap
// and a lenient line-based builder for it.
package headers

import (
	"strings"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
)

// entry is a single name/value pair, stored in insertion order.
type entry struct {
	name  string // as supplied by the caller, not canonicalized
	value string
}

// Headers is an ordered multimap of header name/value pairs. Name lookups
// are ASCII case-insensitive; duplicate names are preserved in the order
// they were added, matching RFC 7230's header-field semantics.
type Headers struct {
	entries []entry
}

// New returns an empty Headers.
func New() *Headers {
	return &Headers{}
}

// Add appends a (name, value) pair, preserving any existing entries for name.
func (h *Headers) Add(name, value string) *Headers {
	h.entries = append(h.entries, entry{name: name, value: value})
	return h
}

// Set removes any existing entries for name and adds a single new one.
func (h *Headers) Set(name, value string) *Headers {
	h.removeAll(name)
	return h.Add(name, value)
}

// Get returns the first value for name, and whether it was present.
func (h *Headers) Get(name string) (string, bool) {
	for _, e := range h.entries {
		if strings.EqualFold(e.name, name) {
			return e.value, true
		}
	}
	return "", false
}

// Values returns all values for name, in insertion order. Returns nil if
// name is absent.
func (h *Headers) Values(name string) []string {
	var out []string
	for _, e := range h.entries {
		if strings.EqualFold(e.name, name) {
			out = append(out, e.value)
		}
	}
	return out
}

// Has reports whether name is present, regardless of value.
func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Remove deletes all entries for name, returning the receiver for chaining.
func (h *Headers) Remove(name string) *Headers {
	h.removeAll(name)
	return h
}

func (h *Headers) removeAll(name string) {
	out := h.entries[:0]
	for _, e := range h.entries {
		if !strings.EqualFold(e.name, name) {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Len returns the number of name/value pairs.
func (h *Headers) Len() int {
	return len(h.entries)
}

// Name returns the name at index i, in insertion order.
func (h *Headers) Name(i int) string {
	return h.entries[i].name
}

// Value returns the value at index i, in insertion order.
func (h *Headers) Value(i int) string {
	return h.entries[i].value
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	c := &Headers{entries: make([]entry, len(h.entries))}
	copy(c.entries, h.entries)
	return c
}

// ForEach calls fn for every (name, value) pair in insertion order.
func (h *Headers) ForEach(fn func(name, value string)) {
	for _, e := range h.entries {
		fn(e.name, e.value)
	}
}

// Builder accumulates header lines leniently, tolerating the raw line forms
// that appear while parsing wire bytes (continuation lines, stray colons),
// then yields a Headers.
type Builder struct {
	h       *Headers
	lastIdx int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{h: New(), lastIdx: -1}
}

// AddLine parses a single "name: value" line (without the trailing CRLF) and
// appends it. A line beginning with space or tab is treated as a
// continuation of the previous header's value (RFC 7230 §3.2.4, obsolete
// but still seen in the wild). A line with no colon is ignored.
func (b *Builder) AddLine(line string) {
	if line == "" {
		return
	}
	if line[0] == ' ' || line[0] == '\t' {
		if b.lastIdx >= 0 {
			b.h.entries[b.lastIdx].value += " " + strings.TrimSpace(line)
		}
		return
	}
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return
	}
	name := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	if name == "" {
		return
	}
	b.h.Add(name, value)
	b.lastIdx = len(b.h.entries) - 1
}

// Add appends an already-split (name, value) pair directly.
func (b *Builder) Add(name, value string) *Builder {
	b.h.Add(name, value)
	b.lastIdx = len(b.h.entries) - 1
	return b
}

// Build returns the accumulated Headers.
func (b *Builder) Build() *Headers {
	return b.h
}

// ValidateName reports a parse error if name contains bytes forbidden in an
// HTTP field name (RFC 7230 token characters only).
func ValidateName(name string) error {
	if name == "" {
		return errors.NewParseError("header", "empty header name")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isTokenChar(c) {
			return errors.NewParseError("header", "invalid header name: "+name)
		}
	}
	return nil
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
