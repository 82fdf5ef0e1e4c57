// Package cacheinterceptor wires cachestrategy's decision logic to an
// injectable Store, serving responses from cache, revalidating with
// conditional requests, and updating the store on 304s (RFC 7234 §4).
package cacheinterceptor

import (
	"io"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/buffer"
	"github.com/jayo-projects/jayo-http-sub002/pkg/cachecontrol"
	"github.com/jayo-projects/jayo-http-sub002/pkg/cachestrategy"
	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

// Entry is a complete cached response: status, headers, and a body source
// the Store owns the lifetime of.
type Entry struct {
	StatusCode   int
	Headers      *headers.Headers
	Body         *buffer.Buffer
	RequestTime  time.Time
	ResponseTime time.Time
}

// Store persists and retrieves Entries by cache key. Implementations decide
// eviction policy; Get returning (nil, false) is always a valid "not cached".
type Store interface {
	Get(key string) (*Entry, bool)
	Put(key string, entry *Entry) error
	Delete(key string) error
}

// NetworkFunc performs the actual request/response round trip. It receives
// the headers to send (with any conditional headers already merged in by the
// interceptor) and returns the raw response.
type NetworkFunc func(requestHeaders *headers.Headers) (statusCode int, responseHeaders *headers.Headers, body io.ReadCloser, err error)

// Interceptor mediates requests through a Store using cachestrategy.
type Interceptor struct {
	store Store
	now   func() time.Time
}

// New returns an Interceptor backed by store. If store is nil, every request
// goes directly to the network.
func New(store Store) *Interceptor {
	return &Interceptor{store: store, now: time.Now}
}

// Result is what a caller gets back: either a cached body or a freshly
// fetched one, plus whether it came from cache.
type Result struct {
	StatusCode int
	Headers    *headers.Headers
	Body       io.ReadCloser
	FromCache  bool
}

// Fetch resolves one GET/HEAD request against the cache, calling network
// only when the strategy requires it, and updates the store afterward.
func (ic *Interceptor) Fetch(key, method string, requestHeaders *headers.Headers, network NetworkFunc) (*Result, error) {
	if ic.store == nil {
		return ic.fetchNetwork(key, requestHeaders, network, nil)
	}

	requestCC := cachecontrol.Parse(headerValue(requestHeaders, "Cache-Control"))

	stored, hasStored := ic.store.Get(key)
	var se *cachestrategy.StoredEntry
	if hasStored {
		se = &cachestrategy.StoredEntry{
			StatusCode:   stored.StatusCode,
			Headers:      stored.Headers,
			RequestTime:  stored.RequestTime,
			ResponseTime: stored.ResponseTime,
		}
	}

	decision := cachestrategy.Compute(ic.now(), method, requestCC, se)

	if decision.Unsatisfiable {
		return nil, errors.NewValidationError("only-if-cached: no cached response available")
	}

	if decision.ServeCache {
		r, err := stored.Body.Reader()
		if err != nil {
			return nil, err
		}
		return &Result{StatusCode: stored.StatusCode, Headers: stored.Headers, Body: r, FromCache: true}, nil
	}

	outgoing := requestHeaders.Clone()
	if decision.Conditional {
		decision.ConditionalHeaders.ForEach(func(name, value string) {
			outgoing.Set(name, value)
		})
	}

	return ic.fetchNetwork(key, outgoing, network, stored)
}

func (ic *Interceptor) fetchNetwork(key string, requestHeaders *headers.Headers, network NetworkFunc, stored *Entry) (*Result, error) {
	requestTime := ic.now()
	status, respHeaders, body, err := network(requestHeaders)
	if err != nil {
		return nil, err
	}
	responseTime := ic.now()

	if status == 304 && stored != nil {
		io.Copy(io.Discard, body)
		body.Close()

		combined := cachestrategy.CombineHeaders(stored.Headers, respHeaders)
		updated := &Entry{
			StatusCode:   stored.StatusCode,
			Headers:      combined,
			Body:         stored.Body,
			RequestTime:  requestTime,
			ResponseTime: responseTime,
		}
		if ic.store != nil {
			ic.store.Put(key, updated)
		}
		r, err := stored.Body.Reader()
		if err != nil {
			return nil, err
		}
		return &Result{StatusCode: stored.StatusCode, Headers: combined, Body: r, FromCache: true}, nil
	}

	if ic.store == nil || !isStorable(status, respHeaders) {
		return &Result{StatusCode: status, Headers: respHeaders, Body: body, FromCache: false}, nil
	}

	buf := buffer.New(0)
	if _, err := io.Copy(buf, body); err != nil {
		body.Close()
		return nil, errors.NewIOError("buffering response for cache store", err)
	}
	body.Close()

	entry := &Entry{
		StatusCode:   status,
		Headers:      respHeaders,
		Body:         buf,
		RequestTime:  requestTime,
		ResponseTime: responseTime,
	}
	ic.store.Put(key, entry)

	r, err := buf.Reader()
	if err != nil {
		return nil, err
	}
	return &Result{StatusCode: status, Headers: respHeaders, Body: r, FromCache: false}, nil
}

func isStorable(status int, h *headers.Headers) bool {
	cc := cachecontrol.Parse(headerValue(h, "Cache-Control"))
	return !cc.NoStore && !cc.Private
}

func headerValue(h *headers.Headers, name string) string {
	v, _ := h.Get(name)
	return v
}

// MemoryStore is a simple in-process Store backed by a map, suitable for a
// single client's lifetime. It applies no eviction beyond Delete.
type MemoryStore struct {
	entries map[string]*Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (m *MemoryStore) Get(key string) (*Entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

func (m *MemoryStore) Put(key string, entry *Entry) error {
	m.entries[key] = entry
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	delete(m.entries, key)
	return nil
}
