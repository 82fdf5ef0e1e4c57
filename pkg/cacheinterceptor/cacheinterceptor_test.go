package cacheinterceptor

import (
	"io"
	"strings"
	"testing"

	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

func TestFetchMissStoresResponse(t *testing.T) {
	store := NewMemoryStore()
	ic := New(store)
	calls := 0

	network := func(h *headers.Headers) (int, *headers.Headers, io.ReadCloser, error) {
		calls++
		respHeaders := headers.New().Add("Cache-Control", "max-age=300")
		return 200, respHeaders, io.NopCloser(strings.NewReader("payload")), nil
	}

	res, err := ic.Fetch("key1", "GET", headers.New(), network)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(res.Body)
	if string(data) != "payload" {
		t.Fatalf("body = %q", data)
	}
	if res.FromCache {
		t.Fatal("expected not from cache on first fetch")
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}

	res2, err := ic.Fetch("key1", "GET", headers.New(), network)
	if err != nil {
		t.Fatal(err)
	}
	if !res2.FromCache {
		t.Fatal("expected second fetch to be served from cache")
	}
	if calls != 1 {
		t.Fatalf("calls after cache hit = %d, want 1", calls)
	}
	data2, _ := io.ReadAll(res2.Body)
	if string(data2) != "payload" {
		t.Fatalf("cached body = %q", data2)
	}
}

func TestFetchNoStoreBypassesCache(t *testing.T) {
	store := NewMemoryStore()
	ic := New(store)
	calls := 0

	network := func(h *headers.Headers) (int, *headers.Headers, io.ReadCloser, error) {
		calls++
		respHeaders := headers.New().Add("Cache-Control", "no-store")
		return 200, respHeaders, io.NopCloser(strings.NewReader("x")), nil
	}

	ic.Fetch("key2", "GET", headers.New(), network)
	ic.Fetch("key2", "GET", headers.New(), network)
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (no-store must not cache)", calls)
	}
}

func TestFetch304Revalidation(t *testing.T) {
	store := NewMemoryStore()
	ic := New(store)
	calls := 0

	firstNetwork := func(h *headers.Headers) (int, *headers.Headers, io.ReadCloser, error) {
		calls++
		respHeaders := headers.New().
			Add("Cache-Control", "max-age=0").
			Add("Date", "Mon, 01 Jan 2024 00:00:00 GMT").
			Add("ETag", `"v1"`)
		return 200, respHeaders, io.NopCloser(strings.NewReader("original")), nil
	}
	res, err := ic.Fetch("key3", "GET", headers.New(), firstNetwork)
	if err != nil {
		t.Fatal(err)
	}
	io.ReadAll(res.Body)

	revalidateNetwork := func(h *headers.Headers) (int, *headers.Headers, io.ReadCloser, error) {
		calls++
		if v, ok := h.Get("If-None-Match"); !ok || v != `"v1"` {
			t.Fatalf("expected conditional If-None-Match, got %q %v", v, ok)
		}
		return 304, headers.New().Add("Date", "Mon, 01 Jan 2024 00:05:00 GMT"), io.NopCloser(strings.NewReader("")), nil
	}
	res2, err := ic.Fetch("key3", "GET", headers.New(), revalidateNetwork)
	if err != nil {
		t.Fatal(err)
	}
	if !res2.FromCache {
		t.Fatal("304 revalidation should be reported as served from cache")
	}
	data, _ := io.ReadAll(res2.Body)
	if string(data) != "original" {
		t.Fatalf("revalidated body = %q, want original stored body", data)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
