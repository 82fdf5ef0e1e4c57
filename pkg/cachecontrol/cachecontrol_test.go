package cachecontrol

import "testing"

func TestParseMaxAge(t *testing.T) {
	d := Parse("max-age=60, public")
	if d.MaxAge != 60 {
		t.Fatalf("MaxAge = %d, want 60", d.MaxAge)
	}
	if !d.Public {
		t.Fatal("expected Public")
	}
}

func TestParseNoCacheNoStore(t *testing.T) {
	d := Parse("no-cache, no-store")
	if !d.NoCache || !d.NoStore {
		t.Fatalf("got %+v", d)
	}
}

func TestBareMaxStale(t *testing.T) {
	d := Parse("max-stale")
	if !d.MaxStaleSet || d.MaxStale != 1<<31-1 {
		t.Fatalf("got %+v", d)
	}
}

func TestMaxStaleWithValue(t *testing.T) {
	d := Parse("max-stale=30")
	if !d.MaxStaleSet || d.MaxStale != 30 {
		t.Fatalf("got %+v", d)
	}
}

func TestAbsentFieldsAreNegativeOne(t *testing.T) {
	d := Parse("no-transform")
	if d.MaxAge != -1 || d.SMaxAge != -1 || d.MinFresh != -1 {
		t.Fatalf("got %+v", d)
	}
}

func TestStringRoundTrip(t *testing.T) {
	d := Parse("max-age=60, no-cache")
	again := Parse(d.String())
	if again.MaxAge != 60 || !again.NoCache {
		t.Fatalf("round trip got %+v", again)
	}
}
