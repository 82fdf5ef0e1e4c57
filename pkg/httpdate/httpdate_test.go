package httpdate

import (
	"testing"
	"time"
)

func TestParsePreferredFormat(t *testing.T) {
	got, ok := Parse("Sun, 06 Nov 1994 08:49:37 GMT")
	if !ok {
		t.Fatal("expected parse success")
	}
	want := time.Date(1994, 11, 6, 8, 49, 37, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseRFC850(t *testing.T) {
	_, ok := Parse("Sunday, 06-Nov-94 08:49:37 GMT")
	if !ok {
		t.Fatal("expected RFC 850 date to parse")
	}
}

func TestParseAsctime(t *testing.T) {
	_, ok := Parse("Sun Nov  6 08:49:37 1994")
	if !ok {
		t.Fatal("expected asctime date to parse")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, ok := Parse("not a date"); ok {
		t.Fatal("expected parse failure")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	want := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Format(want)
	got, ok := Parse(s)
	if !ok || !got.Equal(want) {
		t.Fatalf("round trip got %v, %v", got, ok)
	}
}
