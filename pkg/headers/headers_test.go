package headers

import "testing"

func TestGetCaseInsensitive(t *testing.T) {
	h := New().Add("Content-Type", "text/plain")
	v, ok := h.Get("content-type")
	if !ok || v != "text/plain" {
		t.Fatalf("Get() = %q, %v; want %q, true", v, ok, "text/plain")
	}
}

func TestDuplicateNamesPreserveOrder(t *testing.T) {
	h := New().Add("Set-Cookie", "a=1").Add("Set-Cookie", "b=2")
	values := h.Values("set-cookie")
	if len(values) != 2 || values[0] != "a=1" || values[1] != "b=2" {
		t.Fatalf("Values() = %v", values)
	}
}

func TestSetReplacesAllExisting(t *testing.T) {
	h := New().Add("X-Foo", "1").Add("X-Foo", "2")
	h.Set("X-Foo", "3")
	values := h.Values("X-Foo")
	if len(values) != 1 || values[0] != "3" {
		t.Fatalf("Values() = %v, want [3]", values)
	}
}

func TestBuilderContinuationLine(t *testing.T) {
	b := NewBuilder()
	b.AddLine("X-Long: part one")
	b.AddLine(" part two")
	h := b.Build()
	v, ok := h.Get("X-Long")
	if !ok || v != "part one part two" {
		t.Fatalf("Get() = %q, %v", v, ok)
	}
}

func TestBuilderIgnoresLineWithoutColon(t *testing.T) {
	b := NewBuilder()
	b.AddLine("not a header")
	if b.Build().Len() != 0 {
		t.Fatalf("expected no headers, got %d", b.Build().Len())
	}
}

func TestValidateNameRejectsControlChars(t *testing.T) {
	if err := ValidateName("X-Foo\r\n"); err == nil {
		t.Fatal("expected error for header name with CRLF")
	}
	if err := ValidateName("X-Foo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
