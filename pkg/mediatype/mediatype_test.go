package mediatype

import "testing"

func TestParseSimple(t *testing.T) {
	mt, err := Parse("text/plain")
	if err != nil {
		t.Fatal(err)
	}
	if mt.Type != "text" || mt.Subtype != "plain" {
		t.Fatalf("got %s/%s", mt.Type, mt.Subtype)
	}
}

func TestParseWithParams(t *testing.T) {
	mt, err := Parse(`Text/HTML; Charset=UTF-8; boundary="a b"`)
	if err != nil {
		t.Fatal(err)
	}
	if mt.Type != "text" || mt.Subtype != "html" {
		t.Fatalf("got %s/%s", mt.Type, mt.Subtype)
	}
	if c := mt.Charset(""); c != "UTF-8" {
		t.Fatalf("charset = %q", c)
	}
	if b, ok := mt.Param("boundary"); !ok || b != "a b" {
		t.Fatalf("boundary = %q, %v", b, ok)
	}
}

func TestParseMissingSlash(t *testing.T) {
	if _, err := Parse("textplain"); err == nil {
		t.Fatal("expected error")
	}
}

func TestStringRoundTrip(t *testing.T) {
	mt, err := Parse(`multipart/form-data; boundary="a b"`)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(mt.String())
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := again.Param("boundary"); b != "a b" {
		t.Fatalf("round trip boundary = %q", b)
	}
}

func TestEscapedQuotedValue(t *testing.T) {
	mt, err := Parse(`text/plain; name="a\"b"`)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := mt.Param("name"); v != `a"b` {
		t.Fatalf("name = %q", v)
	}
}
