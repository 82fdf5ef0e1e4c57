package urlmodel

import "testing"

func TestParseRoundTrip(t *testing.T) {
	raw := "https://example.com/a/b?x=1&y=2#frag"
	u, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != raw {
		t.Fatalf("String() = %q, want %q", u.String(), raw)
	}
	again, err := Parse(u.String())
	if err != nil {
		t.Fatal(err)
	}
	if again.String() != u.String() {
		t.Fatalf("not idempotent: %q vs %q", again.String(), u.String())
	}
}

func TestDefaultPortsOmittedFromCanonical(t *testing.T) {
	u, err := Parse("http://example.com:80/")
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "http://example.com/" {
		t.Fatalf("got %q", u.String())
	}
}

func TestWsSchemeRewrite(t *testing.T) {
	u, err := Parse("wss://example.com/chat")
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
}

func TestLowercasesHost(t *testing.T) {
	u, err := Parse("http://WwW.Example.CoM/")
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "www.example.com" {
		t.Fatalf("host = %q", u.Host)
	}
}

func TestDotSegmentFolding(t *testing.T) {
	u, err := Parse("http://example.com/a/b/../c/./d")
	if err != nil {
		t.Fatal(err)
	}
	want := "/a/c/d"
	got := "/" + join(u.PathSegments)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func join(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}

func TestInvalidSchemeRejected(t *testing.T) {
	if _, err := Parse("ftp://example.com/"); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
}

func TestIPv6Host(t *testing.T) {
	u, err := Parse("http://[::1]:8080/")
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "[::1]" || u.Port != 8080 {
		t.Fatalf("host=%q port=%d", u.Host, u.Port)
	}
}

func TestResolveRelativePath(t *testing.T) {
	base, err := Parse("http://example.com/a/b/c")
	if err != nil {
		t.Fatal(err)
	}
	u, err := base.Resolve("../d")
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "http://example.com/a/d" {
		t.Fatalf("got %q", u.String())
	}
}

func TestResolveAbsolute(t *testing.T) {
	base, _ := Parse("http://example.com/a/b")
	u, err := base.Resolve("https://other.com/x")
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "https://other.com/x" {
		t.Fatalf("got %q", u.String())
	}
}

func TestResolveFragmentOnly(t *testing.T) {
	base, _ := Parse("http://example.com/a?x=1")
	u, err := base.Resolve("#section")
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "http://example.com/a?x=1#section" {
		t.Fatalf("got %q", u.String())
	}
}

func TestEffectiveTLDPlusOne(t *testing.T) {
	cases := map[string]string{
		"www.google.com": "google.com",
		"google.com":     "google.com",
	}
	for host, want := range cases {
		got, err := EffectiveTLDPlusOne(host)
		if err != nil {
			t.Fatalf("%s: %v", host, err)
		}
		if got != want {
			t.Fatalf("%s: got %q, want %q", host, got, want)
		}
	}
}

func TestEffectiveTLDPlusOnePublicSuffixItself(t *testing.T) {
	if _, err := EffectiveTLDPlusOne("com"); err == nil {
		t.Fatal("expected error for bare public suffix")
	}
}

func TestPercentEncodeDecodeRoundTrip(t *testing.T) {
	u, err := Parse("http://example.com/a%20b/c?k=v%26w")
	if err != nil {
		t.Fatal(err)
	}
	if u.PathSegments[0] != "a b" {
		t.Fatalf("segment = %q", u.PathSegments[0])
	}
	if *u.Query[0].Value != "v&w" {
		t.Fatalf("query value = %q", *u.Query[0].Value)
	}
}
