package cookie

import (
	"testing"

	"github.com/jayo-projects/jayo-http-sub002/pkg/urlmodel"
)

func mustURL(t *testing.T, raw string) *urlmodel.URL {
	t.Helper()
	u, err := urlmodel.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestParseBasic(t *testing.T) {
	u := mustURL(t, "http://example.com/a/b")
	c, err := Parse("session=abc123; Path=/; HttpOnly", u)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "session" || c.Value != "abc123" || !c.HTTPOnly || c.Path != "/" {
		t.Fatalf("got %+v", c)
	}
	if !c.HostOnly {
		t.Fatal("expected host-only cookie when Domain absent")
	}
}

func TestDefaultPathFromRequestURL(t *testing.T) {
	u := mustURL(t, "http://example.com/a/b/c")
	c, err := Parse("x=1", u)
	if err != nil {
		t.Fatal(err)
	}
	if c.Path != "/a/b" {
		t.Fatalf("path = %q, want /a/b", c.Path)
	}
}

func TestMaxAgeOverridesExpires(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	c, err := Parse("x=1; Expires=Wed, 09 Jun 2021 10:18:14 GMT; Max-Age=60", u)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Persistent {
		t.Fatal("expected persistent cookie")
	}
	// Max-Age=60 sets an expiry roughly 60s from now, not in 2021.
	if c.Expiry.Year() < 2024 {
		t.Fatalf("expiry = %v, Max-Age should have overridden Expires", c.Expiry)
	}
}

func TestMaxAgeZeroExpiresImmediately(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	c, err := Parse("x=1; Max-Age=0", u)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Expired(Min().Add(1)) {
		t.Fatal("expected cookie to be already expired")
	}
}

func TestDomainCookieAllowsSubdomains(t *testing.T) {
	u := mustURL(t, "http://www.example.com/")
	c, err := Parse("x=1; Domain=example.com", u)
	if err != nil {
		t.Fatal(err)
	}
	if c.HostOnly {
		t.Fatal("expected domain cookie, not host-only")
	}
	if !DomainMatch(c.Domain, "foo.example.com") {
		t.Fatal("expected subdomain to match")
	}
}

func TestRejectsPublicSuffixDomain(t *testing.T) {
	u := mustURL(t, "http://www.github.io/")
	_, err := Parse("x=1; Domain=io", u)
	if err == nil {
		t.Fatal("expected rejection of cookie scoped to a public suffix")
	}
}

func TestPathMatch(t *testing.T) {
	cases := []struct {
		cookiePath, reqPath string
		want                bool
	}{
		{"/", "/anything", true},
		{"/foo", "/foo", true},
		{"/foo", "/foo/bar", true},
		{"/foo", "/foobar", false},
	}
	for _, c := range cases {
		if got := PathMatch(c.cookiePath, c.reqPath); got != c.want {
			t.Errorf("PathMatch(%q, %q) = %v, want %v", c.cookiePath, c.reqPath, got, c.want)
		}
	}
}
