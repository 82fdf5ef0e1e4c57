package cachestrategy

import (
	"testing"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/cachecontrol"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

func TestComputeNoStoredServesNetwork(t *testing.T) {
	d := Compute(time.Now(), "GET", cachecontrol.Parse(""), nil)
	if !d.UseNetwork || d.ServeCache {
		t.Fatalf("got %+v", d)
	}
}

func TestComputeOnlyIfCachedUnsatisfiable(t *testing.T) {
	d := Compute(time.Now(), "GET", cachecontrol.Parse("only-if-cached"), nil)
	if !d.Unsatisfiable {
		t.Fatalf("got %+v", d)
	}
}

func TestComputeFreshServesCache(t *testing.T) {
	now := time.Now()
	stored := &StoredEntry{
		StatusCode:   200,
		Headers:      headers.New().Add("Cache-Control", "max-age=60").Add("Date", now.Format(time.RFC1123)),
		RequestTime:  now,
		ResponseTime: now,
	}
	d := Compute(now.Add(10*time.Second), "GET", cachecontrol.Parse(""), stored)
	if !d.ServeCache {
		t.Fatalf("got %+v", d)
	}
}

func TestComputeStaleTriggersConditional(t *testing.T) {
	now := time.Now()
	stored := &StoredEntry{
		StatusCode: 200,
		Headers: headers.New().
			Add("Cache-Control", "max-age=5").
			Add("Date", now.Format(time.RFC1123)).
			Add("ETag", `"abc"`),
		RequestTime:  now,
		ResponseTime: now,
	}
	d := Compute(now.Add(60*time.Second), "GET", cachecontrol.Parse(""), stored)
	if !d.UseNetwork || !d.Conditional {
		t.Fatalf("got %+v", d)
	}
	if v, ok := d.ConditionalHeaders.Get("If-None-Match"); !ok || v != `"abc"` {
		t.Fatalf("conditional header = %q, %v", v, ok)
	}
}

func TestComputePostAlwaysNetwork(t *testing.T) {
	d := Compute(time.Now(), "POST", cachecontrol.Parse(""), &StoredEntry{StatusCode: 200, Headers: headers.New()})
	if !d.UseNetwork {
		t.Fatalf("got %+v", d)
	}
}

func TestComputeNoCacheForcesRevalidate(t *testing.T) {
	now := time.Now()
	stored := &StoredEntry{
		StatusCode: 200,
		Headers: headers.New().
			Add("Cache-Control", "max-age=600").
			Add("Date", now.Format(time.RFC1123)).
			Add("Last-Modified", now.Add(-time.Hour).Format(time.RFC1123)),
		RequestTime:  now,
		ResponseTime: now,
	}
	d := Compute(now, "GET", cachecontrol.Parse("no-cache"), stored)
	if !d.UseNetwork || d.ServeCache {
		t.Fatalf("got %+v", d)
	}
}

func TestCombineHeadersDropsHopByHop(t *testing.T) {
	cached := headers.New().Add("Content-Type", "text/plain").Add("ETag", `"x"`)
	network := headers.New().Add("Connection", "close").Add("ETag", `"y"`)
	combined := CombineHeaders(cached, network)
	if combined.Has("Connection") {
		t.Fatal("expected Connection to be dropped")
	}
	if v, _ := combined.Get("ETag"); v != `"y"` {
		t.Fatalf("ETag = %q, want network value to win", v)
	}
	if v, _ := combined.Get("Content-Type"); v != "text/plain" {
		t.Fatalf("Content-Type = %q", v)
	}
}
