package multipart

import (
	"bytes"
	"io"
	"testing"

	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "BOUNDARY")
	if err := w.WritePart(Part{
		Headers: headers.New().Add("Content-Disposition", `form-data; name="field1"`),
		Body:    bytes.NewReader([]byte("value1")),
	}); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePart(Part{
		Headers: headers.New().Add("Content-Disposition", `form-data; name="field2"`),
		Body:    bytes.NewReader([]byte("value2, with a comma")),
	}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()), "BOUNDARY")

	h1, body1, err := r.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	data1, _ := io.ReadAll(body1)
	if string(data1) != "value1" {
		t.Fatalf("part1 body = %q", data1)
	}
	if v, _ := h1.Get("Content-Disposition"); v != `form-data; name="field1"` {
		t.Fatalf("part1 header = %q", v)
	}

	_, body2, err := r.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	data2, _ := io.ReadAll(body2)
	if string(data2) != "value2, with a comma" {
		t.Fatalf("part2 body = %q", data2)
	}

	if _, _, err := r.NextPart(); err != io.EOF {
		t.Fatalf("expected io.EOF after last part, got %v", err)
	}
}

func TestUnknownLengthPart(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "B")
	err := w.WritePart(Part{
		Headers:       headers.New(),
		Body:          bytes.NewReader([]byte("streamed")),
		ContentLength: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	w.Close()

	r := NewReader(bytes.NewReader(buf.Bytes()), "B")
	_, body, err := r.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "streamed" {
		t.Fatalf("got %q", data)
	}
}
