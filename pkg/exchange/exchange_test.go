package exchange

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

// pipeSocket lets a test drive both ends of a Codec over a loopback TCP
// connection, which (unlike net.Pipe) buffers writes so the client and a
// server goroutine don't have to interleave reads and writes in lockstep.
func pipeSocket(t *testing.T) (client Socket, serverConn net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	serverCh := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		serverCh <- c
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	serverConn = <-serverCh
	return NewSocket(clientConn), serverConn
}

func TestParseStatusLineNoReason(t *testing.T) {
	s, err := parseStatusLine("HTTP/1.1 200")
	if err != nil {
		t.Fatal(err)
	}
	if s.Code != 200 || s.Reason != "" {
		t.Fatalf("got %+v", s)
	}
}

func TestParseStatusLineWithReason(t *testing.T) {
	s, err := parseStatusLine("HTTP/1.1 404 Not Found")
	if err != nil {
		t.Fatal(err)
	}
	if s.Code != 404 || s.Reason != "Not Found" {
		t.Fatalf("got %+v", s)
	}
}

func TestFixedLengthResponseRoundTrip(t *testing.T) {
	client, server := pipeSocket(t)
	defer server.Close()

	go func() {
		server.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"))
	}()

	codec := New(client)
	if err := codec.WriteRequestLine("GET", "/"); err != nil {
		t.Fatal(err)
	}
	if err := codec.WriteRequestHeaders(headers.New().Add("Host", "example.com"), false); err != nil {
		t.Fatal(err)
	}
	if err := codec.NoRequestBody(); err != nil {
		t.Fatal(err)
	}

	status, h, interim, err := codec.ReadResponseHeaders()
	if err != nil {
		t.Fatal(err)
	}
	if interim || status.Code != 200 {
		t.Fatalf("status=%+v interim=%v", status, interim)
	}
	cl, _ := h.Get("Content-Length")
	if cl != "5" {
		t.Fatalf("content-length = %q", cl)
	}

	body, err := codec.OpenResponseBody("GET", status, h)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("body = %q", data)
	}
	if codec.State() != StateClosed {
		t.Fatalf("state = %s, want closed", codec.State())
	}
	tr, err := codec.PeekTrailers()
	if err != nil {
		t.Fatal(err)
	}
	if tr.State != TrailersPresent {
		t.Fatalf("trailers state = %v", tr.State)
	}
}

func TestChunkedResponseWithTrailers(t *testing.T) {
	client, server := pipeSocket(t)
	defer server.Close()

	go func() {
		server.Write([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"5\r\nhello\r\n6\r\n world\r\n0\r\nX-Extra: yes\r\n\r\n"))
	}()

	codec := New(client)
	codec.WriteRequestLine("GET", "/")
	codec.WriteRequestHeaders(headers.New(), false)
	codec.NoRequestBody()

	status, h, _, err := codec.ReadResponseHeaders()
	if err != nil {
		t.Fatal(err)
	}
	body, err := codec.OpenResponseBody("GET", status, h)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello world" {
		t.Fatalf("body = %q", buf.String())
	}
	tr, err := codec.PeekTrailers()
	if err != nil {
		t.Fatal(err)
	}
	if tr.State != TrailersPresent {
		t.Fatalf("trailers state = %v", tr.State)
	}
	if v, ok := tr.Headers.Get("X-Extra"); !ok || v != "yes" {
		t.Fatalf("trailer X-Extra = %q, %v", v, ok)
	}
}

func TestHeadResponseHasNoBody(t *testing.T) {
	client, server := pipeSocket(t)
	defer server.Close()

	go func() {
		server.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n"))
	}()

	codec := New(client)
	codec.WriteRequestLine("HEAD", "/")
	codec.WriteRequestHeaders(headers.New(), false)
	codec.NoRequestBody()

	status, h, _, err := codec.ReadResponseHeaders()
	if err != nil {
		t.Fatal(err)
	}
	body, err := codec.OpenResponseBody("HEAD", status, h)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty body for HEAD, got %d bytes", len(data))
	}
}

func Test100ContinueInterim(t *testing.T) {
	client, server := pipeSocket(t)
	defer server.Close()

	go func() {
		server.Write([]byte("HTTP/1.1 100 Continue\r\n\r\n"))
		time.Sleep(10 * time.Millisecond)
		server.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"))
	}()

	codec := New(client)
	codec.WriteRequestLine("POST", "/")
	codec.WriteRequestHeaders(headers.New().Add("Expect", "100-continue"), true)

	status, _, interim, err := codec.ReadResponseHeaders()
	if err != nil {
		t.Fatal(err)
	}
	if !interim || status.Code != 100 {
		t.Fatalf("status=%+v interim=%v, want 100/interim", status, interim)
	}

	bodyWriter, err := codec.OpenFixedRequestBody(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := bodyWriter.Close(); err != nil {
		t.Fatal(err)
	}

	status2, _, interim2, err := codec.ReadResponseHeaders()
	if err != nil {
		t.Fatal(err)
	}
	if interim2 || status2.Code != 200 {
		t.Fatalf("status2=%+v interim2=%v", status2, interim2)
	}
}

func TestWriteMoreThanContentLengthIsFramingError(t *testing.T) {
	client, server := pipeSocket(t)
	defer server.Close()
	go io.Copy(io.Discard, server)

	codec := New(client)
	codec.WriteRequestLine("POST", "/")
	codec.WriteRequestHeaders(headers.New(), false)
	w, err := codec.OpenFixedRequestBody(3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("toolong")); err == nil {
		t.Fatal("expected framing error writing past Content-Length")
	}
}

func TestChunkedRequestBodyWriting(t *testing.T) {
	client, server := pipeSocket(t)
	defer server.Close()

	recv := make(chan string, 1)
	go func() {
		buf := make([]byte, 512)
		n, _ := server.Read(buf)
		recv <- string(buf[:n])
	}()

	codec := New(client)
	codec.WriteRequestLine("POST", "/")
	codec.WriteRequestHeaders(headers.New(), false)
	w, err := codec.OpenChunkedRequestBody()
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("abc"))
	w.Close()

	got := <-recv
	if !bytes.Contains([]byte(got), []byte("3\r\nabc\r\n0\r\n\r\n")) {
		t.Fatalf("wire bytes = %q", got)
	}
}
