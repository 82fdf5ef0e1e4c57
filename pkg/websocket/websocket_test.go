package websocket

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestFrameRoundTripUnmasked(t *testing.T) {
	var buf bytes.Buffer
	fr := Frame{Fin: true, Opcode: OpText, Payload: []byte("hello")}
	if err := WriteFrame(&buf, fr, nil); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if got.Opcode != OpText || string(got.Payload) != "hello" || !got.Fin {
		t.Fatalf("got %+v", got)
	}
}

func TestFrameRoundTripMasked(t *testing.T) {
	var buf bytes.Buffer
	fr := Frame{Fin: true, Opcode: OpBinary, Payload: []byte("masked payload")}
	if err := WriteFrame(&buf, fr, NewMaskKey()); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Payload) != "masked payload" {
		t.Fatalf("payload = %q", got.Payload)
	}
}

func TestFrameLargePayloadLengthEncoding(t *testing.T) {
	var buf bytes.Buffer
	payload := bytes.Repeat([]byte("x"), 70000)
	fr := Frame{Fin: true, Opcode: OpBinary, Payload: payload}
	if err := WriteFrame(&buf, fr, nil); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf, int64(len(payload))+1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Payload) != len(payload) {
		t.Fatalf("len = %d, want %d", len(got.Payload), len(payload))
	}
}

func TestReadFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	fr := Frame{Fin: true, Opcode: OpBinary, Payload: bytes.Repeat([]byte("x"), 1000)}
	WriteFrame(&buf, fr, nil)
	if _, err := ReadFrame(&buf, 10); err == nil {
		t.Fatal("expected framing error for oversized payload")
	}
}

func TestWriteFrameRejectsFragmentedControl(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, Frame{Fin: false, Opcode: OpPing}, nil)
	if err == nil {
		t.Fatal("expected error writing fragmented control frame")
	}
}

func TestDeflateRoundTrip(t *testing.T) {
	d := newDeflater()
	original := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)
	compressed, ok := d.compress(original)
	if !ok {
		t.Fatal("expected compression for a long payload")
	}
	if len(compressed) >= len(original) {
		t.Fatalf("compressed (%d) not smaller than original (%d)", len(compressed), len(original))
	}
	out, err := inflate(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, original) {
		t.Fatal("round trip mismatch")
	}
}

func TestDeflateSkipsShortPayloads(t *testing.T) {
	d := newDeflater()
	_, ok := d.compress([]byte("short"))
	if ok {
		t.Fatal("expected short payload to bypass compression")
	}
}

func TestNegotiateDeflateParsesParams(t *testing.T) {
	p := NegotiateDeflate("permessage-deflate; server_no_context_takeover")
	if !p.Enabled || !p.ServerNoContextTakeover || p.ClientNoContextTakeover {
		t.Fatalf("got %+v", p)
	}
}

func TestNegotiateDeflateAbsent(t *testing.T) {
	p := NegotiateDeflate("")
	if p.Enabled {
		t.Fatal("expected disabled when header absent")
	}
}

func dialedConnPair(t *testing.T) (client, server net.Conn) {
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
	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	server = <-serverCh
	return client, server
}

func TestConnMessageRoundTrip(t *testing.T) {
	clientConn, serverConn := dialedConnPair(t)
	defer clientConn.Close()
	defer serverConn.Close()

	client := NewConn(clientConn, RoleClient, false)
	server := NewConn(serverConn, RoleServer, false)

	done := make(chan error, 1)
	go func() {
		done <- client.WriteMessage(OpText, []byte("ping from client"))
	}()

	msg, err := server.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg.Payload) != "ping from client" {
		t.Fatalf("payload = %q", msg.Payload)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestConnCloseHandshake(t *testing.T) {
	clientConn, serverConn := dialedConnPair(t)
	defer clientConn.Close()
	defer serverConn.Close()

	client := NewConn(clientConn, RoleClient, false)
	server := NewConn(serverConn, RoleServer, false)

	go func() {
		client.Close(1000, "done")
	}()

	_, err := server.ReadMessage()
	if err == nil {
		t.Fatal("expected close to surface as an error from ReadMessage")
	}

	select {
	case <-server.closeRecv:
	case <-time.After(time.Second):
		t.Fatal("server never observed close frame")
	}
}
