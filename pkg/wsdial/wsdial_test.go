package wsdial

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/transport"
	"github.com/jayo-projects/jayo-http-sub002/pkg/websocket"
)

// serveOneUpgrade accepts a single connection, answers a valid WebSocket
// opening handshake, then echoes exactly one text message before closing.
func serveOneUpgrade(t *testing.T, ln net.Listener) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		t.Error(err)
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	var key string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Error(err)
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "sec-websocket-key:") {
			key = strings.TrimSpace(line[len("sec-websocket-key:"):])
		}
	}

	sum := sha1.Sum([]byte(key + acceptMagic))
	accept := base64.StdEncoding.EncodeToString(sum[:])

	fmt.Fprintf(conn, "HTTP/1.1 101 Switching Protocols\r\n")
	fmt.Fprintf(conn, "Upgrade: websocket\r\n")
	fmt.Fprintf(conn, "Connection: Upgrade\r\n")
	fmt.Fprintf(conn, "Sec-WebSocket-Accept: %s\r\n\r\n", accept)

	serverConn := websocket.NewConn(&bufferedConn{Conn: conn, r: r}, websocket.RoleServer, false)
	msg, err := serverConn.ReadMessage()
	if err != nil {
		t.Error(err)
		return
	}
	serverConn.WriteMessage(websocket.OpText, msg.Payload)
}

// bufferedConn lets the handshake's bufio.Reader hand its buffered bytes to
// the websocket frame reader instead of losing whatever was over-read.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (b *bufferedConn) Read(p []byte) (int, error) { return b.r.Read(p) }

func TestDialPerformsUpgradeAndRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go serveOneUpgrade(t, ln)

	addr := ln.Addr().(*net.TCPAddr)
	target := fmt.Sprintf("ws://127.0.0.1:%d/chat", addr.Port)

	tr := transport.New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := Dial(ctx, tr, target, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Conn.Close(1000, "bye")

	if err := result.Conn.WriteMessage(websocket.OpText, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	msg, err := result.Conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg.Payload) != "hello" {
		t.Fatalf("payload = %q", msg.Payload)
	}
}

func TestDialRejectsInvalidURL(t *testing.T) {
	result, err := Dial(context.Background(), nil, "not a url", Options{}, nil)
	if err == nil {
		t.Fatal("expected parse error for invalid url")
	}
	if result != nil {
		t.Fatal("expected nil result on error")
	}
}
