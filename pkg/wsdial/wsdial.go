// Package wsdial performs the RFC 6455 opening handshake: connect over
// pkg/transport, send the HTTP/1.1 Upgrade request through pkg/exchange, and
// on a valid 101 response hand the raw socket to pkg/websocket as a Conn.
package wsdial

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/exchange"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
	"github.com/jayo-projects/jayo-http-sub002/pkg/timing"
	"github.com/jayo-projects/jayo-http-sub002/pkg/transport"
	"github.com/jayo-projects/jayo-http-sub002/pkg/urlmodel"
	"github.com/jayo-projects/jayo-http-sub002/pkg/websocket"
)

// acceptMagic is the fixed GUID RFC 6455 §1.3 appends to the client's
// Sec-WebSocket-Key before hashing to compute Sec-WebSocket-Accept.
const acceptMagic = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// Options controls a WebSocket dial. Subprotocols and ExtraHeaders are
// optional; Deflate offers permessage-deflate and negotiates whatever
// parameters the server answers with.
type Options struct {
	Subprotocols []string
	ExtraHeaders *headers.Headers
	Deflate      bool

	Transport *transport.Config
}

// Result is a live WebSocket connection plus the subprotocol the server
// selected, if any.
type Result struct {
	Conn          *websocket.Conn
	Subprotocol   string
	DeflateParams websocket.DeflateParams
	ConnMetadata  *transport.ConnectionMetadata
}

// Dial resolves target (an ws://, wss://, http://, or https:// URL) and
// performs the opening handshake, returning a Conn ready for StartPingLoop,
// WriteMessage, and ReadMessage.
func Dial(ctx context.Context, tr *transport.Transport, target string, opts Options, timer *timing.Timer) (*Result, error) {
	u, err := urlmodel.Parse(target)
	if err != nil {
		return nil, errors.NewParseError("dialWebSocket", err.Error())
	}

	cfg := transport.Config{}
	if opts.Transport != nil {
		cfg = *opts.Transport
	}
	cfg.Scheme = u.Scheme
	cfg.Host = u.Host
	cfg.Port = u.Port

	if timer != nil {
		timer.StartWebSocketHandshake()
	}

	socket, conn, meta, err := tr.ConnectSocket(ctx, cfg, timer)
	if err != nil {
		return nil, err
	}

	key, err := generateKey()
	if err != nil {
		tr.CloseConnectionWithMetadata(u.Host, u.Port, conn, meta)
		return nil, errors.NewValidationError("generating Sec-WebSocket-Key: " + err.Error())
	}

	h := headers.New()
	h.Set("Host", hostHeader(u))
	h.Set("Upgrade", "websocket")
	h.Set("Connection", "Upgrade")
	h.Set("Sec-WebSocket-Key", key)
	h.Set("Sec-WebSocket-Version", "13")
	if len(opts.Subprotocols) > 0 {
		h.Set("Sec-WebSocket-Protocol", strings.Join(opts.Subprotocols, ", "))
	}
	if opts.Deflate {
		h.Set("Sec-WebSocket-Extensions", websocket.OfferDeflate())
	}
	if opts.ExtraHeaders != nil {
		opts.ExtraHeaders.ForEach(func(name, value string) {
			if !h.Has(name) {
				h.Set(name, value)
			}
		})
	}

	codec := exchange.New(socket)
	if err := codec.WriteRequestLine("GET", requestTarget(u)); err != nil {
		conn.Close()
		return nil, err
	}
	if err := codec.WriteRequestHeaders(h, false); err != nil {
		conn.Close()
		return nil, err
	}
	if err := codec.NoRequestBody(); err != nil {
		conn.Close()
		return nil, err
	}

	status, respHeaders, _, err := codec.ReadResponseHeaders()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if timer != nil {
		timer.EndWebSocketHandshake()
	}
	if status.Code != 101 {
		conn.Close()
		return nil, errors.NewProtocolError("websocket upgrade",
			fmt.Errorf("server returned %d %s instead of 101 Switching Protocols", status.Code, status.Reason))
	}
	upgradeVal, _ := respHeaders.Get("Upgrade")
	connectionVal, _ := respHeaders.Get("Connection")
	if !strings.EqualFold(upgradeVal, "websocket") || !headerTokenContains(connectionVal, "upgrade") {
		conn.Close()
		return nil, errors.NewProtocolError("websocket upgrade", fmt.Errorf("missing Upgrade/Connection headers"))
	}
	acceptVal, _ := respHeaders.Get("Sec-WebSocket-Accept")
	if acceptVal != computeAccept(key) {
		conn.Close()
		return nil, errors.NewProtocolError("websocket upgrade", fmt.Errorf("Sec-WebSocket-Accept mismatch"))
	}

	extVal, _ := respHeaders.Get("Sec-WebSocket-Extensions")
	deflateParams := websocket.NegotiateDeflate(extVal)
	// socket.Reader() may already hold bytes read past the header block (the
	// start of the server's first frame); splice it back in front of conn so
	// the frame codec doesn't lose them.
	wsConn := websocket.NewConn(&handshakeConn{Conn: conn, r: socket.Reader()}, websocket.RoleClient, deflateParams.Enabled)
	wsConn.Timer = timer

	subprotocol, _ := respHeaders.Get("Sec-WebSocket-Protocol")
	return &Result{
		Conn:          wsConn,
		Subprotocol:   subprotocol,
		DeflateParams: deflateParams,
		ConnMetadata:  meta,
	}, nil
}

// handshakeConn reads from a bufio.Reader that may already hold bytes
// buffered past the Upgrade response's header block before falling through
// to conn, so no wire data from the server's first frame is dropped.
type handshakeConn struct {
	net.Conn
	r *bufio.Reader
}

func (h *handshakeConn) Read(p []byte) (int, error) { return h.r.Read(p) }

func generateKey() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func computeAccept(key string) string {
	sum := sha1.Sum([]byte(key + acceptMagic))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func hostHeader(u *urlmodel.URL) string {
	defaultPort := 80
	if u.IsHTTPS() {
		defaultPort = 443
	}
	if u.Port == defaultPort {
		return u.Host
	}
	return u.Host + ":" + strconv.Itoa(u.Port)
}

// requestTarget strips the scheme and authority from u's canonical form,
// leaving the path-absolute request target the request line needs.
func requestTarget(u *urlmodel.URL) string {
	full := u.String()
	prefix := u.Scheme + "://" + hostHeader(u)
	if strings.HasPrefix(full, prefix) {
		target := full[len(prefix):]
		if target == "" {
			return "/"
		}
		return target
	}
	return "/"
}

func headerTokenContains(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
