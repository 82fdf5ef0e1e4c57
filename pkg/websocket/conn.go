package websocket

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/constants"
	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/timing"
)

// Role selects whether a Conn masks its outgoing frames (client) or sends
// them unmasked (server). The mask bit of incoming frames is not checked.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// Message is one complete, defragmented, decompressed application message.
type Message struct {
	Opcode  Opcode // OpText or OpBinary
	Payload []byte
}

// Conn drives a single WebSocket connection: message fragmentation and
// reassembly, control-frame interleaving between data fragments, a ping
// loop, and a cooperative close handshake, on top of the RFC 6455 frame
// codec in this package.
type Conn struct {
	role Role
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer

	maxMessageSize int64

	deflateEnabled bool
	deflater       *deflater

	writeMu sync.Mutex
	closed  bool

	pingInterval time.Duration
	pingTicker   *time.Ticker
	stopPing     chan struct{}

	closeOnce sync.Once
	closeSent chan struct{}
	closeRecv chan struct{}

	// Timer, if set, is stamped with the close round-trip duration.
	Timer *timing.Timer
}

// NewConn wraps conn as a WebSocket Conn. deflate enables permessage-deflate
// on outgoing messages above constants.MinimumDeflateSize; incoming
// compressed frames are always decompressed regardless of this setting.
func NewConn(conn net.Conn, role Role, deflate bool) *Conn {
	c := &Conn{
		role:           role,
		conn:           conn,
		br:             bufio.NewReader(conn),
		bw:             bufio.NewWriter(conn),
		maxMessageSize: constants.MaxQueueSize,
		deflateEnabled: deflate,
		pingInterval:   constants.DefaultPingInterval,
		stopPing:       make(chan struct{}),
		closeSent:      make(chan struct{}),
		closeRecv:      make(chan struct{}),
	}
	if deflate {
		c.deflater = newDeflater()
	}
	return c
}

// StartPingLoop begins sending an unsolicited ping at the configured
// interval until Close runs. Callers that want ping/pong keepalive must
// call this once after the handshake completes.
func (c *Conn) StartPingLoop() {
	c.pingTicker = time.NewTicker(c.pingInterval)
	go func() {
		for {
			select {
			case <-c.pingTicker.C:
				c.writeControl(OpPing, nil)
			case <-c.stopPing:
				c.pingTicker.Stop()
				return
			}
		}
	}()
}

func (c *Conn) mask() []byte {
	if c.role == RoleClient {
		return NewMaskKey()
	}
	return nil
}

// writeControl sends a control frame (ping, pong, or close), serialized
// against concurrent data-frame writes so control frames can interleave
// between a large message's fragments without corrupting the wire stream.
func (c *Conn) writeControl(op Opcode, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return errors.NewCancellationError("writeControl", nil)
	}
	if err := WriteFrame(c.bw, Frame{Fin: true, Opcode: op, Payload: payload}, c.mask()); err != nil {
		return err
	}
	return c.bw.Flush()
}

// WriteMessage sends a complete message as a single, possibly compressed,
// unfragmented frame.
func (c *Conn) WriteMessage(opcode Opcode, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return errors.NewCancellationError("writeMessage", nil)
	}

	rsv1 := false
	body := payload
	if c.deflateEnabled && c.deflater != nil {
		if compressed, ok := c.deflater.compress(payload); ok {
			body = compressed
			rsv1 = true
		}
	}

	if err := WriteFrame(c.bw, Frame{Fin: true, RSV1: rsv1, Opcode: opcode, Payload: body}, c.mask()); err != nil {
		return err
	}
	return c.bw.Flush()
}

// Ping sends an unsolicited ping with an optional application payload.
func (c *Conn) Ping(payload []byte) error { return c.writeControl(OpPing, payload) }

// pong replies to a received ping.
func (c *Conn) pong(payload []byte) error { return c.writeControl(OpPong, payload) }

// Close performs the RFC 6455 §7.1.2 closing handshake: send a close frame,
// then wait up to constants.CancelAfterClose for the peer's close frame
// before tearing down the TCP connection unconditionally.
func (c *Conn) Close(code uint16, reason string) error {
	var sendErr error
	c.closeOnce.Do(func() {
		if c.Timer != nil {
			c.Timer.StartWebSocketClose()
		}
		payload := encodeCloseReason(code, reason)
		sendErr = c.writeControl(OpClose, payload)
		close(c.closeSent)

		select {
		case <-c.closeRecv:
		case <-time.After(constants.CancelAfterClose):
		}
		if c.Timer != nil {
			c.Timer.EndWebSocketClose()
		}

		close(c.stopPing)
		c.writeMu.Lock()
		c.closed = true
		c.writeMu.Unlock()
		c.conn.Close()
	})
	return sendErr
}

func encodeCloseReason(code uint16, reason string) []byte {
	if code == 0 {
		return nil
	}
	payload := make([]byte, 2+len(reason))
	payload[0] = byte(code >> 8)
	payload[1] = byte(code)
	copy(payload[2:], reason)
	return payload
}

func decodeCloseReason(payload []byte) (code uint16, reason string) {
	if len(payload) < 2 {
		return 1005, "" // 1005: no status code present
	}
	code = uint16(payload[0])<<8 | uint16(payload[1])
	reason = string(payload[2:])
	return code, reason
}

// ReadMessage reads and reassembles the next complete application message,
// transparently answering pings with pongs and reporting the peer's close
// frame by returning an error wrapping io.EOF semantics. Control frames may
// arrive interleaved between a fragmented message's continuation frames
// per RFC 6455 §5.4, and are handled without disturbing reassembly state.
func (c *Conn) ReadMessage() (Message, error) {
	var (
		assembling  bool
		msgOpcode   Opcode
		msgRSV1     bool
		payload     []byte
	)

	for {
		fr, err := ReadFrame(c.br, c.maxMessageSize)
		if err != nil {
			return Message{}, err
		}

		if fr.Opcode.IsControl() {
			switch fr.Opcode {
			case OpPing:
				if err := c.pong(fr.Payload); err != nil {
					return Message{}, err
				}
			case OpPong:
				// no action required; a liveness probe response
			case OpClose:
				select {
				case <-c.closeRecv:
				default:
					close(c.closeRecv)
				}
				code, reason := decodeCloseReason(fr.Payload)
				// Echo the close frame back if we haven't already sent ours.
				select {
				case <-c.closeSent:
				default:
					c.Close(code, reason)
				}
				return Message{}, errors.NewEOFError("readMessage", nil)
			}
			continue
		}

		switch {
		case !assembling && fr.Opcode == OpContinuation:
			return Message{}, errors.NewFramingError("readMessage", "continuation frame without a preceding start frame")
		case !assembling:
			assembling = true
			msgOpcode = fr.Opcode
			msgRSV1 = fr.RSV1
			payload = append(payload, fr.Payload...)
		case fr.Opcode != OpContinuation:
			return Message{}, errors.NewFramingError("readMessage", "new message started before previous one finished")
		default:
			payload = append(payload, fr.Payload...)
		}

		if int64(len(payload)) > c.maxMessageSize {
			return Message{}, errors.NewFramingError("readMessage", "assembled message exceeds maximum size")
		}

		if fr.Fin {
			if msgRSV1 {
				inflated, err := inflate(payload)
				if err != nil {
					return Message{}, err
				}
				payload = inflated
			}
			return Message{Opcode: msgOpcode, Payload: payload}, nil
		}
	}
}
