// Package websocket implements the RFC 6455 WebSocket frame codec,
// fragmentation and control-frame interleaving, a ping/pong/close
// lifecycle, and permessage-deflate (RFC 7692) extension negotiation.
package websocket

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
)

// Opcode identifies a frame's payload interpretation (RFC 6455 §5.2).
type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

func (op Opcode) IsControl() bool { return op >= OpClose }

// maxControlFramePayload is the RFC 6455 §5.5 limit on control frame bodies.
const maxControlFramePayload = 125

// Frame is one parsed WebSocket frame.
type Frame struct {
	Fin     bool
	RSV1    bool // set when permessage-deflate compressed this message
	Opcode  Opcode
	Payload []byte
}

// WriteFrame serializes fr onto w. mask, when non-nil, is applied to the
// payload and the frame is marked masked, as required for client-to-server
// frames (RFC 6455 §5.1); server-to-client frames pass mask == nil.
func WriteFrame(w io.Writer, fr Frame, mask []byte) error {
	if fr.Opcode.IsControl() {
		if len(fr.Payload) > maxControlFramePayload {
			return errors.NewFramingError("writeFrame", "control frame payload exceeds 125 bytes")
		}
		if !fr.Fin {
			return errors.NewFramingError("writeFrame", "control frames must not be fragmented")
		}
	}

	var header [14]byte
	n := 2
	b0 := byte(fr.Opcode)
	if fr.Fin {
		b0 |= 0x80
	}
	if fr.RSV1 {
		b0 |= 0x40
	}
	header[0] = b0

	payloadLen := len(fr.Payload)
	var b1 byte
	if mask != nil {
		b1 |= 0x80
	}
	switch {
	case payloadLen <= 125:
		b1 |= byte(payloadLen)
	case payloadLen <= 0xFFFF:
		b1 |= 126
		binary.BigEndian.PutUint16(header[2:4], uint16(payloadLen))
		n += 2
	default:
		b1 |= 127
		binary.BigEndian.PutUint64(header[2:10], uint64(payloadLen))
		n += 8
	}
	header[1] = b1

	if mask != nil {
		copy(header[n:n+4], mask)
		n += 4
	}

	if _, err := w.Write(header[:n]); err != nil {
		return errors.NewIOError("writing frame header", err)
	}
	if payloadLen == 0 {
		return nil
	}
	payload := fr.Payload
	if mask != nil {
		masked := make([]byte, payloadLen)
		applyMask(masked, payload, mask)
		payload = masked
	}
	if _, err := w.Write(payload); err != nil {
		return errors.NewIOError("writing frame payload", err)
	}
	return nil
}

// ReadFrame parses one frame from r. maxPayload bounds the accepted payload
// size to guard against a peer claiming an absurd length.
func ReadFrame(r io.Reader, maxPayload int64) (Frame, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Frame{}, errors.NewEOFError("reading frame header", err)
	}
	fin := head[0]&0x80 != 0
	rsv1 := head[0]&0x40 != 0
	opcode := Opcode(head[0] & 0x0F)
	masked := head[1]&0x80 != 0
	length := int64(head[1] & 0x7F)

	switch length {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, errors.NewEOFError("reading extended length", err)
		}
		length = int64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, errors.NewEOFError("reading extended length", err)
		}
		length = int64(binary.BigEndian.Uint64(ext[:]))
		if length < 0 {
			return Frame{}, errors.NewFramingError("readFrame", "negative payload length")
		}
	}
	if length > maxPayload {
		return Frame{}, errors.NewFramingError("readFrame", "frame payload exceeds configured maximum")
	}

	var maskKey [4]byte
	if masked {
		if _, err := io.ReadFull(r, maskKey[:]); err != nil {
			return Frame{}, errors.NewEOFError("reading mask key", err)
		}
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, errors.NewEOFError("reading frame payload", err)
		}
	}
	if masked {
		applyMask(payload, payload, maskKey[:])
	}

	opc := Opcode(opcode)
	if opc.IsControl() {
		if !fin {
			return Frame{}, errors.NewFramingError("readFrame", "control frame must not be fragmented")
		}
		if length > maxControlFramePayload {
			return Frame{}, errors.NewFramingError("readFrame", "control frame payload exceeds 125 bytes")
		}
	}

	return Frame{Fin: fin, RSV1: rsv1, Opcode: opc, Payload: payload}, nil
}

// applyMask XORs src with key (cycled) into dst, which may alias src.
func applyMask(dst, src, key []byte) {
	for i := range src {
		dst[i] = src[i] ^ key[i%4]
	}
}

// NewMaskKey returns a fresh random 4-byte masking key for a client frame.
func NewMaskKey() []byte {
	key := make([]byte, 4)
	rand.Read(key)
	return key
}
