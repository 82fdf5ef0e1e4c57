package websocket

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/jayo-projects/jayo-http-sub002/pkg/constants"
	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
)

// deflateTail is the 4-byte suffix RFC 7692 §7.2.1 says a compressor
// appends on every message (0x00 0x00 0xFF 0xFF) and a decompressor must
// add back before inflating, since it marks a Z_SYNC_FLUSH boundary that
// flate.Writer already produces without the final empty deflate block.
var deflateTail = []byte{0x00, 0x00, 0xFF, 0xFF}

// deflater compresses outgoing messages under permessage-deflate. It is not
// safe for concurrent use.
type deflater struct {
	buf bytes.Buffer
	w   *flate.Writer
}

func newDeflater() *deflater {
	w, _ := flate.NewWriter(nil, flate.DefaultCompression)
	return &deflater{w: w}
}

// compress returns the permessage-deflate-encoded form of payload, with the
// trailing sync-flush marker stripped per RFC 7692 §7.2.1. Messages shorter
// than constants.MinimumDeflateSize are returned unmodified with ok=false so
// the caller sends them uncompressed; deflate's per-message overhead makes
// compressing short payloads counterproductive.
func (d *deflater) compress(payload []byte) (out []byte, ok bool) {
	if len(payload) < constants.MinimumDeflateSize {
		return payload, false
	}
	d.buf.Reset()
	d.w.Reset(&d.buf)
	if _, err := d.w.Write(payload); err != nil {
		return payload, false
	}
	if err := d.w.Flush(); err != nil {
		return payload, false
	}
	compressed := d.buf.Bytes()
	compressed = bytes.TrimSuffix(compressed, deflateTail)
	result := make([]byte, len(compressed))
	copy(result, compressed)
	return result, true
}

// inflate decompresses a permessage-deflate payload, re-appending the
// sync-flush marker the sender stripped before re-running inflate.
func inflate(payload []byte) ([]byte, error) {
	withTail := make([]byte, 0, len(payload)+len(deflateTail))
	withTail = append(withTail, payload...)
	withTail = append(withTail, deflateTail...)

	fr := flate.NewReader(bytes.NewReader(withTail))
	defer fr.Close()
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, errors.NewProtocolError("inflating permessage-deflate payload", err)
	}
	return out, nil
}
