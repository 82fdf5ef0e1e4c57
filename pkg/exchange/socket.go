package exchange

import (
	"bufio"
	"io"
)

// Socket is the byte-oriented duplex transport a Codec drives. It pairs a
// buffered reader (so status lines, header lines, and chunk-size lines can
// be scanned without extra copies) with a buffered writer, plus the means
// to tear the connection down. pkg/transport's pooled net.Conn satisfies
// this directly once wrapped in bufio.
type Socket interface {
	Reader() *bufio.Reader
	Writer() *bufio.Writer
	io.Closer
}

// connSocket is the straightforward Socket built from any io.ReadWriteCloser.
type connSocket struct {
	rw io.ReadWriteCloser
	r  *bufio.Reader
	w  *bufio.Writer
}

// NewSocket wraps rw (typically a net.Conn) as a Socket.
func NewSocket(rw io.ReadWriteCloser) Socket {
	return &connSocket{
		rw: rw,
		r:  bufio.NewReader(rw),
		w:  bufio.NewWriter(rw),
	}
}

func (s *connSocket) Reader() *bufio.Reader { return s.r }
func (s *connSocket) Writer() *bufio.Writer { return s.w }
func (s *connSocket) Close() error          { return s.rw.Close() }
