// Package multipart implements a multipart/form-data reader and writer
// (RFC 2046 §5.1, RFC 7578), including unknown-length (-1) part support.
package multipart

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

// NewBoundary generates a random boundary string suitable for a Writer.
func NewBoundary() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return "----RawHTTPBoundary" + hex.EncodeToString(buf)
}

// Part is a single body part to be written: its own headers plus a body
// source. ContentLength is -1 if unknown.
type Part struct {
	Headers       *headers.Headers
	Body          io.Reader
	ContentLength int64
}

// Writer serializes a sequence of Parts as multipart/form-data.
type Writer struct {
	boundary string
	w        io.Writer
	closed   bool
}

// NewWriter returns a Writer that emits parts with the given boundary onto w.
func NewWriter(w io.Writer, boundary string) *Writer {
	return &Writer{boundary: boundary, w: w}
}

// Boundary returns the boundary in use.
func (mw *Writer) Boundary() string { return mw.boundary }

// WritePart emits one part: the boundary delimiter, its headers, a blank
// line, then the body.
func (mw *Writer) WritePart(p Part) error {
	if mw.closed {
		return errors.NewFramingError("writePart", "writer already closed")
	}
	if _, err := fmt.Fprintf(mw.w, "--%s\r\n", mw.boundary); err != nil {
		return errors.NewIOError("writing part boundary", err)
	}
	var writeErr error
	p.Headers.ForEach(func(name, value string) {
		if writeErr != nil {
			return
		}
		if _, err := fmt.Fprintf(mw.w, "%s: %s\r\n", name, value); err != nil {
			writeErr = errors.NewIOError("writing part header", err)
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if _, err := io.WriteString(mw.w, "\r\n"); err != nil {
		return errors.NewIOError("writing part header terminator", err)
	}
	if p.Body != nil {
		if _, err := io.Copy(mw.w, p.Body); err != nil {
			return errors.NewIOError("writing part body", err)
		}
	}
	if _, err := io.WriteString(mw.w, "\r\n"); err != nil {
		return errors.NewIOError("writing part trailer", err)
	}
	return nil
}

// Close emits the terminating boundary. The Writer does not compute a total
// content length, and Part.ContentLength is not read when a part is written.
func (mw *Writer) Close() error {
	if mw.closed {
		return nil
	}
	mw.closed = true
	if _, err := fmt.Fprintf(mw.w, "--%s--\r\n", mw.boundary); err != nil {
		return errors.NewIOError("writing closing boundary", err)
	}
	return nil
}

// Reader scans a multipart/form-data body delimited by boundary.
type Reader struct {
	r         *bufio.Reader
	boundary  []byte
	dashBound []byte
	done      bool
	current   *partReader
}

// NewReader returns a Reader over r using the given boundary (without the
// leading "--").
func NewReader(r io.Reader, boundary string) *Reader {
	return &Reader{
		r:         bufio.NewReader(r),
		boundary:  []byte(boundary),
		dashBound: []byte("--" + boundary),
	}
}

// NextPart advances to the next part, closing the previous one's body
// reader (discarding any unread bytes) first.
func (mr *Reader) NextPart() (*headers.Headers, io.Reader, error) {
	if mr.done {
		return nil, nil, io.EOF
	}
	var tail string
	if mr.current != nil {
		if _, err := io.Copy(io.Discard, mr.current); err != nil {
			return nil, nil, err
		}
		mr.current = nil
		// The part body consumed "\r\n--boundary"; read the rest of that line.
		next, err := mr.r.ReadString('\n')
		if err != nil {
			return nil, nil, errors.NewProtocolError("reading multipart boundary terminator", err)
		}
		tail = strings.TrimSpace(next)
	} else {
		line, err := mr.r.ReadString('\n')
		if err != nil {
			return nil, nil, errors.NewProtocolError("reading multipart boundary", err)
		}
		trimmed := strings.TrimRight(line, "\r\n")
		for !strings.HasPrefix(trimmed, string(mr.dashBound)) {
			line, err = mr.r.ReadString('\n')
			if err != nil {
				return nil, nil, errors.NewProtocolError("scanning for multipart boundary", err)
			}
			trimmed = strings.TrimRight(line, "\r\n")
		}
		tail = strings.TrimSpace(trimmed[len(mr.dashBound):])
	}
	if strings.HasPrefix(tail, "--") {
		mr.done = true
		return nil, nil, io.EOF
	}

	b := headers.NewBuilder()
	for {
		hline, err := mr.r.ReadString('\n')
		if err != nil {
			return nil, nil, errors.NewProtocolError("reading part headers", err)
		}
		htrim := strings.TrimRight(hline, "\r\n")
		if htrim == "" {
			break
		}
		b.AddLine(htrim)
	}

	pr := &partReader{mr: mr}
	mr.current = pr
	return b.Build(), pr, nil
}

// partReader exposes one part's body, stopping at the next boundary.
type partReader struct {
	mr  *Reader
	eof bool
}

// Read serves bytes up to (but never across) the next "\r\n--boundary"
// delimiter, using Peek so the delimiter is never consumed from the
// underlying bufio.Reader until the caller has seen EOF.
func (pr *partReader) Read(p []byte) (int, error) {
	if pr.eof {
		return 0, io.EOF
	}
	delim := append([]byte("\r\n--"), pr.mr.boundary...)

	peekSize := pr.mr.r.Size()
	peek, _ := pr.mr.r.Peek(peekSize)
	if idx := bytes.Index(peek, delim); idx >= 0 {
		if idx == 0 {
			pr.eof = true
			pr.mr.r.Discard(len(delim))
			return 0, io.EOF
		}
		n := copy(p, peek[:idx])
		pr.mr.r.Discard(n)
		return n, nil
	}

	// No delimiter in the buffered window: it's safe to hand over
	// everything except a delim-sized tail, which might be the start of a
	// boundary split across the next fill.
	safe := len(peek) - len(delim) + 1
	if safe <= 0 {
		// Buffer shorter than the delimiter itself; force a refill.
		if _, err := pr.mr.r.Peek(len(peek) + 1); err != nil {
			return 0, errors.NewProtocolError("multipart body ended without boundary", err)
		}
		return pr.Read(p)
	}
	if safe > len(p) {
		safe = len(p)
	}
	n := copy(p, peek[:safe])
	pr.mr.r.Discard(n)
	return n, nil
}
