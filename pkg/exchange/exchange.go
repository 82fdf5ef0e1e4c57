// Package exchange implements the HTTP/1.1 wire codec: request line and
// header serialization, fixed/chunked request body framing, status-line and
// header parsing, and fixed/chunked/unknown-length response body framing
// with trailers, 100-Continue, and CONNECT tunnel handling (RFC 7230).
package exchange

import (
	"fmt"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

// Codec sequences exactly one HTTP/1.1 request/response pair on a Socket.
// It is not safe for concurrent use and must not be reused past
// StateClosed.
type Codec struct {
	socket Socket
	state  State

	headerBudgetUsed int
	expectContinue   bool

	reusable     bool
	canceled     bool
	responseBody bodyReader
}

// New returns a Codec ready to write a request on socket.
func New(socket Socket) *Codec {
	return &Codec{socket: socket, state: StateIdle, reusable: true}
}

// State returns the codec's current position in the exchange.
func (c *Codec) State() State { return c.state }

// Reusable reports whether the underlying connection can be returned to a
// pool once the exchange finishes. It is cleared as soon as a framing
// decision is made that cannot guarantee the stream position is recoverable
// (an unknown-length body, or a body that did not drain cleanly on close).
func (c *Codec) Reusable() bool { return c.reusable && !c.canceled }

// Cancel aborts the exchange cooperatively: the underlying socket is closed
// and any further operation on the codec reports a cancellation error.
func (c *Codec) Cancel() error {
	c.canceled = true
	c.state = StateClosed
	return c.socket.Close()
}

func (c *Codec) requireState(op string, allowed ...State) error {
	if c.canceled {
		return errors.NewCancellationError(op, nil)
	}
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	return errors.NewFramingError(op, fmt.Sprintf("invalid state %s for %s", c.state, op))
}

// WriteRequestLine writes "METHOD SP target SP HTTP/1.1 CRLF". target is
// the request path+query for an origin-form request, or the absolute URL
// when addressing an HTTP proxy.
func (c *Codec) WriteRequestLine(method, target string) error {
	if err := c.requireState("writeRequestLine", StateIdle); err != nil {
		return err
	}
	if c.canceled {
		return errors.NewCancellationError("writeRequestLine", nil)
	}
	w := c.socket.Writer()
	if _, err := fmt.Fprintf(w, "%s %s HTTP/1.1\r\n", method, target); err != nil {
		return errors.NewIOError("writing request line", err)
	}
	return nil
}

// WriteRequestHeaders writes each header in h, in order, terminated by the
// blank line that ends the header block. expectContinue marks that the
// caller sent "Expect: 100-continue" and ReadResponseHeaders should return a
// sentinel on a 100 response rather than treating it as final.
func (c *Codec) WriteRequestHeaders(h *headers.Headers, expectContinue bool) error {
	if err := c.requireState("writeRequestHeaders", StateIdle); err != nil {
		return err
	}
	w := c.socket.Writer()
	var writeErr error
	h.ForEach(func(name, value string) {
		if writeErr != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", name, value); err != nil {
			writeErr = errors.NewIOError("writing request header", err)
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return errors.NewIOError("writing request header terminator", err)
	}
	c.expectContinue = expectContinue
	c.state = StateOpenRequestBody
	return w.Flush()
}

// OpenFixedRequestBody returns a writer for a request body of exactly
// contentLength bytes. Writing more than contentLength is a framing error.
func (c *Codec) OpenFixedRequestBody(contentLength int64) (RequestBodyWriter, error) {
	if err := c.requireState("openFixedRequestBody", StateOpenRequestBody, StateReadResponseHeaders); err != nil {
		return nil, err
	}
	return &fixedLengthRequestWriter{codec: c, remaining: contentLength}, nil
}

// OpenChunkedRequestBody returns a writer that frames every Write call as
// one chunk and emits the terminating "0\r\n\r\n" on Close.
func (c *Codec) OpenChunkedRequestBody() (RequestBodyWriter, error) {
	if err := c.requireState("openChunkedRequestBody", StateOpenRequestBody, StateReadResponseHeaders); err != nil {
		return nil, err
	}
	return &chunkedRequestWriter{codec: c}, nil
}

// NoRequestBody declares the request has no body (GET, HEAD, etc.) and
// advances straight to waiting for the response.
func (c *Codec) NoRequestBody() error {
	if err := c.requireState("noRequestBody", StateOpenRequestBody); err != nil {
		return err
	}
	c.state = StateReadResponseHeaders
	return nil
}

func (c *Codec) finishRequestBody() {
	c.state = StateReadResponseHeaders
}
