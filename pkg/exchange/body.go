package exchange

import (
	"io"
	"strconv"
	"strings"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

// bodyReader is the shared shape of the three response body framings.
type bodyReader interface {
	io.ReadCloser
	trailers() Trailers
}

// OpenResponseBody chooses the correct body framer for the response just
// read via ReadResponseHeaders, per RFC 7230 §3.3.3: HEAD/1xx/204/304 never
// carry a body; Transfer-Encoding: chunked takes priority over
// Content-Length; otherwise a present, non-negative Content-Length is used;
// failing all of those, the body runs until the connection closes and the
// connection is marked non-reusable.
func (c *Codec) OpenResponseBody(requestMethod string, status StatusLine, h *headers.Headers) (io.ReadCloser, error) {
	if err := c.requireState("openResponseBody", StateOpenResponseBody); err != nil {
		return nil, err
	}

	if !promisesBody(requestMethod, status.Code) {
		c.responseBody = &fixedLengthBodyReader{codec: c, remaining: 0, state: TrailersPresent}
		c.state = StateClosed
		return c.responseBody, nil
	}

	te, _ := h.Get("Transfer-Encoding")
	if strings.Contains(strings.ToLower(te), "chunked") {
		c.responseBody = &chunkedBodyReader{codec: c}
		c.state = StateReadingResponseBody
		return c.responseBody, nil
	}

	if cl, ok := h.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return nil, errors.NewProtocolError("invalid Content-Length: "+cl, err)
		}
		c.responseBody = &fixedLengthBodyReader{codec: c, remaining: n}
		if n == 0 {
			c.responseBody.(*fixedLengthBodyReader).state = TrailersPresent
			c.state = StateClosed
		} else {
			c.state = StateReadingResponseBody
		}
		return c.responseBody, nil
	}

	c.reusable = false
	c.responseBody = &unknownLengthBodyReader{codec: c}
	c.state = StateReadingResponseBody
	return c.responseBody, nil
}

func promisesBody(method string, statusCode int) bool {
	if method == "HEAD" {
		return false
	}
	if statusCode >= 100 && statusCode < 200 {
		return false
	}
	switch statusCode {
	case 204, 304:
		return false
	}
	return true
}

// PeekTrailers returns the latest trailer state. It is only meaningful once
// the body reader has reported io.EOF (TrailersPresent) or failed with a
// truncation (TrailersTruncated); calling it earlier yields TrailersPending.
func (c *Codec) PeekTrailers() (Trailers, error) {
	if err := c.requireState("peekTrailers", StateReadingResponseBody, StateClosed); err != nil {
		return Trailers{}, err
	}
	if c.responseBody == nil {
		return Trailers{State: TrailersPending}, nil
	}
	return c.responseBody.trailers(), nil
}

// ---- fixed length ----

type fixedLengthBodyReader struct {
	codec     *Codec
	remaining int64
	state     TrailerState
}

func (r *fixedLengthBodyReader) Read(p []byte) (int, error) {
	if r.remaining == 0 {
		r.state = TrailersPresent
		r.codec.state = StateClosed
		return 0, io.EOF
	}
	r.codec.state = StateReadingResponseBody
	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	n, err := r.codec.socket.Reader().Read(p)
	r.remaining -= int64(n)
	if err != nil {
		if err == io.EOF && r.remaining > 0 {
			r.state = TrailersTruncated
			r.codec.reusable = false
			return n, errors.NewEOFError("readFixedBody", io.ErrUnexpectedEOF)
		}
		return n, errors.NewIOError("reading fixed body", err)
	}
	if r.remaining == 0 {
		r.state = TrailersPresent
		r.codec.state = StateClosed
	}
	return n, nil
}

func (r *fixedLengthBodyReader) Close() error {
	if r.remaining > 0 {
		return r.codec.discardRemaining(r)
	}
	return nil
}

func (r *fixedLengthBodyReader) trailers() Trailers {
	return Trailers{State: r.state}
}

// ---- chunked ----

type chunkedBodyReader struct {
	codec          *Codec
	currentChunk   int64
	finished       bool
	state          TrailerState
	trailerHeaders *headers.Headers
}

func (r *chunkedBodyReader) Read(p []byte) (int, error) {
	if r.finished {
		return 0, io.EOF
	}
	r.codec.state = StateReadingResponseBody

	if r.currentChunk == 0 {
		size, err := r.readChunkSize()
		if err != nil {
			return 0, err
		}
		if size == 0 {
			trailers, err := r.codec.readHeaderBlock()
			if err != nil {
				r.state = TrailersTruncated
				r.codec.reusable = false
				return 0, err
			}
			r.trailerHeaders = trailers
			r.state = TrailersPresent
			r.finished = true
			r.codec.state = StateClosed
			return 0, io.EOF
		}
		r.currentChunk = size
	}

	if int64(len(p)) > r.currentChunk {
		p = p[:r.currentChunk]
	}
	n, err := r.codec.socket.Reader().Read(p)
	r.currentChunk -= int64(n)
	if err != nil {
		r.state = TrailersTruncated
		r.codec.reusable = false
		return n, errors.NewEOFError("readChunkedBody", err)
	}
	if r.currentChunk == 0 {
		if _, err := io.CopyN(io.Discard, r.codec.socket.Reader(), 2); err != nil {
			r.state = TrailersTruncated
			r.codec.reusable = false
			return n, errors.NewEOFError("readChunkCRLF", err)
		}
	}
	return n, nil
}

func (r *chunkedBodyReader) readChunkSize() (int64, error) {
	line, err := r.codec.readBudgetedLine()
	if err != nil {
		return 0, errors.NewProtocolError("reading chunk size", err)
	}
	sizeStr := line
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		sizeStr = line[:idx]
	}
	sizeStr = strings.TrimSpace(sizeStr)
	size, err := strconv.ParseInt(sizeStr, 16, 64)
	if err != nil {
		return 0, errors.NewProtocolError("invalid chunk size: "+line, err)
	}
	return size, nil
}

func (r *chunkedBodyReader) Close() error {
	if !r.finished {
		return r.codec.discardRemaining(r)
	}
	return nil
}

func (r *chunkedBodyReader) trailers() Trailers {
	return Trailers{State: r.state, Headers: r.trailerHeaders}
}

// ---- unknown length (read until close) ----

type unknownLengthBodyReader struct {
	codec     *Codec
	finished  bool
	truncated bool
}

func (r *unknownLengthBodyReader) Read(p []byte) (int, error) {
	if r.finished {
		return 0, io.EOF
	}
	r.codec.state = StateReadingResponseBody
	n, err := r.codec.socket.Reader().Read(p)
	if err == io.EOF {
		r.finished = true
		r.codec.state = StateClosed
	} else if err != nil {
		return n, errors.NewIOError("reading until close", err)
	}
	return n, err
}

func (r *unknownLengthBodyReader) Close() error {
	if !r.finished {
		// No framing signal exists to know when this body ends short of
		// EOF; discarding further would simply race the peer's FIN. Mark
		// non-reusable (already done when the reader was constructed) and
		// report the stream as truncated.
		r.finished = true
		r.truncated = true
	}
	return nil
}

func (r *unknownLengthBodyReader) trailers() Trailers {
	if r.truncated {
		return Trailers{State: TrailersTruncated}
	}
	if r.finished {
		return Trailers{State: TrailersPresent}
	}
	return Trailers{State: TrailersPending}
}

// discardRemaining attempts to drain body to completion within
// DISCARD_STREAM_TIMEOUT so the connection can be reused; on timeout or
// error it marks the connection non-reusable.
func (c *Codec) discardRemaining(r bodyReader) error {
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, r)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil && err != io.EOF {
			c.reusable = false
			return err
		}
		return nil
	case <-afterDiscardTimeout():
		c.reusable = false
		return nil
	}
}
