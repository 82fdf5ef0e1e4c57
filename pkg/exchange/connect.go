package exchange

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

// DiscardConnectBody consumes and discards the body of a CONNECT tunnel
// response that unexpectedly advertises a Content-Length (a well-behaved
// CONNECT response has none). It bounds the drain by the timeout argument
// rather than the short body-close budget; constants.ConnectBodyDiscardTimeout
// is the package's value for that argument.
func (c *Codec) DiscardConnectBody(h *headers.Headers, timeout time.Duration) error {
	cl, ok := h.Get("Content-Length")
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
	if err != nil || n <= 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := io.CopyN(io.Discard, c.socket.Reader(), n)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return errors.NewIOError("discarding CONNECT tunnel body", err)
		}
		return nil
	case <-time.After(timeout):
		c.reusable = false
		return errors.NewTimeoutError("discardConnectBody", timeout)
	}
}
