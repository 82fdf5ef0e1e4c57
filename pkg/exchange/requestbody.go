package exchange

import (
	"fmt"
	"io"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
)

// RequestBodyWriter streams request body bytes in the framing the caller
// selected when the body was opened.
type RequestBodyWriter interface {
	io.Writer
	io.Closer
}

// fixedLengthRequestWriter passes bytes straight through to the socket and
// enforces that the caller never exceeds the declared Content-Length.
type fixedLengthRequestWriter struct {
	codec     *Codec
	remaining int64
}

func (w *fixedLengthRequestWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > w.remaining {
		return 0, errors.NewFramingError("writeRequestBody", "wrote more than declared Content-Length")
	}
	w.codec.state = StateWritingRequestBody
	n, err := w.codec.socket.Writer().Write(p)
	w.remaining -= int64(n)
	if err != nil {
		return n, errors.NewIOError("writing fixed request body", err)
	}
	return n, nil
}

func (w *fixedLengthRequestWriter) Close() error {
	if w.remaining != 0 {
		return errors.NewFramingError("closeRequestBody", "closed before declared Content-Length was written")
	}
	w.codec.finishRequestBody()
	return w.codec.socket.Writer().Flush()
}

// chunkedRequestWriter frames each Write call as one HTTP chunk.
type chunkedRequestWriter struct {
	codec *Codec
}

func (w *chunkedRequestWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	w.codec.state = StateWritingRequestBody
	writer := w.codec.socket.Writer()
	if _, err := fmt.Fprintf(writer, "%x\r\n", len(p)); err != nil {
		return 0, errors.NewIOError("writing chunk size", err)
	}
	n, err := writer.Write(p)
	if err != nil {
		return n, errors.NewIOError("writing chunk body", err)
	}
	if _, err := writer.WriteString("\r\n"); err != nil {
		return n, errors.NewIOError("writing chunk terminator", err)
	}
	return n, nil
}

func (w *chunkedRequestWriter) Close() error {
	writer := w.codec.socket.Writer()
	if _, err := writer.WriteString("0\r\n\r\n"); err != nil {
		return errors.NewIOError("writing final chunk", err)
	}
	w.codec.finishRequestBody()
	return writer.Flush()
}
