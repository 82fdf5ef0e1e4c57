package exchange

import (
	"strconv"
	"strings"

	"github.com/jayo-projects/jayo-http-sub002/pkg/constants"
	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
	"github.com/jayo-projects/jayo-http-sub002/pkg/headers"
)

// StatusLine is a parsed "HTTP/<major>.<minor> code [reason]" line.
type StatusLine struct {
	Major  int
	Minor  int
	Code   int
	Reason string
}

// ReadResponseHeaders reads one set of status line + headers. If the caller
// set expectContinue and the server answers 100, interim is true and code
// is 100; the caller should then proceed to write the request body and call
// ReadResponseHeaders again for the real response. Any other 1xx response,
// including a 100 when expectContinue was false, also sets interim and
// leaves the codec in StateReadResponseHeaders so the caller knows to loop.
// Only a status of 200 or above advances the codec to StateOpenResponseBody.
func (c *Codec) ReadResponseHeaders() (status StatusLine, h *headers.Headers, interim bool, err error) {
	if err = c.requireState("readResponseHeaders", StateIdle, StateOpenRequestBody,
		StateWritingRequestBody, StateReadResponseHeaders); err != nil {
		return
	}
	if c.canceled {
		err = errors.NewCancellationError("readResponseHeaders", nil)
		return
	}

	line, rerr := c.readBudgetedLine()
	if rerr != nil {
		err = errors.NewProtocolError("reading status line", rerr)
		return
	}
	status, err = parseStatusLine(line)
	if err != nil {
		return
	}

	h, err = c.readHeaderBlock()
	if err != nil {
		return
	}

	if status.Code == 100 && c.expectContinue {
		interim = true
		c.state = StateReadResponseHeaders
		return
	}
	if status.Code >= 100 && status.Code < 200 {
		interim = true
		c.state = StateReadResponseHeaders
		return
	}

	c.state = StateOpenResponseBody
	return
}

func parseStatusLine(line string) (StatusLine, error) {
	var s StatusLine
	if !strings.HasPrefix(line, "HTTP/") {
		return s, errors.NewProtocolError("malformed status line: "+line, nil)
	}
	rest := line[len("HTTP/"):]
	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return s, errors.NewProtocolError("malformed status line: "+line, nil)
	}
	version := rest[:sp]
	remainder := rest[sp+1:]

	dot := strings.IndexByte(version, '.')
	if dot < 0 {
		return s, errors.NewProtocolError("malformed HTTP version: "+version, nil)
	}
	major, err1 := strconv.Atoi(version[:dot])
	minor, err2 := strconv.Atoi(version[dot+1:])
	if err1 != nil || err2 != nil {
		return s, errors.NewProtocolError("malformed HTTP version: "+version, nil)
	}
	s.Major, s.Minor = major, minor

	codeStr := remainder
	reason := ""
	if sp2 := strings.IndexByte(remainder, ' '); sp2 >= 0 {
		codeStr = remainder[:sp2]
		reason = remainder[sp2+1:]
	}
	if len(codeStr) != 3 {
		return s, errors.NewProtocolError("status code must be exactly three digits: "+codeStr, nil)
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return s, errors.NewProtocolError("invalid status code: "+codeStr, err)
	}
	s.Code = code
	s.Reason = reason
	return s, nil
}

// readBudgetedLine reads one CRLF-terminated line (without the CRLF),
// deducting its length from the shared 256KiB status+header budget.
func (c *Codec) readBudgetedLine() (string, error) {
	line, err := c.socket.Reader().ReadString('\n')
	if err != nil {
		return "", err
	}
	c.headerBudgetUsed += len(line)
	if c.headerBudgetUsed > constants.HeaderBudget {
		return "", errors.NewProtocolError("status/header budget exceeded", nil)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Codec) readHeaderBlock() (*headers.Headers, error) {
	b := headers.NewBuilder()
	for {
		line, err := c.readBudgetedLine()
		if err != nil {
			return nil, errors.NewProtocolError("reading headers", err)
		}
		if line == "" {
			break
		}
		b.AddLine(line)
	}
	return b.Build(), nil
}
