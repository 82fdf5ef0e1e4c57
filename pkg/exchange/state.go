package exchange

// State is the Codec's position in a single request/response exchange.
type State int

const (
	// StateIdle: nothing written yet.
	StateIdle State = iota
	// StateOpenRequestBody: request headers written, no byte of the
	// request body written yet.
	StateOpenRequestBody
	// StateWritingRequestBody: at least one byte of the request body has
	// been written.
	StateWritingRequestBody
	// StateReadResponseHeaders: entered once the request is fully sent
	// (or when expecting a 100-continue); ReadResponseHeaders may be
	// called repeatedly from here to drain 1xx interim responses.
	StateReadResponseHeaders
	// StateOpenResponseBody: final response headers read; OpenResponseBody
	// has not been called yet.
	StateOpenResponseBody
	// StateReadingResponseBody: OpenResponseBody has chosen a body framer
	// and the body has not reached its end.
	StateReadingResponseBody
	// StateClosed: the exchange is finished; the Codec must not be reused.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpenRequestBody:
		return "open_request_body"
	case StateWritingRequestBody:
		return "writing_request_body"
	case StateReadResponseHeaders:
		return "read_response_headers"
	case StateOpenResponseBody:
		return "open_response_body"
	case StateReadingResponseBody:
		return "reading_response_body"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
