// Package constants defines magic numbers and default values used throughout go-rawhttp
package constants

import "time"

// Connection timeouts and limits
const (
	DefaultIdleTimeout     = 90 * time.Second
	DefaultConnTimeout     = 10 * time.Second
	DefaultReadTimeout     = 30 * time.Second
	MaxConnectionIdleTime  = 5 * time.Minute
	HealthCheckInterval    = 30 * time.Second
	CleanupInterval        = 30 * time.Second
)

// HTTP limits
const (
	MaxContentLength = 1024 * 1024 * 1024 * 1024 // 1TB

	// HeaderBudget caps the combined size of the status/request line plus
	// all header lines read for a single exchange (RFC 7230 places no
	// fixed limit; this guards against a server that never sends a blank
	// line).
	HeaderBudget = 256 * 1024 // 256KiB

	// DiscardStreamTimeout bounds how long a body close() will spend
	// draining an unfinished response body before giving up on reusing
	// the connection.
	DiscardStreamTimeout = 100 * time.Millisecond

	// ConnectBodyDiscardTimeout bounds draining a CONNECT tunnel response
	// that unexpectedly carries a Content-Length.
	ConnectBodyDiscardTimeout = 5 * time.Second
)

// Buffer limits
const (
	DefaultBodyMemLimit = 4 * 1024 * 1024   // 4MB
	MaxRawBufferSize    = 100 * 1024 * 1024 // 100MB cap for raw buffer
)

// WebSocket limits
const (
	// MaxQueueSize caps the total bytes queued for a WebSocket session
	// across pending messages and the pending close frame before the
	// session fails itself with a going-away close.
	MaxQueueSize = 16 * 1024 * 1024 // 16MiB

	// DefaultPingInterval is how often a session pings its peer when no
	// other traffic has been sent.
	DefaultPingInterval = 15 * time.Second

	// CancelAfterClose bounds how long a session waits for the peer's
	// close frame after sending its own before hard-cancelling the socket.
	CancelAfterClose = 60 * time.Second

	// MinimumDeflateSize is the smallest payload permessage-deflate will
	// attempt to compress; smaller payloads are sent uncompressed since
	// the deflate framing overhead would dominate.
	MinimumDeflateSize = 1024
)
