package exchange

import "github.com/jayo-projects/jayo-http-sub002/pkg/headers"

// TrailerState distinguishes "body hasn't finished yet", "body finished
// clean with no trailers (or trailers present)", and "body was cut short",
// rather than relying on a sentinel value's identity.
type TrailerState int

const (
	// TrailersPending: the body has not yet reached its end.
	TrailersPending TrailerState = iota
	// TrailersPresent: the body ended normally; Headers holds whatever
	// trailer fields (possibly none) the server sent.
	TrailersPresent
	// TrailersTruncated: the body ended before the protocol said it would
	// (premature EOF, size mismatch); no trailers are available.
	TrailersTruncated
)

// Trailers pairs a TrailerState with the trailer headers, when present.
type Trailers struct {
	State   TrailerState
	Headers *headers.Headers
}
