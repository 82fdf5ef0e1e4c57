package websocket

import (
	"bytes"

	"github.com/gobwas/httphead"
)

// deflateExtensionName is the registered token for permessage-deflate
// (RFC 7692 §9).
const deflateExtensionName = "permessage-deflate"

// DeflateParams holds the negotiated permessage-deflate parameters that
// matter to this implementation; window-size bits are accepted but not
// acted on since klauspost/compress/flate always uses a full window.
type DeflateParams struct {
	Enabled                bool
	ServerNoContextTakeover bool
	ClientNoContextTakeover bool
}

// OfferDeflate returns the Sec-WebSocket-Extensions header value offering
// permessage-deflate with context takeover on both sides, the common case
// clients request and most servers accept unmodified.
func OfferDeflate() string {
	opt := httphead.Option{Name: []byte(deflateExtensionName)}
	var buf bytes.Buffer
	httphead.WriteOptions(&buf, []httphead.Option{opt})
	return buf.String()
}

// NegotiateDeflate parses a server's Sec-WebSocket-Extensions response
// header and reports the permessage-deflate parameters it selected, if any.
func NegotiateDeflate(headerValue string) DeflateParams {
	var params DeflateParams
	if headerValue == "" {
		return params
	}
	index := -1
	var inDeflate bool
	httphead.ScanOptions([]byte(headerValue), func(i int, name, attr, val []byte) httphead.Control {
		if i != index {
			index = i
			inDeflate = string(name) == deflateExtensionName
			if inDeflate {
				params.Enabled = true
			}
		}
		if !inDeflate || attr == nil {
			return httphead.ControlContinue
		}
		switch string(attr) {
		case "server_no_context_takeover":
			params.ServerNoContextTakeover = true
		case "client_no_context_takeover":
			params.ClientNoContextTakeover = true
		}
		return httphead.ControlContinue
	})
	return params
}
