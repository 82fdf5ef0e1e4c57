// Package connspec provides the connection-spec presets (TLS parameter
// bundles) a client chooses between per RFC 8446 and the legacy SSL/TLS
// version/cipher landscape, plus a cleartext spec for http:// origins.
package connspec

import "crypto/tls"

// Kind names one of the four preset tiers.
type Kind int

const (
	// Modern restricts to TLS 1.3 only.
	Modern Kind = iota
	// Compatible allows TLS 1.2-1.3 with AEAD cipher suites, the default
	// for ordinary HTTPS origins.
	Compatible
	// Legacy allows TLS 1.0-1.3, including CBC suites, for servers that
	// cannot do better.
	Legacy
	// Cleartext carries no TLS parameters; it marks a plain http:// origin.
	Cleartext
)

func (k Kind) String() string {
	switch k {
	case Modern:
		return "MODERN"
	case Compatible:
		return "COMPATIBLE"
	case Legacy:
		return "LEGACY"
	case Cleartext:
		return "CLEARTEXT"
	default:
		return "UNKNOWN"
	}
}

// Spec is a concrete, immutable bundle of TLS parameters: the version
// range, the cipher suites (in preference order, for TLS <= 1.2), and
// whether TLS is used at all.
type Spec struct {
	Kind         Kind
	TLS          bool
	MinVersion   uint16
	MaxVersion   uint16
	CipherSuites []uint16 // nil lets TLS 1.3 negotiate its own suites
}

// tls13Suites is fixed by the runtime for TLS 1.3; listed here only for
// name-based comparisons in Spec.Supports.
var tls13Suites = []uint16{
	tls.TLS_AES_128_GCM_SHA256,
	tls.TLS_AES_256_GCM_SHA384,
	tls.TLS_CHACHA20_POLY1305_SHA256,
}

var tls12SecureSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
}

var tls12CompatibleSuites = append(append([]uint16{}, tls12SecureSuites...),
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA,
	tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA,
	tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
)

// ModernSpec restricts the handshake to TLS 1.3.
var ModernSpec = Spec{Kind: Modern, TLS: true, MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13}

// CompatibleSpec allows TLS 1.2-1.3 with AEAD-only suites at 1.2.
var CompatibleSpec = Spec{
	Kind:         Compatible,
	TLS:          true,
	MinVersion:   tls.VersionTLS12,
	MaxVersion:   tls.VersionTLS13,
	CipherSuites: tls12SecureSuites,
}

// LegacySpec allows TLS 1.0-1.3, including CBC suites at 1.0-1.2.
var LegacySpec = Spec{
	Kind:         Legacy,
	TLS:          true,
	MinVersion:   tls.VersionTLS10,
	MaxVersion:   tls.VersionTLS13,
	CipherSuites: tls12CompatibleSuites,
}

// CleartextSpec carries no TLS parameters.
var CleartextSpec = Spec{Kind: Cleartext, TLS: false}

// ForKind returns the named preset.
func ForKind(k Kind) Spec {
	switch k {
	case Modern:
		return ModernSpec
	case Legacy:
		return LegacySpec
	case Cleartext:
		return CleartextSpec
	default:
		return CompatibleSpec
	}
}

// ApplyTo configures a *tls.Config to this spec's version range and cipher
// suites. A nil *tls.Config for a Cleartext spec is valid and does nothing.
func (s Spec) ApplyTo(cfg *tls.Config) {
	if !s.TLS || cfg == nil {
		return
	}
	cfg.MinVersion = s.MinVersion
	cfg.MaxVersion = s.MaxVersion
	if s.MaxVersion <= tls.VersionTLS12 {
		cfg.CipherSuites = s.CipherSuites
	} else if s.MinVersion < tls.VersionTLS13 {
		// Connection may negotiate down to 1.2; still offer the suite list.
		cfg.CipherSuites = s.CipherSuites
	}
}

// Supports reports whether a negotiated (version, cipherSuite) pair falls
// within this spec, used to verify a completed handshake didn't silently
// fall back to a weaker combination than requested (a TLS_FALLBACK_SCSV
// style downgrade check performed after the fact since crypto/tls itself
// enforces MinVersion/CipherSuites during the handshake).
func (s Spec) Supports(version, cipherSuite uint16) bool {
	if !s.TLS {
		return false
	}
	if version < s.MinVersion || version > s.MaxVersion {
		return false
	}
	if version == tls.VersionTLS13 {
		return suiteNameMatches(cipherSuite, tls13Suites)
	}
	if s.CipherSuites == nil {
		return true
	}
	return suiteNameMatches(cipherSuite, s.CipherSuites)
}

// suiteNameMatches compares cipher suites by their registered name rather
// than numeric ID, since Go's TLS 1.3 suite IDs and a spec's recorded IDs
// may come from different tls package versions in principle.
func suiteNameMatches(suite uint16, allowed []uint16) bool {
	name := tls.CipherSuiteName(suite)
	for _, a := range allowed {
		if tls.CipherSuiteName(a) == name {
			return true
		}
	}
	return false
}

// VersionName returns a human-readable TLS version name.
func VersionName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return "unknown"
	}
}
