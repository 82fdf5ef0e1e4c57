// Package tlstrust implements certificate pinning, trusted-chain cleaning,
// and RFC 2818 hostname verification on top of a completed TLS handshake.
package tlstrust

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"strings"

	"github.com/jayo-projects/jayo-http-sub002/pkg/errors"
)

// maxChainIterations bounds the chain-cleaning walk so a maliciously or
// accidentally self-referential certificate set can't loop forever.
const maxChainIterations = 9

// Pin is a single expected public-key pin: "sha256/" followed by the
// base64-standard-encoded SHA-256 of the certificate's SubjectPublicKeyInfo,
// matching the format used by HTTP Public Key Pinning and certificate
// pinning libraries generally.
type Pin string

// Pinner holds the set of pins configured per host. A host with no entry is
// unpinned and only ordinary chain/hostname verification applies.
type Pinner struct {
	pins map[string][]Pin
}

// NewPinner returns an empty Pinner.
func NewPinner() *Pinner {
	return &Pinner{pins: make(map[string][]Pin)}
}

// AddPin registers an additional acceptable pin for host.
func (p *Pinner) AddPin(host string, pin Pin) {
	p.pins[host] = append(p.pins[host], pin)
}

// Pins returns the configured pins for host, or nil if unpinned.
func (p *Pinner) Pins(host string) []Pin {
	return p.pins[host]
}

// ComputePin returns the sha256/... pin string for a certificate's public key.
func ComputePin(cert *x509.Certificate) Pin {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return Pin("sha256/" + base64.StdEncoding.EncodeToString(sum[:]))
}

// Verify checks host against a completed handshake's connection state:
// hostname verification has already run inside crypto/tls (VerifyHostname
// is re-run here defensively since some callers build ConnectionState by
// hand in tests), chain cleaning removes cross-signed/duplicate
// intermediates, and pinning is enforced if any pin is configured for host.
func (p *Pinner) Verify(host string, state tls.ConnectionState) error {
	if len(state.PeerCertificates) == 0 {
		return errors.NewTrustError(host, "no peer certificates presented")
	}

	leaf := state.PeerCertificates[0]
	if err := leaf.VerifyHostname(host); err != nil {
		return errors.NewTrustError(host, "hostname verification failed: "+err.Error())
	}

	chain := cleanChain(state.PeerCertificates)

	pins := p.pins[host]
	if len(pins) == 0 {
		return nil
	}
	for _, cert := range chain {
		want := ComputePin(cert)
		for _, pin := range pins {
			if pin == want {
				return nil
			}
		}
	}
	return errors.NewTrustError(host, "no configured pin matched the presented chain")
}

// cleanChain walks PeerCertificates from the leaf, following each
// certificate's issuer to the next entry that actually signed it, dropping
// unrelated or duplicate certificates a server sent but that don't belong
// on the verified path. Bounded to maxChainIterations hops.
func cleanChain(certs []*x509.Certificate) []*x509.Certificate {
	if len(certs) == 0 {
		return certs
	}
	cleaned := []*x509.Certificate{certs[0]}
	current := certs[0]
	seen := map[string]bool{string(current.Raw): true}

	for i := 0; i < maxChainIterations; i++ {
		if current.Issuer.String() == current.Subject.String() {
			break // self-signed root, nothing further to add
		}
		next := findIssuer(certs, current, seen)
		if next == nil {
			break
		}
		cleaned = append(cleaned, next)
		seen[string(next.Raw)] = true
		current = next
	}
	return cleaned
}

func findIssuer(certs []*x509.Certificate, cert *x509.Certificate, seen map[string]bool) *x509.Certificate {
	for _, candidate := range certs {
		if seen[string(candidate.Raw)] {
			continue
		}
		if candidate.Subject.String() != cert.Issuer.String() {
			continue
		}
		if cert.CheckSignatureFrom(candidate) == nil {
			return candidate
		}
	}
	return nil
}

// VerifyHostnamePattern checks name against a certificate DNS SAN pattern
// per RFC 6125/2818, allowing a single leftmost wildcard label. It exists
// alongside x509.Certificate.VerifyHostname for callers working from a raw
// pattern string rather than a parsed certificate (e.g. a pinned SAN list
// fetched out of band).
func VerifyHostnamePattern(pattern, name string) bool {
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(name)
	if pattern == name {
		return true
	}
	if !strings.HasPrefix(pattern, "*.") {
		return false
	}
	suffix := pattern[1:] // ".example.com"
	if !strings.HasSuffix(name, suffix) {
		return false
	}
	labelPart := name[:len(name)-len(suffix)]
	return labelPart != "" && !strings.Contains(labelPart, ".")
}
