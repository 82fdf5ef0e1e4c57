package tlstrust

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

func mustCert(t *testing.T, template, parent *x509.Certificate, pub any, signerKey any) *x509.Certificate {
	t.Helper()
	der, err := x509.CreateCertificate(rand.Reader, template, parent, pub, signerKey)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return cert
}

func buildChain(t *testing.T, host string) (leaf, ca *x509.Certificate) {
	t.Helper()
	caKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test Root CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	ca = mustCert(t, caTemplate, caTemplate, &caKey.PublicKey, caKey)

	leafKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: host},
		DNSNames:     []string{host},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leaf = mustCert(t, leafTemplate, ca, &leafKey.PublicKey, caKey)
	return leaf, ca
}

func TestVerifyAcceptsMatchingHostname(t *testing.T) {
	leaf, ca := buildChain(t, "example.com")
	p := NewPinner()
	state := tls.ConnectionState{PeerCertificates: []*x509.Certificate{leaf, ca}}
	if err := p.Verify("example.com", state); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyRejectsWrongHostname(t *testing.T) {
	leaf, ca := buildChain(t, "example.com")
	p := NewPinner()
	state := tls.ConnectionState{PeerCertificates: []*x509.Certificate{leaf, ca}}
	if err := p.Verify("attacker.test", state); err == nil {
		t.Fatal("expected hostname mismatch to fail")
	}
}

func TestVerifyEnforcesPin(t *testing.T) {
	leaf, ca := buildChain(t, "example.com")
	p := NewPinner()
	p.AddPin("example.com", ComputePin(leaf))
	state := tls.ConnectionState{PeerCertificates: []*x509.Certificate{leaf, ca}}
	if err := p.Verify("example.com", state); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyRejectsWrongPin(t *testing.T) {
	leaf, ca := buildChain(t, "example.com")
	other, _ := buildChain(t, "other.com")
	p := NewPinner()
	p.AddPin("example.com", ComputePin(other))
	state := tls.ConnectionState{PeerCertificates: []*x509.Certificate{leaf, ca}}
	if err := p.Verify("example.com", state); err == nil {
		t.Fatal("expected pin mismatch to fail")
	}
}

func TestVerifyHostnamePatternWildcard(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*.example.com", "foo.example.com", true},
		{"*.example.com", "example.com", false},
		{"*.example.com", "foo.bar.example.com", false},
		{"example.com", "example.com", true},
	}
	for _, c := range cases {
		if got := VerifyHostnamePattern(c.pattern, c.name); got != c.want {
			t.Errorf("VerifyHostnamePattern(%q, %q) = %v, want %v", c.pattern, c.name, got, c.want)
		}
	}
}

func TestCleanChainFollowsIssuer(t *testing.T) {
	leaf, ca := buildChain(t, "example.com")
	cleaned := cleanChain([]*x509.Certificate{leaf, ca})
	if len(cleaned) != 2 {
		t.Fatalf("expected 2-cert cleaned chain, got %d", len(cleaned))
	}
	if cleaned[0] != leaf || cleaned[1] != ca {
		t.Fatal("cleaned chain out of order")
	}
}
