package connspec

import (
	"crypto/tls"
	"testing"
)

func TestApplyToModern(t *testing.T) {
	cfg := &tls.Config{}
	ModernSpec.ApplyTo(cfg)
	if cfg.MinVersion != tls.VersionTLS13 || cfg.MaxVersion != tls.VersionTLS13 {
		t.Fatalf("got min=%x max=%x", cfg.MinVersion, cfg.MaxVersion)
	}
}

func TestApplyToCleartextNoOp(t *testing.T) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	CleartextSpec.ApplyTo(cfg)
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Fatal("cleartext spec must not touch an existing config")
	}
}

func TestSupportsRejectsOutOfRangeVersion(t *testing.T) {
	if ModernSpec.Supports(tls.VersionTLS12, tls.TLS_AES_128_GCM_SHA256) {
		t.Fatal("modern spec must reject TLS 1.2")
	}
}

func TestSupportsAcceptsNegotiatedSuite(t *testing.T) {
	if !CompatibleSpec.Supports(tls.VersionTLS12, tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256) {
		t.Fatal("compatible spec should accept an ECDHE AEAD suite at 1.2")
	}
}

func TestForKindDefaultsToCompatible(t *testing.T) {
	if ForKind(Kind(99)).Kind != Compatible {
		t.Fatal("unknown kind should default to Compatible")
	}
}
