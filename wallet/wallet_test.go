package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRequiresAKeySource(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error when no key-source option is given")
	}
}

func TestGeneratedWalletSignsAndVerifies(t *testing.T) {
	w, err := New(WithGeneratedKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	msg := []byte("pay the merchant")
	sig, err := w.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	pub := w.PublicKey()
	if !ed25519.Verify(pub[:], msg, sig) {
		t.Fatal("signature failed verification against the wallet's public key")
	}
}

func TestWithKeygenFileRoundTrip(t *testing.T) {
	_, secret, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	ints := make([]int, len(secret))
	for i, b := range secret {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	if err != nil {
		t.Fatalf("marshal keygen bytes: %v", err)
	}
	path := filepath.Join(t.TempDir(), "keygen.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write keygen file: %v", err)
	}

	w, err := New(WithKeygenFile(path))
	if err != nil {
		t.Fatalf("New(WithKeygenFile): %v", err)
	}
	if w.Address() == "" {
		t.Fatal("expected a non-empty Base58 address")
	}
}

func TestSignAfterCloseFails(t *testing.T) {
	w, err := New(WithGeneratedKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Close()
	if _, err := w.Sign([]byte("anything")); err == nil {
		t.Fatal("expected Sign to fail after Close")
	}
}

func TestWithSecretKeyRejectsWrongLength(t *testing.T) {
	if _, err := New(WithSecretKey([]byte{1, 2, 3})); err == nil {
		t.Fatal("expected error for a secret key of the wrong length")
	}
}
