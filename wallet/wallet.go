// Package wallet owns the device's expanded Ed25519 secret for the
// duration of a payment session: it signs message bytes and zeroizes
// the secret on Close.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/PlaiPin/x402-payer/base58"
)

// Wallet holds a 64-byte expanded Ed25519 secret (seed || public key, as
// produced by crypto/ed25519) for the lifetime of a payment session.
type Wallet struct {
	secret ed25519.PrivateKey // 64 bytes; trailing 32 bytes are the public key
	public ed25519.PublicKey
	closed bool
}

// Option configures a Wallet at construction.
type Option func(*Wallet) error

// New constructs a Wallet from the given options. Exactly one key-source
// option (WithSecretKey, WithKeygenFile, or WithGeneratedKey) must be given.
func New(opts ...Option) (*Wallet, error) {
	w := &Wallet{}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	if len(w.secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: no key source supplied (expected %d-byte secret)", ed25519.PrivateKeySize)
	}
	w.public = ed25519.PublicKey(w.secret[32:])
	if !publicMatches(w.secret, w.public) {
		return nil, fmt.Errorf("wallet: embedded public key does not match secret")
	}
	return w, nil
}

func publicMatches(secret ed25519.PrivateKey, public ed25519.PublicKey) bool {
	derived := secret.Public().(ed25519.PublicKey)
	if len(derived) != len(public) {
		return false
	}
	for i := range derived {
		if derived[i] != public[i] {
			return false
		}
	}
	return true
}

// WithSecretKey supplies the 64-byte expanded secret directly.
func WithSecretKey(secret []byte) Option {
	return func(w *Wallet) error {
		if len(secret) != ed25519.PrivateKeySize {
			return fmt.Errorf("wallet: secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(secret))
		}
		w.secret = append(ed25519.PrivateKey(nil), secret...)
		return nil
	}
}

// WithKeygenFile loads a 64-byte expanded secret from a JSON array of
// integers, the format produced by the Solana CLI's keygen tool and by
// this module's cmd/provision tool.
func WithKeygenFile(path string) Option {
	return func(w *Wallet) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("wallet: reading keygen file: %w", err)
		}
		var bytesAsInts []byte
		if err := json.Unmarshal(data, &bytesAsInts); err != nil {
			return fmt.Errorf("wallet: keygen file is not a JSON byte array: %w", err)
		}
		if len(bytesAsInts) != ed25519.PrivateKeySize {
			return fmt.Errorf("wallet: keygen file has %d bytes, want %d", len(bytesAsInts), ed25519.PrivateKeySize)
		}
		w.secret = append(ed25519.PrivateKey(nil), bytesAsInts...)
		return nil
	}
}

// WithGeneratedKey generates a fresh key from crypto/rand. Only intended
// for examples and tests; the device's production key is provisioned via
// cmd/provision and burned into flash, not generated in-process.
func WithGeneratedKey() Option {
	return func(w *Wallet) error {
		_, secret, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("wallet: key generation failed: %w", err)
		}
		w.secret = secret
		return nil
	}
}

// Sign produces a detached 64-byte Ed25519 signature over message.
func (w *Wallet) Sign(message []byte) ([]byte, error) {
	if w.closed {
		return nil, errClosed
	}
	return ed25519.Sign(w.secret, message), nil
}

// PublicKey returns the wallet's raw 32-byte public key.
func (w *Wallet) PublicKey() [32]byte {
	var out [32]byte
	copy(out[:], w.public)
	return out
}

// Address returns the wallet's public key in Base58 form.
func (w *Wallet) Address() string {
	return base58.Encode(w.public)
}

// Close zeroizes the secret key material. The Wallet must not be used
// after Close returns.
func (w *Wallet) Close() {
	for i := range w.secret {
		w.secret[i] = 0
	}
	w.closed = true
}

var errClosed = fmt.Errorf("wallet: wallet is closed")
