package facilitator

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSupportedParsesFeePayer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/supported" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"kinds":[{"x402Version":1,"scheme":"exact","network":"solana-devnet","extra":{"feePayer":"KoraFeePayer111111111111111111111111111111111"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil, nil)
	caps, err := client.Supported(t.Context())
	if err != nil {
		t.Fatalf("Supported: %v", err)
	}
	if len(caps) != 1 {
		t.Fatalf("expected 1 capability, got %d", len(caps))
	}

	feePayer, ok := FeePayerFor(caps, "solana-devnet")
	if !ok {
		t.Fatal("expected a matching fee payer for solana-devnet")
	}
	if feePayer != "KoraFeePayer111111111111111111111111111111111" {
		t.Fatalf("unexpected fee payer: %s", feePayer)
	}
}

func TestFeePayerForNoMatch(t *testing.T) {
	caps := []Capability{{Network: "solana-mainnet", FeePayer: "x"}}
	if _, ok := FeePayerFor(caps, "solana-devnet"); ok {
		t.Fatal("expected no match for an unrelated network")
	}
}

func TestSupportedNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, nil, nil)
	if _, err := client.Supported(t.Context()); err == nil {
		t.Fatal("expected error for a non-200 /supported response")
	}
}
