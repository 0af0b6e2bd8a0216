package x402

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/PlaiPin/x402-payer/base58"
	"github.com/PlaiPin/x402-payer/facilitator"
	"github.com/PlaiPin/x402-payer/wallet"
)

// fakeRPC is a test double for RPCCollaborator.
type fakeRPC struct {
	blockhash    [32]byte
	tokenProgram [32]byte
	blockhashErr error
	mintErr      error
}

func (f *fakeRPC) LatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) ([32]byte, error) {
	return f.blockhash, f.blockhashErr
}

func (f *fakeRPC) MintOwner(ctx context.Context, mint [32]byte) ([32]byte, error) {
	return f.tokenProgram, f.mintErr
}

// fakeFacilitator is a test double for FacilitatorProbe.
type fakeFacilitator struct {
	caps []facilitator.Capability
	err  error
}

func (f *fakeFacilitator) Supported(ctx context.Context) ([]facilitator.Capability, error) {
	return f.caps, f.err
}

func fixedKey(b byte) [32]byte {
	var k [32]byte
	for i := range k {
		k[i] = b
	}
	return k
}

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.New(wallet.WithGeneratedKey())
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}
	return w
}

func classicTokenProgramKey(t *testing.T) [32]byte {
	t.Helper()
	decoded, err := base58.Decode(TokenProgramIDClassic)
	if err != nil {
		t.Fatalf("decoding classic token program id: %v", err)
	}
	var out [32]byte
	copy(out[:], decoded)
	return out
}

func token2022ProgramKey(t *testing.T) [32]byte {
	t.Helper()
	decoded, err := base58.Decode(TokenProgramID2022)
	if err != nil {
		t.Fatalf("decoding token-2022 program id: %v", err)
	}
	var out [32]byte
	copy(out[:], decoded)
	return out
}

func challengeJSON(payTo, asset, network, maxAmount, feePayer string) []byte {
	body := map[string]interface{}{
		"x402Version": 1,
		"accepts": []map[string]interface{}{
			{
				"payTo":             payTo,
				"network":           network,
				"asset":             asset,
				"maxAmountRequired": maxAmount,
				"extra":             map[string]interface{}{},
			},
		},
	}
	if feePayer != "" {
		body["accepts"].([]map[string]interface{})[0]["extra"] = map[string]interface{}{"feePayer": feePayer}
	}
	raw, _ := json.Marshal(body)
	return raw
}

func TestDriverUnpaidPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	d, err := NewDriver(server.Client(), &fakeRPC{}, testWallet(t), nil)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	resp, err := d.Fetch(t.Context(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.PaymentMade {
		t.Fatal("expected no payment for a 200 response")
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestDriverHappyPaidPath(t *testing.T) {
	recipient := fixedKey(1)
	asset := fixedKey(2)
	feePayer := fixedKey(3)

	var sawPaymentHeader string
	first := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first {
			first = false
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write(challengeJSON(base58.Encode(recipient[:]), base58.Encode(asset[:]), NetworkDevnet, "1000", base58.Encode(feePayer[:])))
			return
		}
		sawPaymentHeader = r.Header.Get("X-PAYMENT")
		w.Header().Set("X-PAYMENT-RESPONSE", base64.StdEncoding.EncodeToString([]byte(`{"transaction":"abc","success":true,"network":"solana-devnet"}`)))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("paid ok"))
	}))
	defer server.Close()

	rpcDouble := &fakeRPC{blockhash: fixedKey(9), tokenProgram: classicTokenProgramKey(t)}
	d, err := NewDriver(server.Client(), rpcDouble, testWallet(t), nil)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	resp, err := d.Fetch(t.Context(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !resp.PaymentMade {
		t.Fatal("expected payment to be made")
	}
	if resp.Unverified {
		t.Fatal("expected a decoded receipt, not unverified")
	}
	if resp.Receipt == nil || !resp.Receipt.Success {
		t.Fatalf("expected a successful receipt, got %+v", resp.Receipt)
	}
	if sawPaymentHeader == "" {
		t.Fatal("expected the retried request to carry X-PAYMENT")
	}
}

func TestDriverToken2022MintVariant(t *testing.T) {
	recipient := fixedKey(1)
	asset := fixedKey(2)
	feePayer := fixedKey(3)

	first := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first {
			first = false
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write(challengeJSON(base58.Encode(recipient[:]), base58.Encode(asset[:]), NetworkDevnet, "1000", base58.Encode(feePayer[:])))
			return
		}
		w.Header().Set("X-PAYMENT-RESPONSE", base64.StdEncoding.EncodeToString([]byte(`{"transaction":"abc","success":true,"network":"solana-devnet"}`)))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rpcDouble := &fakeRPC{blockhash: fixedKey(9), tokenProgram: token2022ProgramKey(t)}
	d, err := NewDriver(server.Client(), rpcDouble, testWallet(t), nil)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	resp, err := d.Fetch(t.Context(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("Fetch with Token-2022 mint: %v", err)
	}
	if !resp.PaymentMade {
		t.Fatal("expected payment to be made against a Token-2022 mint")
	}
}

func TestDriverRejectedPayment(t *testing.T) {
	recipient := fixedKey(1)
	asset := fixedKey(2)
	feePayer := fixedKey(3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write(challengeJSON(base58.Encode(recipient[:]), base58.Encode(asset[:]), NetworkDevnet, "1000", base58.Encode(feePayer[:])))
	}))
	defer server.Close()

	rpcDouble := &fakeRPC{blockhash: fixedKey(9), tokenProgram: classicTokenProgramKey(t)}
	d, err := NewDriver(server.Client(), rpcDouble, testWallet(t), nil)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	_, err = d.Fetch(t.Context(), http.MethodGet, server.URL, nil)
	if err == nil {
		t.Fatal("expected an error when the facilitator rejects the payment on retry")
	}
	pe, ok := AsPaymentError(err)
	if !ok || pe.Kind != ErrKindPaymentRejected {
		t.Fatalf("expected ErrKindPaymentRejected, got %v", err)
	}
}

func TestDriverZeroAmountRejectedAtParse(t *testing.T) {
	recipient := fixedKey(1)
	asset := fixedKey(2)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write(challengeJSON(base58.Encode(recipient[:]), base58.Encode(asset[:]), NetworkDevnet, "0", ""))
	}))
	defer server.Close()

	d, err := NewDriver(server.Client(), &fakeRPC{}, testWallet(t), nil)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	_, err = d.Fetch(t.Context(), http.MethodGet, server.URL, nil)
	if err == nil {
		t.Fatal("expected an error for a zero maxAmountRequired")
	}
	pe, ok := AsPaymentError(err)
	if !ok || pe.Kind != ErrKindAmountInvalid {
		t.Fatalf("expected ErrKindAmountInvalid, got %v", err)
	}
}

func TestDriverMissingFeePayerUnresolvable(t *testing.T) {
	recipient := fixedKey(1)
	asset := fixedKey(2)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write(challengeJSON(base58.Encode(recipient[:]), base58.Encode(asset[:]), NetworkDevnet, "1000", ""))
	}))
	defer server.Close()

	fac := &fakeFacilitator{caps: []facilitator.Capability{{Network: NetworkMainnet, FeePayer: "someone"}}}
	d, err := NewDriver(server.Client(), &fakeRPC{}, testWallet(t), fac)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	_, err = d.Fetch(t.Context(), http.MethodGet, server.URL, nil)
	if err == nil {
		t.Fatal("expected an error when no fee payer can be resolved")
	}
	pe, ok := AsPaymentError(err)
	if !ok || pe.Kind != ErrKindFacilitatorUnsupported {
		t.Fatalf("expected ErrKindFacilitatorUnsupported, got %v", err)
	}
}
