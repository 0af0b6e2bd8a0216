package x402

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/PlaiPin/x402-payer/base58"
	"github.com/PlaiPin/x402-payer/facilitator"
	"github.com/PlaiPin/x402-payer/solanatx"
)

const paymentHeader = "X-PAYMENT"
const settlementHeader = "X-PAYMENT-RESPONSE"

// HTTPDoer is the minimal HTTP collaborator the driver consumes; *http.Client
// satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RPCCollaborator is the minimal JSON-RPC surface the driver consumes: a
// recent blockhash and the token program owning a given mint.
type RPCCollaborator interface {
	LatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) ([32]byte, error)
	MintOwner(ctx context.Context, mint [32]byte) ([32]byte, error)
}

// Wallet is the minimal signing capability the driver consumes.
type Wallet interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() [32]byte
}

// FacilitatorProbe is the minimal capability-probe surface the driver
// consumes to resolve a fee payer when the 402 body omits one.
type FacilitatorProbe interface {
	Supported(ctx context.Context) ([]facilitator.Capability, error)
}

// Driver runs the x402 two-phase request state machine described in
// SPEC_FULL.md §4.12.
type Driver struct {
	http        HTTPDoer
	rpc         RPCCollaborator
	wallet      Wallet
	facilitator FacilitatorProbe
	cfg         Config
}

// NewDriver constructs a Driver from its required collaborators and options.
func NewDriver(httpClient HTTPDoer, rpcClient RPCCollaborator, w Wallet, fac FacilitatorProbe, opts ...Option) (*Driver, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Driver{http: httpClient, rpc: rpcClient, wallet: w, facilitator: fac, cfg: cfg}, nil
}

// Fetch performs one x402-aware request: an unpaid attempt, and, on a 402
// challenge, a single signed paid retry. See SPEC_FULL.md §4.12 for the
// full state machine this implements.
func (d *Driver) Fetch(ctx context.Context, method, url string, body []byte) (*PaidResponse, error) {
	log := d.cfg.Logger
	log.Debug("x402: state=INIT", "url", url)

	unpaidCtx, cancel := context.WithTimeout(ctx, d.cfg.UnpaidTimeout)
	defer cancel()

	resp, respBody, err := d.doRequest(unpaidCtx, method, url, body, "")
	if err != nil {
		log.Warn("x402: state=FAILED", "kind", ErrKindTransport)
		return nil, NewPaymentError(ErrKindTransport, "initial request failed", err)
	}
	log.Debug("x402: state=AWAIT_INITIAL", "status", resp.StatusCode)

	if resp.StatusCode != http.StatusPaymentRequired {
		log.Debug("x402: state=DONE_UNPAID", "status", resp.StatusCode)
		return &PaidResponse{StatusCode: resp.StatusCode, Body: respBody, PaymentMade: false}, nil
	}

	log.Debug("x402: state=PARSE_CHALLENGE")
	reqs, err := ParseRequirements(respBody, log)
	if err != nil {
		kind := ErrKindChallengeParse
		if pe, ok := AsPaymentError(err); ok {
			kind = pe.Kind
		}
		log.Warn("x402: state=FAILED", "kind", kind, "err", err)
		return nil, err
	}

	log.Debug("x402: state=RESOLVE_FEE_PAYER")
	feePayer, err := d.resolveFeePayer(ctx, reqs)
	if err != nil {
		log.Warn("x402: state=FAILED", "kind", ErrKindFacilitatorUnsupported, "err", err)
		return nil, err
	}

	log.Debug("x402: state=BUILD_TX")
	envelope, err := d.buildAndSignEnvelope(ctx, reqs, feePayer)
	if err != nil {
		return nil, err
	}

	log.Debug("x402: state=ENVELOPE")

	log.Debug("x402: state=RETRY_WITH_PAYMENT")
	paidCtx, paidCancel := context.WithTimeout(ctx, d.cfg.PaidTimeout)
	defer paidCancel()

	retryResp, retryBody, err := d.doRequest(paidCtx, method, url, body, envelope)
	if err != nil {
		log.Warn("x402: state=FAILED", "kind", ErrKindTransport)
		return nil, NewPaymentError(ErrKindTransport, "paid retry failed", err)
	}

	if retryResp.StatusCode == http.StatusPaymentRequired {
		log.Warn("x402: state=FAILED", "kind", ErrKindPaymentRejected)
		return nil, NewPaymentError(ErrKindPaymentRejected, "payment rejected on retry", nil)
	}
	if retryResp.StatusCode < 200 || retryResp.StatusCode >= 300 {
		log.Debug("x402: state=DONE_PAID_FAIL", "status", retryResp.StatusCode)
		return &PaidResponse{StatusCode: retryResp.StatusCode, Body: retryBody, PaymentMade: true}, nil
	}

	log.Debug("x402: state=DECODE_RECEIPT")
	header := retryResp.Header.Get(settlementHeader)
	if header == "" {
		log.Warn("x402: state=DONE_PAID_UNVERIFIED")
		return &PaidResponse{StatusCode: retryResp.StatusCode, Body: retryBody, PaymentMade: true, Unverified: true}, nil
	}

	receipt, err := DecodeReceipt(header)
	if err != nil {
		log.Warn("x402: settlement header present but undecodable", "err", err)
		return &PaidResponse{StatusCode: retryResp.StatusCode, Body: retryBody, PaymentMade: true, Unverified: true}, nil
	}

	log.Debug("x402: state=DONE_PAID_OK")
	return &PaidResponse{
		StatusCode:  retryResp.StatusCode,
		Body:        retryBody,
		Header:      header,
		PaymentMade: true,
		Receipt:     receipt,
	}, nil
}

func (d *Driver) doRequest(ctx context.Context, method, url string, body []byte, paymentHeaderValue string) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, err
	}
	if paymentHeaderValue != "" {
		req.Header.Set(paymentHeader, paymentHeaderValue)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, respBody, nil
}

func (d *Driver) resolveFeePayer(ctx context.Context, reqs *PaymentRequirements) (string, error) {
	if reqs.FeePayer != "" {
		return reqs.FeePayer, nil
	}
	if d.facilitator == nil {
		return "", NewPaymentError(ErrKindFacilitatorUnsupported, "no fee payer in challenge and no facilitator configured", ErrNoFeePayer)
	}

	caps, err := d.facilitator.Supported(ctx)
	if err != nil {
		return "", NewPaymentError(ErrKindFacilitatorUnsupported, "facilitator /supported probe failed", err)
	}
	feePayer, ok := facilitator.FeePayerFor(caps, reqs.Network)
	if !ok {
		return "", NewPaymentError(ErrKindFacilitatorUnsupported, "facilitator has no matching network/fee payer", ErrNoFeePayer)
	}
	return feePayer, nil
}

func (d *Driver) buildAndSignEnvelope(ctx context.Context, reqs *PaymentRequirements, feePayerB58 string) (string, error) {
	rpcCtx, cancel := context.WithTimeout(ctx, d.cfg.RPCTimeout)
	defer cancel()

	amount, err := parseAmount(reqs.MaxAmountRequired)
	if err != nil {
		return "", NewPaymentError(ErrKindAmountInvalid, "maxAmountRequired invalid", err)
	}

	mintBytes, err := decodeKey(reqs.Asset)
	if err != nil {
		return "", NewPaymentError(ErrKindChallengeParse, "asset is not a valid public key", err)
	}
	tokenProgram, err := d.rpc.MintOwner(rpcCtx, mintBytes)
	if err != nil {
		return "", NewPaymentError(ErrKindMintUnsupported, "mint program probe failed", err)
	}

	ataProgram, err := decodeKey(AssociatedTokenProgramID)
	if err != nil {
		return "", NewPaymentError(ErrKindBuildOverflow, "invalid associated token program constant", err)
	}

	payerKey := d.wallet.PublicKey()
	sourceATA, _, err := solanatx.DeriveAssociatedTokenAddress(payerKey, mintBytes, tokenProgram, ataProgram)
	if err != nil {
		return "", NewPaymentError(ErrKindCrypto, "source ATA derivation failed", err)
	}

	recipientKey, err := decodeKey(reqs.Recipient)
	if err != nil {
		return "", NewPaymentError(ErrKindChallengeParse, "payTo is not a valid public key", err)
	}
	destATA, _, err := solanatx.DeriveAssociatedTokenAddress(recipientKey, mintBytes, tokenProgram, ataProgram)
	if err != nil {
		return "", NewPaymentError(ErrKindCrypto, "destination ATA derivation failed", err)
	}

	blockhash, err := d.rpc.LatestBlockhash(rpcCtx, rpc.CommitmentFinalized)
	if err != nil {
		return "", NewPaymentError(ErrKindTransport, "blockhash fetch failed", err)
	}

	feePayerKey, err := decodeKey(feePayerB58)
	if err != nil {
		return "", NewPaymentError(ErrKindChallengeParse, "fee payer is not a valid public key", err)
	}

	buf, err := solanatx.BuildTransfer(solanatx.TransferParams{
		FeePayer:     feePayerKey,
		Payer:        payerKey,
		SourceATA:    sourceATA,
		DestATA:      destATA,
		TokenProgram: tokenProgram,
		Amount:       amount,
		Blockhash:    blockhash,
	})
	if err != nil {
		return "", NewPaymentError(ErrKindBuildOverflow, "transaction assembly failed", err)
	}

	signed, err := solanatx.SignTransfer(buf, d.wallet)
	if err != nil {
		return "", NewPaymentError(ErrKindCrypto, "signing failed", err)
	}

	return EncodeEnvelope(reqs.Network, base64.StdEncoding.EncodeToString(signed))
}

func parseAmount(s string) (uint64, error) {
	if err := ValidateAmount(s); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		v = v*10 + uint64(s[i]-'0')
	}
	return v, nil
}

func decodeKey(b58 string) ([32]byte, error) {
	decoded, err := base58.Decode(b58)
	if err != nil {
		return [32]byte{}, err
	}
	if len(decoded) != 32 {
		return [32]byte{}, errKeyLength(len(decoded))
	}
	var out [32]byte
	copy(out[:], decoded)
	return out, nil
}

type errKeyLength int

func (e errKeyLength) Error() string {
	return "x402: decoded public key has wrong length"
}
