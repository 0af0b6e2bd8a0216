package x402

import (
	"encoding/base64"
	"encoding/json"
)

const x402Version = 1
const schemeExact = "exact"

// paymentPayload is the inner payload of the envelope, carrying the base64
// transaction bytes under the "transaction" key.
type paymentPayload struct {
	Transaction string `json:"transaction"`
}

// paymentEnvelope is the flat JSON object transmitted as the X-PAYMENT header,
// base64-encoded. It deliberately has no nested "kind" wrapper: an earlier
// internal variant nested the payload under kind and facilitators rejected it.
type paymentEnvelope struct {
	X402Version int            `json:"x402Version"`
	Scheme      string         `json:"scheme"`
	Network     string         `json:"network"`
	Payload     paymentPayload `json:"payload"`
}

// EncodeEnvelope builds the X-PAYMENT header value for a signed transaction.
func EncodeEnvelope(network string, txBase64 string) (string, error) {
	env := paymentEnvelope{
		X402Version: x402Version,
		Scheme:      schemeExact,
		Network:     network,
		Payload:     paymentPayload{Transaction: txBase64},
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", NewPaymentError(ErrKindBuildOverflow, "failed to marshal payment envelope", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeReceipt decodes the X-PAYMENT-RESPONSE header value into a SettlementReceipt.
func DecodeReceipt(header string) (*SettlementReceipt, error) {
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, NewPaymentError(ErrKindReceiptDecode, "settlement header is not valid base64", err)
	}
	var receipt SettlementReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, NewPaymentError(ErrKindReceiptDecode, "settlement header is not valid JSON", err)
	}
	return &receipt, nil
}
