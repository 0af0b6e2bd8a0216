package x402

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

const defaultNetwork = "solana-devnet"

// challengeBody mirrors the wire shape of a 402 response body: the top-level
// x402Version/error fields plus the accepts array this parser actually reads.
type challengeBody struct {
	X402Version int `json:"x402Version"`
	Error       string `json:"error"`
	Accepts     []struct {
		PayTo             string                 `json:"payTo"`
		Network           string                 `json:"network"`
		Asset             string                 `json:"asset"`
		MaxAmountRequired string                 `json:"maxAmountRequired"`
		Extra             map[string]interface{} `json:"extra"`
	} `json:"accepts"`
}

// ParseRequirements decodes a 402 response body into PaymentRequirements,
// taking the first entry of the accepts array and ignoring the rest.
func ParseRequirements(body []byte, logger *slog.Logger) (*PaymentRequirements, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var parsed challengeBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewPaymentError(ErrKindChallengeParse, "402 body is not valid JSON", err)
	}
	if len(parsed.Accepts) == 0 {
		return nil, NewPaymentError(ErrKindChallengeParse, "402 body has no accepts entries", nil)
	}

	first := parsed.Accepts[0]

	req := &PaymentRequirements{
		Recipient:         first.PayTo,
		Asset:             first.Asset,
		MaxAmountRequired: first.MaxAmountRequired,
		Network:           first.Network,
	}

	if req.Network == "" {
		logger.Warn("402 challenge missing network, defaulting", "default", defaultNetwork)
		req.Network = defaultNetwork
	}
	if err := ValidateNetwork(req.Network); err != nil {
		return nil, NewPaymentError(ErrKindChallengeParse, fmt.Sprintf("accepts[0].network %q is not recognized", req.Network), err)
	}

	if fp, ok := first.Extra["feePayer"].(string); ok {
		req.FeePayer = fp
	}

	if !req.Valid() {
		return nil, NewPaymentError(ErrKindChallengeParse, "accepts[0] is missing a required field (payTo/asset/maxAmountRequired/network)", nil)
	}

	if err := ValidateAmount(req.MaxAmountRequired); err != nil {
		return nil, NewPaymentError(ErrKindAmountInvalid, "accepts[0].maxAmountRequired is invalid", err)
	}

	return req, nil
}

// ValidateAmount reports whether amount parses as a non-zero unsigned 64-bit integer.
func ValidateAmount(amount string) error {
	if amount == "" {
		return fmt.Errorf("amount is empty")
	}
	val, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return fmt.Errorf("amount %q does not fit a u64: %w", amount, err)
	}
	if val == 0 {
		return fmt.Errorf("amount must be non-zero")
	}
	return nil
}
