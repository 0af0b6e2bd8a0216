package x402

// PaymentRequirements is the parsed form of a 402 challenge's first accepted
// payment method.
type PaymentRequirements struct {
	Recipient         string // payTo, Base58 public key
	Asset             string // token mint, Base58 public key
	MaxAmountRequired string // decimal string, base units
	Network           string // e.g. "solana-devnet", "solana-mainnet"
	FeePayer          string // extra.feePayer, Base58 public key; may be empty
}

// Valid reports whether every field required to build a transaction is present.
func (r *PaymentRequirements) Valid() bool {
	return r.Recipient != "" && r.Asset != "" && r.MaxAmountRequired != "" && r.Network != ""
}

// SettlementReceipt is decoded from the X-PAYMENT-RESPONSE header on a paid retry.
type SettlementReceipt struct {
	Transaction string `json:"transaction"`
	Success     bool   `json:"success"`
	Network     string `json:"network"`
}

// PaidResponse is returned by Driver.Fetch.
type PaidResponse struct {
	StatusCode   int
	Body         []byte
	Header       string // raw X-PAYMENT-RESPONSE header value, if present
	PaymentMade  bool
	Unverified   bool // true when PaymentMade but no settlement header decoded
	Receipt      *SettlementReceipt
}
