package x402

// Known Solana network tags this driver accepts in a 402 challenge.
const (
	NetworkDevnet  = "solana-devnet"
	NetworkMainnet = "solana-mainnet"
)

// Solana Token Program IDs, Base58. A mint's owner is resolved to one of
// these by the mint program probe (C7) before ATA derivation (C5).
const (
	TokenProgramIDClassic = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgramID2022    = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// ValidateNetwork rejects any tag outside the known Solana network set.
func ValidateNetwork(network string) error {
	switch network {
	case NetworkDevnet, NetworkMainnet:
		return nil
	default:
		return ErrUnknownNetwork
	}
}
