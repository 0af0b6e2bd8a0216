// Package solanatx assembles a Solana legacy transaction for a single SPL
// token Transfer instruction: PDA/ATA derivation and the fixed five-account
// message layout this payer agent requires.
package solanatx

import (
	"crypto/sha256"
	"fmt"

	"github.com/PlaiPin/x402-payer/wallet"
)

const pdaMarker = "ProgramDerivedAddress"

// DeriveProgramAddress runs the canonical Solana PDA search: starting at
// bump 255 and decrementing, it returns the first hash of
// (seeds || bump || programID || "ProgramDerivedAddress") that is not a
// valid Ed25519 curve point. The off-curve property is what makes the
// address unspendable by any private key.
func DeriveProgramAddress(seeds [][]byte, programID [32]byte) ([32]byte, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programID[:])
		h.Write([]byte(pdaMarker))

		var candidate [32]byte
		copy(candidate[:], h.Sum(nil))

		if !wallet.IsOnCurve(candidate) {
			return candidate, uint8(bump), nil
		}
	}
	return [32]byte{}, 0, fmt.Errorf("solanatx: no off-curve PDA found for given seeds after exhausting all 256 bumps")
}

// DeriveAssociatedTokenAddress derives the ATA PDA for (wallet, mint,
// tokenProgram): the PDA of the Associated Token Account program over the
// three concatenated 32-byte seeds, in wallet/mint/token-program order.
// Using the wrong token program here yields a different address than the
// one holding the wallet's actual token balance, which is why the mint
// program probe must run before this call.
func DeriveAssociatedTokenAddress(owner, mint, tokenProgram, associatedTokenProgram [32]byte) ([32]byte, uint8, error) {
	seeds := [][]byte{owner[:], mint[:], tokenProgram[:]}
	return DeriveProgramAddress(seeds, associatedTokenProgram)
}
