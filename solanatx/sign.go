package solanatx

import "fmt"

// signer is the minimal capability this package needs from a wallet: sign
// a message and return a detached 64-byte Ed25519 signature.
type signer interface {
	Sign(message []byte) ([]byte, error)
}

// SignTransfer signs the message portion of buf with w and writes the
// resulting 64-byte signature into the payer's signature slot (index 1).
// Slot 0 (the fee payer) is left zeroed for the facilitator to fill during
// settlement. buf is mutated in place and also returned for convenience.
func SignTransfer(buf []byte, w signer) ([]byte, error) {
	msgStart, msgEnd := MessageRange(buf)
	sig, err := w.Sign(buf[msgStart:msgEnd])
	if err != nil {
		return nil, fmt.Errorf("solanatx: signing failed: %w", err)
	}
	if len(sig) != sigSlotLen {
		return nil, fmt.Errorf("solanatx: signature has unexpected length %d", len(sig))
	}

	slotStart, slotEnd := PayerSignatureSlot(buf)
	copy(buf[slotStart:slotEnd], sig)
	return buf, nil
}
