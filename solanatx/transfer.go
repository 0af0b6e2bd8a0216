package solanatx

import (
	"fmt"

	"github.com/PlaiPin/x402-payer/wire"
)

// splTransferOpcode is the SPL Token program's Transfer instruction index.
const splTransferOpcode = 0x03

// numSignatures, numSigned, numReadonlySigned, numReadonlyUnsigned fix the
// message header for every transaction this builder produces: fee payer and
// payer both sign, the payer is readonly, the token program is
// readonly-unsigned.
const (
	numSignatures        = 2
	numRequiredSignatures = 2
	numReadonlySigned     = 1
	numReadonlyUnsigned   = 1
	numAccounts           = 5
)

// Account table indices, fixed by the builder's contract.
const (
	idxFeePayer      = 0
	idxPayer         = 1
	idxSourceATA     = 2
	idxDestATA       = 3
	idxTokenProgram  = 4
)

// TransferParams collects everything needed to assemble one SPL token
// Transfer transaction.
type TransferParams struct {
	FeePayer     [32]byte
	Payer        [32]byte
	SourceATA    [32]byte
	DestATA      [32]byte
	TokenProgram [32]byte
	Amount       uint64
	Blockhash    [32]byte
}

// sigSlotOffset and sigSlotLen locate the two 64-byte signature slots
// within the assembled buffer; exported so a signer can find them without
// recomputing offsets.
const (
	sigSlotLen       = 64
	sigCountPrefixLen = 1
)

// BuildTransfer assembles a TransactionBuffer per the fixed account table
// [fee_payer, payer, source_ata, dest_ata, token_program], with both
// signature slots zeroed. The caller is responsible for signing the
// message portion (everything after the signature slots) and writing the
// result into the payer's slot (index 1).
func BuildTransfer(p TransferParams) ([]byte, error) {
	w := wire.NewWriter()

	if err := w.PutShortvec(numSignatures); err != nil {
		return nil, fmt.Errorf("solanatx: signature count: %w", err)
	}
	w.PutBytes(make([]byte, sigSlotLen)) // slot 0: fee payer, filled by facilitator
	w.PutBytes(make([]byte, sigSlotLen)) // slot 1: payer, filled by Sign below

	w.PutU8(numRequiredSignatures)
	w.PutU8(numReadonlySigned)
	w.PutU8(numReadonlyUnsigned)

	if err := w.PutShortvec(numAccounts); err != nil {
		return nil, fmt.Errorf("solanatx: account count: %w", err)
	}
	accounts := [numAccounts][32]byte{
		idxFeePayer:     p.FeePayer,
		idxPayer:        p.Payer,
		idxSourceATA:    p.SourceATA,
		idxDestATA:      p.DestATA,
		idxTokenProgram: p.TokenProgram,
	}
	for _, acct := range accounts {
		w.PutBytes(acct[:])
	}

	w.PutBytes(p.Blockhash[:])

	if err := w.PutShortvec(1); err != nil { // one instruction
		return nil, fmt.Errorf("solanatx: instruction count: %w", err)
	}
	w.PutU8(idxTokenProgram)
	if err := w.PutShortvec(3); err != nil { // account-index list length
		return nil, fmt.Errorf("solanatx: instruction account count: %w", err)
	}
	w.PutU8(idxSourceATA)
	w.PutU8(idxDestATA)
	w.PutU8(idxPayer)

	data := transferInstructionData(p.Amount)
	if err := w.PutShortvec(len(data)); err != nil {
		return nil, fmt.Errorf("solanatx: instruction data length: %w", err)
	}
	w.PutBytes(data)

	return w.Bytes(), nil
}

// transferInstructionData builds the 9-byte SPL Transfer instruction
// payload: opcode 0x03 followed by the little-endian u64 amount, in the
// token's smallest denomination. It does not convert units; the caller
// supplies base units.
func transferInstructionData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = splTransferOpcode
	for i := 0; i < 8; i++ {
		data[1+i] = byte(amount >> (8 * i))
	}
	return data
}

// MessageRange returns the [start, end) byte range of buf that must be
// signed: everything after the two signature slots, to the end of the
// buffer.
func MessageRange(buf []byte) (int, int) {
	start := sigCountPrefixLen + 2*sigSlotLen
	return start, len(buf)
}

// PayerSignatureSlot returns the [start, end) byte range of buf holding
// the payer's (device's) signature slot — slot index 1, immediately after
// the fee payer's zeroed slot 0.
func PayerSignatureSlot(buf []byte) (int, int) {
	start := sigCountPrefixLen + sigSlotLen
	return start, start + sigSlotLen
}
