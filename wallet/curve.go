package wallet

import "filippo.io/edwards25519"

// IsOnCurve reports whether the 32-byte value decompresses to a valid
// Ed25519 curve point. This is a true decompression and curve-equation
// check, not a byte-pattern heuristic: a prior implementation in this
// codebase's lineage checked only point[31]&0x80 and point[0]%4, which
// accepts many values that are not actually on the curve and would have
// let an unchecked PDA bump collide with a real keypair's address.
func IsOnCurve(point [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(point[:])
	return err == nil
}
