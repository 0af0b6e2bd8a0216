// Package base58 implements the Bitcoin-alphabet Base58 encoding used
// throughout Solana for public keys, blockhashes, and signatures.
package base58

import (
	"fmt"
	"math/big"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	radix       = big.NewInt(58)
	decodeTable [256]int8
)

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i, c := range alphabet {
		decodeTable[byte(c)] = int8(i)
	}
}

// Encode returns the Base58 representation of b. Leading zero bytes in b
// become leading '1' characters in the output.
func Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	num := new(big.Int).SetBytes(b)
	mod := new(big.Int)

	var digits []byte
	for num.Sign() > 0 {
		num.DivMod(num, radix, mod)
		digits = append(digits, alphabet[mod.Int64()])
	}

	out := make([]byte, zeros, zeros+len(digits))
	for i := range out {
		out[i] = alphabet[0]
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out = append(out, digits[i])
	}
	return string(out)
}

// Decode reverses Encode. Each leading '1' in s contributes one leading
// zero byte; any character outside the Bitcoin alphabet is a decode error.
func Decode(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == alphabet[0] {
		zeros++
	}

	num := new(big.Int)
	mul := new(big.Int)
	for i := zeros; i < len(s); i++ {
		digit := decodeTable[s[i]]
		if digit < 0 {
			return nil, fmt.Errorf("base58: invalid character %q at offset %d", s[i], i)
		}
		num.Mul(num, radix)
		num.Add(num, mul.SetInt64(int64(digit)))
	}

	body := num.Bytes()
	out := make([]byte, zeros+len(body))
	copy(out[zeros:], body)
	return out, nil
}

// MustDecode is Decode but panics on error; useful for constant fixtures.
func MustDecode(s string) []byte {
	b, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return b
}
