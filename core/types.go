// Package core implements the Synnergy NeoVM: a stack-based bytecode
// interpreter that executes smart-contract scripts against ledger state.
package core

import (
	"encoding/hex"
	"fmt"
)

// UInt160 is a 20-byte little-endian script hash, the NeoVM address format.
type UInt160 [20]byte

// UInt256 is a 32-byte little-endian hash (block, header, transaction, asset).
type UInt256 [32]byte

var (
	// UInt160Zero is the all-zero script hash, used as a sentinel "no caller".
	UInt160Zero UInt160
	// UInt256Zero is the all-zero hash.
	UInt256Zero UInt256
)

// Bytes returns the little-endian byte representation.
func (u UInt160) Bytes() []byte { b := make([]byte, 20); copy(b, u[:]); return b }
func (u UInt256) Bytes() []byte { b := make([]byte, 32); copy(b, u[:]); return b }

// Reversed returns the big-endian (display/wire) byte order.
func (u UInt160) Reversed() []byte { return reverseBytes(u.Bytes()) }
func (u UInt256) Reversed() []byte { return reverseBytes(u.Bytes()) }

func (u UInt160) String() string { return "0x" + hex.EncodeToString(u.Reversed()) }
func (u UInt256) String() string { return "0x" + hex.EncodeToString(u.Reversed()) }

// Hex returns the lowercase-hex little-endian encoding, no "0x" prefix.
func (u UInt160) Hex() string { return hex.EncodeToString(u.Bytes()) }
func (u UInt256) Hex() string { return hex.EncodeToString(u.Bytes()) }

// UInt160FromBytes copies b (little-endian, must be 20 bytes) into a UInt160.
func UInt160FromBytes(b []byte) (UInt160, error) {
	var u UInt160
	if len(b) != 20 {
		return u, fmt.Errorf("%w: UInt160 needs 20 bytes, got %d", ErrInvalidType, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// UInt256FromBytes copies b (little-endian, must be 32 bytes) into a UInt256.
func UInt256FromBytes(b []byte) (UInt256, error) {
	var u UInt256
	if len(b) != 32 {
		return u, fmt.Errorf("%w: UInt256 needs 32 bytes, got %d", ErrInvalidType, len(b))
	}
	copy(u[:], b)
	return u, nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// ECPoint is a compressed secp256r1/secp256k1 public key: 33 bytes with a
// 0x02/0x03 prefix, or the single byte 0x00 for the point at infinity.
type ECPoint struct {
	raw []byte
}

// IsInfinity reports whether this ECPoint is the identity element.
func (p ECPoint) IsInfinity() bool { return len(p.raw) == 1 && p.raw[0] == 0x00 }

// Bytes returns the compressed encoding as supplied.
func (p ECPoint) Bytes() []byte { return append([]byte(nil), p.raw...) }

// ECPointFromBytes validates and wraps a compressed EC point encoding.
func ECPointFromBytes(b []byte) (ECPoint, error) {
	if len(b) == 1 && b[0] == 0x00 {
		return ECPoint{raw: []byte{0x00}}, nil
	}
	if len(b) != 33 || (b[0] != 0x02 && b[0] != 0x03) {
		return ECPoint{}, fmt.Errorf("%w: invalid compressed EC point", ErrInvalidType)
	}
	return ECPoint{raw: append([]byte(nil), b...)}, nil
}

// ScriptHash reduces an EC point's verification script to a UInt160 the same
// way NeoVM derives a signature-check witness hash: HASH160 of the encoded
// point wrapped in a single-signature verification script.
func (p ECPoint) ScriptHash() UInt160 {
	return Hash160(verificationScript(p.raw))
}

// verificationScript builds the canonical single-signature "push pubkey,
// CHECKSIG" script used to derive a witness hash from a public key.
func verificationScript(pubkey []byte) []byte {
	s := make([]byte, 0, len(pubkey)+3)
	s = append(s, byte(OpPushBytes1)+byte(len(pubkey)-1))
	s = append(s, pubkey...)
	s = append(s, byte(OpCheckSig))
	return s
}

// Fixed8 is a signed 64-bit integer scaled by 10^-8, the gas/asset-amount
// unit throughout the VM (§4.6, §6 GLOSSARY "Fixed8").
type Fixed8 int64

// Fixed8Decimals is the scaling factor, 10^8.
const Fixed8Decimals = 100_000_000

// NewFixed8 builds a Fixed8 from an integer number of whole units.
func NewFixed8(whole int64) Fixed8 { return Fixed8(whole * Fixed8Decimals) }

func (f Fixed8) String() string {
	whole := int64(f) / Fixed8Decimals
	frac := int64(f) % Fixed8Decimals
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%08d", whole, frac)
}
