package core

import (
	"crypto/sha1"
	"crypto/sha256"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160"
)

// Hashing and signature-verification primitives backing the SHA1/SHA256/
// HASH160/HASH256/CHECKSIG/CHECKMULTISIG opcodes (§4.3). Grounded on the
// teacher's transactions.go/transactionreversal.go (crypto.SigToPub for
// ECDSA recovery-based verification) and
// security.go's sha256 double-hash idiom; HASH160's RIPEMD160 stage comes
// from golang.org/x/crypto, the only ripemd160 implementation in the pack.

// Sha1Sum returns the SHA1 digest of b (the SHA1 opcode).
func Sha1Sum(b []byte) []byte {
	h := sha1.Sum(b)
	return h[:]
}

// Sha256Sum returns the SHA256 digest of b (the SHA256 opcode).
func Sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

// Hash256 is SHA256 applied twice (the HASH256 opcode), the Bitcoin/NEO
// double-hash used for block and transaction IDs.
func Hash256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// hash160Bytes is SHA256 followed by RIPEMD160 (the HASH160 opcode), the
// script-hash derivation used throughout the VM.
func hash160Bytes(b []byte) []byte {
	sh := sha256.Sum256(b)
	r := ripemd160.New()
	r.Write(sh[:])
	return r.Sum(nil)
}

// Hash160 reduces arbitrary bytes (typically a verification script) to a
// UInt160 script hash.
func Hash160(b []byte) UInt160 {
	var u UInt160
	copy(u[:], hash160Bytes(b))
	return u
}

// checkSig verifies a single secp256k1 signature over message using the
// go-ethereum public-key recovery (SigToPub), comparing each recovered key's
// compressed form (CompressPubkey) against pk. sig is the
// compact 64-byte (R||S) form; NeoVM signatures carry no recovery byte, so
// every recovery candidate is tried until one recovers pk.
func checkSig(pk ECPoint, sig []byte, message []byte) bool {
	if pk.IsInfinity() || len(sig) != 64 {
		return false
	}
	digest := Sha256Sum(message)
	pubCompressed := pk.Bytes()
	for v := byte(0); v < 4; v++ {
		full := append(append([]byte(nil), sig...), v)
		recovered, err := gethcrypto.SigToPub(digest, full)
		if err != nil {
			continue
		}
		candidate := gethcrypto.CompressPubkey(recovered)
		if len(candidate) == len(pubCompressed) && string(candidate) == string(pubCompressed) {
			return true
		}
	}
	return false
}

// checkMultisig verifies signatures against public keys with a single
// forward cursor (§4.3 "CHECKMULTISIG decoding"): advance the key cursor on
// every comparison, advance the signature cursor only on a successful
// verify, and fail as soon as the remaining signatures cannot all be
// satisfied by the remaining keys.
func checkMultisig(pks []ECPoint, sigs [][]byte, message []byte) bool {
	i, j := 0, 0
	for i < len(sigs) && j < len(pks) {
		if len(sigs)-i > len(pks)-j {
			return false
		}
		if checkSig(pks[j], sigs[i], message) {
			i++
		}
		j++
	}
	return i == len(sigs)
}
