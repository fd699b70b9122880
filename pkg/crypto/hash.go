package crypto

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

const (
	// Hash160Size is the size of a truncated Keccak digest (address payload)
	Hash160Size = 20
	// Hash256Size is the size of a full Keccak-256 digest
	Hash256Size = 32
)

// Hash160 is the last 20 bytes of a Keccak-256 digest
type Hash160 [Hash160Size]byte

// Hash256 is a Keccak-256 digest
type Hash256 [Hash256Size]byte

// Hash256b returns the legacy Keccak-256 digest of b (not NIST SHA3-256)
func Hash256b(b []byte) Hash256 {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	var out Hash256
	h.Sum(out[:0])
	return out
}

// Hash160b returns the last 20 bytes of Hash256b(b).
// The tail is kept, not the head.
func Hash160b(b []byte) Hash160 {
	sum := Hash256b(b)
	var out Hash160
	copy(out[:], sum[Hash256Size-Hash160Size:])
	return out
}

// BytesToHash160 right-aligns b into a Hash160.
// Shorter input is zero-padded on the left, longer input keeps its rightmost 20 bytes.
func BytesToHash160(b []byte) Hash160 {
	var out Hash160
	if len(b) > Hash160Size {
		b = b[len(b)-Hash160Size:]
	}
	copy(out[Hash160Size-len(b):], b)
	return out
}

// BytesToHash256 right-aligns b into a Hash256 (see BytesToHash160)
func BytesToHash256(b []byte) Hash256 {
	var out Hash256
	if len(b) > Hash256Size {
		b = b[len(b)-Hash256Size:]
	}
	copy(out[Hash256Size-len(b):], b)
	return out
}

// Bytes returns a copy of the digest as a slice
func (h Hash160) Bytes() []byte { return append([]byte(nil), h[:]...) }

// Hex returns the lowercase hex encoding without 0x prefix
func (h Hash160) Hex() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether every byte is zero
func (h Hash160) IsZero() bool { return h == Hash160{} }

func (h Hash256) Bytes() []byte { return append([]byte(nil), h[:]...) }

func (h Hash256) Hex() string { return hex.EncodeToString(h[:]) }
