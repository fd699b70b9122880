package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// PrivateKeySize is the length of a raw secp256k1 scalar
	PrivateKeySize = 32
	// PublicKeySize is the length of an uncompressed point (0x04 || X || Y)
	PublicKeySize = 65
)

// KeyType tags the curve a key belongs to. The set is closed; only secp256k1 exists today.
type KeyType uint8

const (
	Secp256k1 KeyType = iota + 1
)

func (t KeyType) String() string {
	switch t {
	case Secp256k1:
		return "secp256k1"
	default:
		return "unknown"
	}
}

// PrivateKey is a secp256k1 scalar in [1, n-1].
// It is handed around by pointer; use Clone for a deliberate copy and Zero when done.
type PrivateKey struct {
	b [PrivateKeySize]byte
}

// PublicKey is an uncompressed secp256k1 point, always derivable from its PrivateKey
type PublicKey struct {
	b [PublicKeySize]byte
}

// GenerateKey draws a new private key from crypto/rand.
// The only failure is an unavailable entropy source, which is returned, not panicked.
func GenerateKey() (*PrivateKey, error) {
	ecdsaKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	raw := crypto.FromECDSA(ecdsaKey)
	defer clear(raw)
	ecdsaKey.D.SetUint64(0)

	return PrivateKeyFromBytes(raw)
}

// HexToPrivateKey parses a private key from hex.
// Format: "0x1234..." or "1234..." (exactly 64 hex chars after the optional prefix)
func HexToPrivateKey(s string) (*PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*PrivateKeySize {
		return nil, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidPrivateKey, 2*PrivateKeySize, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	defer clear(raw)
	return PrivateKeyFromBytes(raw)
}

// PrivateKeyFromBytes copies a 32-byte scalar after checking it is in [1, n-1]
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidPrivateKey, PrivateKeySize, len(b))
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(b)
	zero := scalar.IsZero()
	scalar.Zero()
	if overflow {
		return nil, fmt.Errorf("%w: scalar exceeds curve order", ErrInvalidPrivateKey)
	}
	if zero {
		return nil, fmt.Errorf("%w: scalar is zero", ErrInvalidPrivateKey)
	}

	k := &PrivateKey{}
	copy(k.b[:], b)
	return k, nil
}

// Type returns the curve tag of the key
func (k *PrivateKey) Type() KeyType { return Secp256k1 }

// Bytes returns a copy of the raw scalar.
// WARNING: the caller owns the copy and should clear it after use
func (k *PrivateKey) Bytes() []byte {
	return append([]byte(nil), k.b[:]...)
}

// HexString returns the private key as lowercase hex (WITHOUT 0x prefix)
// WARNING: Keep this secret! Never expose to users or logs
func (k *PrivateKey) HexString() string {
	return hex.EncodeToString(k.b[:])
}

// Clone returns an independent copy of the key
func (k *PrivateKey) Clone() *PrivateKey {
	c := *k
	return &c
}

// Zero wipes the key material. The key is unusable afterwards.
func (k *PrivateKey) Zero() {
	clear(k.b[:])
}

// Equal compares two keys in constant time
func (k *PrivateKey) Equal(other *PrivateKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return subtle.ConstantTimeCompare(k.b[:], other.b[:]) == 1
}

// PublicKey derives the uncompressed public key (scalar multiplication of the base point)
func (k *PrivateKey) PublicKey() *PublicKey {
	priv := secp256k1.PrivKeyFromBytes(k.b[:])
	defer priv.Zero()

	pub := &PublicKey{}
	copy(pub.b[:], priv.PubKey().SerializeUncompressed())
	return pub
}

// Sign hashes msg with Hash256b and signs the digest
func (k *PrivateKey) Sign(msg []byte) (Signature, error) {
	digest := Hash256b(msg)
	return k.SignHash(digest[:])
}

// SignHash produces a deterministic (RFC 6979) recoverable signature over a 32-byte digest.
// Returns signature in [R || S || V] format (65 bytes), V in [0, 3]
func (k *PrivateKey) SignHash(digest []byte) (Signature, error) {
	if len(digest) != Hash256Size {
		return Signature{}, fmt.Errorf("%w: digest must be %d bytes, got %d", ErrInvalidMessageLen, Hash256Size, len(digest))
	}

	ecdsaKey, err := crypto.ToECDSA(k.b[:])
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	defer ecdsaKey.D.SetUint64(0)

	raw, err := crypto.Sign(digest, ecdsaKey)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign: %w", err)
	}
	return SignatureFromBytes(raw)
}

// HexToPublicKey parses a 130-char uncompressed public key (leading "04")
func HexToPublicKey(s string) (*PublicKey, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*PublicKeySize {
		return nil, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidPublicKey, 2*PublicKeySize, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return PublicKeyFromBytes(raw)
}

// PublicKeyFromBytes validates and copies a 65-byte uncompressed point
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidPublicKey, PublicKeySize, len(b))
	}
	if b[0] != 0x04 {
		return nil, fmt.Errorf("%w: not an uncompressed point (prefix 0x%02x)", ErrInvalidPublicKey, b[0])
	}
	// rejects points that are not on the curve
	if _, err := crypto.UnmarshalPubkey(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	pub := &PublicKey{}
	copy(pub.b[:], b)
	return pub, nil
}

// Bytes returns a copy of the 65-byte encoding
func (p *PublicKey) Bytes() []byte {
	return append([]byte(nil), p.b[:]...)
}

// HexString returns the public key as hex string (uncompressed, 130 chars)
func (p *PublicKey) HexString() string {
	return hex.EncodeToString(p.b[:])
}

// Hash160 is the address payload of the key: Hash160b over X || Y,
// i.e. with the 0x04 format byte stripped.
func (p *PublicKey) Hash160() Hash160 {
	return Hash160b(p.b[1:])
}

// Equal reports whether both keys encode the same point
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.b == other.b
}

// Verify hashes msg with Hash256b and checks sig against the hex public key.
// A well-formed signature that does not match returns (false, nil);
// errors are reserved for malformed input.
func Verify(msg, sig []byte, publicKeyHex string) (bool, error) {
	pub, err := HexToPublicKey(publicKeyHex)
	if err != nil {
		return false, err
	}
	digest := Hash256b(msg)
	return VerifyHash(digest[:], sig, pub)
}

// VerifyHash checks a 65-byte recoverable signature over a 32-byte digest
func VerifyHash(digest, sig []byte, pub *PublicKey) (bool, error) {
	if len(digest) != Hash256Size {
		return false, fmt.Errorf("%w: digest must be %d bytes, got %d", ErrInvalidMessageLen, Hash256Size, len(digest))
	}
	s, err := SignatureFromBytes(sig)
	if err != nil {
		return false, err
	}
	return crypto.VerifySignature(pub.b[:], digest, s.Compact()), nil
}

// Recover returns the public key that produced sig over digest
func Recover(digest, sig []byte) (*PublicKey, error) {
	if len(digest) != Hash256Size {
		return nil, fmt.Errorf("%w: digest must be %d bytes, got %d", ErrInvalidMessageLen, Hash256Size, len(digest))
	}
	s, err := SignatureFromBytes(sig)
	if err != nil {
		return nil, err
	}

	raw, err := crypto.Ecrecover(digest, s[:])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to recover public key: %v", ErrInvalidSignature, err)
	}
	pub, err := PublicKeyFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: recovered key: %v", ErrInvalidSignature, err)
	}
	return pub, nil
}
