package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SignatureSize is the wire size: 64-byte compact (R || S) + 1 recovery byte
	SignatureSize = 65
	// maxRecoveryID is the largest valid value of the trailing byte
	maxRecoveryID = 3
)

// Signature is a recoverable secp256k1 signature in [R || S || V] layout
type Signature [SignatureSize]byte

// SignatureFromBytes validates length and recovery id, then copies b
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureSize {
		return sig, fmt.Errorf("%w: invalid signature length: %d", ErrInvalidSignature, len(b))
	}
	if b[SignatureSize-1] > maxRecoveryID {
		return sig, fmt.Errorf("%w: recovery id %d out of range [0,%d]", ErrInvalidSignature, b[SignatureSize-1], maxRecoveryID)
	}
	copy(sig[:], b)
	return sig, nil
}

// HexToSignature parses a 130-char hex signature ("0x" prefix optional)
func HexToSignature(s string) (Signature, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return SignatureFromBytes(raw)
}

// Compact returns the 64-byte R || S part
func (s Signature) Compact() []byte { return append([]byte(nil), s[:SignatureSize-1]...) }

// RecoveryID returns the trailing V byte
func (s Signature) RecoveryID() byte { return s[SignatureSize-1] }

func (s Signature) Bytes() []byte { return append([]byte(nil), s[:]...) }

func (s Signature) Hex() string { return hex.EncodeToString(s[:]) }
