package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/uhyunpark/ioaccount/pkg/crypto"
)

// AddressLength is the payload length of a V1 address
const AddressLength = crypto.Hash160Size

// ZeroAddress is the mainnet address whose hash160 is all zero
const ZeroAddress = "io1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqd39ym7"

var (
	ErrAddrPrefixNotMatch = errors.New("address prefix does not match network")
	ErrInvalidAddrLen     = errors.New("invalid address length")
	ErrBech               = errors.New("bech32 error")
)

// InvalidAddrLenError carries the observed payload length
type InvalidAddrLenError struct {
	Len int
}

func (e *InvalidAddrLenError) Error() string {
	return fmt.Sprintf("%s: got %d, want %d", ErrInvalidAddrLen, e.Len, AddressLength)
}

func (e *InvalidAddrLenError) Is(target error) bool { return target == ErrInvalidAddrLen }

// Address wraps a 20-byte hash160 payload. The zero value is the zero address.
type Address struct {
	payload crypto.Hash160
}

// FromBytes wraps an already-hashed 20-byte payload; no hashing occurs here
func FromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return Address{}, &InvalidAddrLenError{Len: len(b)}
	}
	var a Address
	copy(a.payload[:], b)
	return a, nil
}

// FromHash160 wraps a digest
func FromHash160(h crypto.Hash160) Address {
	return Address{payload: h}
}

// FromPublicKey derives the address of a public key
func FromPublicKey(pub *crypto.PublicKey) Address {
	return Address{payload: pub.Hash160()}
}

// FromString decodes an address under the process-wide network
func FromString(encoded string) (Address, error) {
	return NewCodec(ActiveNetwork()).FromString(encoded)
}

// Payload returns the 20-byte digest
func (a Address) Payload() crypto.Hash160 { return a.payload }

// Bytes returns a copy of the payload
func (a Address) Bytes() []byte { return a.payload.Bytes() }

// Encode renders the address under an explicit network
func (a Address) Encode(n Network) string { return NewCodec(n).Encode(a.payload) }

// String renders the address under the process-wide network
func (a Address) String() string { return a.Encode(ActiveNetwork()) }

// Equal compares payloads
func (a Address) Equal(other Address) bool { return a.payload == other.payload }

// IsZero reports whether the payload is all zero
func (a Address) IsZero() bool { return a.payload.IsZero() }

// MarshalText implements encoding.TextMarshaler (bech32 under the active network)
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := FromString(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// Codec encodes and decodes payloads for one network.
// It is an immutable value and safe for concurrent use.
type Codec struct {
	network Network
}

// NewCodec returns a codec bound to n
func NewCodec(n Network) Codec {
	return Codec{network: n}
}

// Network returns the network the codec is bound to
func (c Codec) Network() Network { return c.network }

// Encode groups the payload into 5-bit words and bech32-encodes it.
// It panics if the codec was built with a Network outside Mainnet/Testnet.
func (c Codec) Encode(h crypto.Hash160) string {
	if !c.network.valid() {
		panic(fmt.Sprintf("address: encode under %s", c.network))
	}
	grouped, err := bech32.ConvertBits(h[:], 8, 5, true)
	if err != nil {
		// 8->5 regrouping of a fixed 20-byte payload cannot fail
		panic(fmt.Sprintf("address: failed to group payload into 5 bit groups: %v", err))
	}
	encoded, err := bech32.Encode(c.network.Prefix(), grouped)
	if err != nil {
		panic(fmt.Sprintf("address: failed to encode payload: %v", err))
	}
	return encoded
}

// Decode parses a bech32 address, checks its prefix and returns the 20-byte payload
func (c Codec) Decode(encoded string) (crypto.Hash160, error) {
	if !c.network.valid() {
		return crypto.Hash160{}, fmt.Errorf("%w: %d", ErrUnknownNetwork, uint8(c.network))
	}
	hrp, grouped, version, err := bech32.DecodeGeneric(encoded)
	if err != nil {
		return crypto.Hash160{}, fmt.Errorf("%w: %w", ErrBech, err)
	}
	if version != bech32.Version0 {
		return crypto.Hash160{}, fmt.Errorf("%w: bech32m checksum not accepted", ErrBech)
	}
	if hrp != c.network.Prefix() {
		return crypto.Hash160{}, fmt.Errorf("%w: got %q, want %q", ErrAddrPrefixNotMatch, hrp, c.network.Prefix())
	}
	payload, err := bech32.ConvertBits(grouped, 5, 8, false)
	if err != nil {
		return crypto.Hash160{}, fmt.Errorf("%w: %w", ErrBech, err)
	}
	if len(payload) != AddressLength {
		return crypto.Hash160{}, &InvalidAddrLenError{Len: len(payload)}
	}
	var h crypto.Hash160
	copy(h[:], payload)
	return h, nil
}

// FromString decodes an encoded address into an Address
func (c Codec) FromString(encoded string) (Address, error) {
	h, err := c.Decode(encoded)
	if err != nil {
		return Address{}, err
	}
	return Address{payload: h}, nil
}
