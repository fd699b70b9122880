package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/ioaccount/pkg/crypto"
)

// ErrInvalidHexAddr is returned for a malformed 0x address
var ErrInvalidHexAddr = errors.New("invalid hex address")

// Hex returns the EIP-55 checksummed 0x form of the payload.
// Both forms carry the same 20 bytes: keccak256(pub[1:])[12:].
func (a Address) Hex() string {
	return common.Address(a.payload).Hex()
}

// FromHex parses a 0x address (prefix optional).
// All-lower and all-upper input is accepted as is; mixed case must carry a valid EIP-55 checksum.
func FromHex(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidHexAddr, s)
	}
	ethAddr := common.HexToAddress(s)

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits != strings.ToLower(digits) && digits != strings.ToUpper(digits) {
		if ethAddr.Hex()[2:] != digits {
			return Address{}, fmt.Errorf("%w: bad checksum %q", ErrInvalidHexAddr, s)
		}
	}
	return FromHash160(crypto.Hash160(ethAddr)), nil
}

// Parse accepts either the bech32 form under the active network or the 0x form
func Parse(s string) (Address, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return FromHex(s)
	}
	return FromString(s)
}
