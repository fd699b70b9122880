package address

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Network selects the human-readable bech32 prefix
type Network uint8

const (
	Mainnet Network = iota
	Testnet
)

const (
	// MainnetPrefix is the prefix added to the human readable address of mainnet
	MainnetPrefix = "io"
	// TestnetPrefix is the prefix added to the human readable address of testnet
	TestnetPrefix = "it"
)

var (
	ErrUnknownNetwork   = errors.New("unknown network")
	ErrNetworkFinalized = errors.New("network already finalized")
)

// Prefix returns the bech32 human-readable part for the network, "" if n is unknown
func (n Network) Prefix() string {
	switch n {
	case Mainnet:
		return MainnetPrefix
	case Testnet:
		return TestnetPrefix
	default:
		return ""
	}
}

func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("network(%d)", uint8(n))
	}
}

func (n Network) valid() bool { return n == Mainnet || n == Testnet }

// ParseNetwork accepts "mainnet"/"testnet" or the raw prefixes "io"/"it"
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet", MainnetPrefix, "":
		return Mainnet, nil
	case "testnet", TestnetPrefix:
		return Testnet, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
	}
}

// Process-wide network mode. Written at most once; the first SetNetwork or
// ActiveNetwork call wins and every later read observes the same value.
var (
	networkOnce sync.Once
	network     = Mainnet
)

// SetNetwork selects the process-wide network. It must run during init, before any
// address is rendered or parsed; afterwards it returns ErrNetworkFinalized.
func SetNetwork(n Network) error {
	if !n.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownNetwork, uint8(n))
	}
	applied := false
	networkOnce.Do(func() {
		network = n
		applied = true
	})
	if !applied && network != n {
		return fmt.Errorf("%w: active=%s requested=%s", ErrNetworkFinalized, network, n)
	}
	return nil
}

// ActiveNetwork returns the process-wide network, freezing it on first use
func ActiveNetwork() Network {
	networkOnce.Do(func() {})
	return network
}
