package storage

import "fmt"

// Directory key schema for Pebble storage
//
//   acc:<bech32 address> → Record (JSON)
//
// Addresses are stored in their rendered form, so a directory is only
// meaningful under the network it was written with.

const (
	prefixAccount = "acc:"
)

// accountKey returns the key for a record
// Format: "acc:{address}"
// Example: "acc:io187wzp08vnhjjpkydnr97qlh8kh0dpkkytfam8j"
func accountKey(addr string) []byte {
	return []byte(fmt.Sprintf("%s%s", prefixAccount, addr))
}

// addressFromKey is the inverse of accountKey, used when iterating
func addressFromKey(key []byte) (string, error) {
	if len(key) <= len(prefixAccount) || string(key[:len(prefixAccount)]) != prefixAccount {
		return "", fmt.Errorf("invalid account key: %q", key)
	}
	return string(key[len(prefixAccount):]), nil
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
// Example: prefix "acc:" -> upper bound "acc;" (next byte after ':')
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
