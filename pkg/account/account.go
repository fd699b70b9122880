package account

import (
	"errors"
	"fmt"

	"github.com/uhyunpark/ioaccount/pkg/address"
	"github.com/uhyunpark/ioaccount/pkg/crypto"
)

var (
	ErrAccountExist    = errors.New("account already exists")
	ErrAccountNotExist = errors.New("account does not exist")
)

// Account binds a private key to the address derived from it.
// Invariant: address == FromPublicKey(private.PublicKey()). The only constructors
// derive the address themselves, so a mismatched pair cannot be built.
type Account struct {
	private *crypto.PrivateKey
	public  *crypto.PublicKey
	address address.Address
}

// New generates a new account from fresh entropy
func New() (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return FromPrivateKey(key), nil
}

// FromPrivateKeyHex imports an account from a 64-char hex private key
func FromPrivateKeyHex(privateHex string) (*Account, error) {
	key, err := crypto.HexToPrivateKey(privateHex)
	if err != nil {
		return nil, fmt.Errorf("failed to import account: %w", err)
	}
	return FromPrivateKey(key), nil
}

// FromPrivateKey takes ownership of key and derives the rest of the identity
func FromPrivateKey(key *crypto.PrivateKey) *Account {
	pub := key.PublicKey()
	return &Account{
		private: key,
		public:  pub,
		address: address.FromPublicKey(pub),
	}
}

// Address returns the account address
func (a *Account) Address() address.Address { return a.address }

// PrivateKey returns a copy of the private key; the caller owns (and should Zero) it
func (a *Account) PrivateKey() *crypto.PrivateKey { return a.private.Clone() }

// PublicKey returns the derived public key
func (a *Account) PublicKey() *crypto.PublicKey { return a.public }

// PublicKeyHex returns the public key as 130 hex chars
func (a *Account) PublicKeyHex() string { return a.public.HexString() }

// Sign hashes data with Hash256b and signs the digest
func (a *Account) Sign(data []byte) (crypto.Signature, error) {
	return a.private.Sign(data)
}

// SignHash signs an already computed 32-byte digest
func (a *Account) SignHash(digest []byte) (crypto.Signature, error) {
	return a.private.SignHash(digest)
}

// Verify checks sig over data against this account's public key
func (a *Account) Verify(data, sig []byte) (bool, error) {
	digest := crypto.Hash256b(data)
	return crypto.VerifyHash(digest[:], sig, a.public)
}

// Equal reports whether both accounts hold the same private key
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.private.Equal(other.private)
}

// Zero wipes the private key. The account cannot sign afterwards.
func (a *Account) Zero() { a.private.Zero() }

// RecoverAddress returns the address of the key that signed digest
func RecoverAddress(digest, sig []byte) (address.Address, error) {
	pub, err := crypto.Recover(digest, sig)
	if err != nil {
		return address.Address{}, err
	}
	return address.FromPublicKey(pub), nil
}
