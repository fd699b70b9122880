package crypto

import "errors"

// Errors returned by the key engine. Callers match them with errors.Is;
// the underlying cause is usually wrapped alongside.
var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidMessageLen = errors.New("invalid message length")
)
