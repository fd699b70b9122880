package api

// API request/response types for REST endpoints.
// Byte fields travel as hex strings; a 0x prefix is optional on input.

// AccountInfo is the public view of a registered account (never the private key)
type AccountInfo struct {
	Address   string `json:"address"`   // bech32, e.g. "io1..."
	Payload   string `json:"payload"`   // 20-byte hash160, hex
	Hex       string `json:"hex"`       // same payload, EIP-55 0x form
	PublicKey string `json:"publicKey"` // uncompressed, 130 hex chars
}

// CreateAccountRequest imports a key when PrivateKey is set, otherwise generates one
type CreateAccountRequest struct {
	PrivateKey string `json:"privateKey,omitempty"`
}

// SignRequest carries either a raw message or a precomputed 32-byte digest.
// Pointers tell an absent field from an empty message ("").
type SignRequest struct {
	Message *string `json:"message,omitempty"` // hex; hashed with Keccak-256 before signing
	Digest  *string `json:"digest,omitempty"`  // hex, 32 bytes; signed as is
}

type SignResponse struct {
	Signature string `json:"signature"` // 65 bytes: R || S || V
}

type VerifyRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

type RecoverRequest struct {
	Digest    string `json:"digest"`
	Signature string `json:"signature"`
}

type RecoverResponse struct {
	PublicKey string `json:"publicKey"`
	Address   string `json:"address"`
}

// AddressInfo is the decoded form of an address given as bech32 or 0x hex
type AddressInfo struct {
	Address string `json:"address"`
	Payload string `json:"payload"`
	Hex     string `json:"hex"`
	Network string `json:"network"`
}

// ErrorResponse is the consistent JSON structure for all API error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
