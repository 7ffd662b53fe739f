// Package cryptox provides the digest primitives used for credential
// verification. The algorithm is chosen once from configuration and passed to
// the authenticator at construction time.
package cryptox

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Digest hashes a byte string and returns the lowercase hex encoding.
type Digest func(data []byte) string

// NewDigest resolves a configured algorithm identifier. Supported values are
// "sha256", "sha512" and "sha3-256".
func NewDigest(algorithm string) (Digest, error) {
	switch algorithm {
	case "sha256":
		return func(data []byte) string {
			sum := sha256.Sum256(data)
			return hex.EncodeToString(sum[:])
		}, nil
	case "sha512":
		return func(data []byte) string {
			sum := sha512.Sum512(data)
			return hex.EncodeToString(sum[:])
		}, nil
	case "sha3-256":
		return func(data []byte) string {
			sum := sha3.Sum256(data)
			return hex.EncodeToString(sum[:])
		}, nil
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q", algorithm)
	}
}

// CredentialHash computes the stored password hash: the digest of the
// concatenation secret||salt||password.
func CredentialHash(d Digest, secret, salt, password string) string {
	return d([]byte(secret + salt + password))
}
