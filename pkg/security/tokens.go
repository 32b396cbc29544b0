package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken returns the hex SHA-256 digest of a token. Only digests are
// persisted in the sessions table; the raw token travels to the client
// exactly once.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenEqual compares a presented token against a stored digest in
// constant time.
func TokenEqual(digest, token string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(HashToken(token))) == 1
}
