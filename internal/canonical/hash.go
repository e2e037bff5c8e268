package canonical

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm migration.
const (
	DomainDetails = "tradewit/details/v1"
	DomainWitness = "tradewit/witness/v1"
	DomainContext = "tradewit/context/v1"
)

// DigestSize is the length of a hex digest.
const DigestSize = sha256.Size * 2

// Digest computes a SHA-256 hash with domain separation, hex encoded.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func Digest(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// IsDigest reports whether s looks like a value returned by Digest.
func IsDigest(s string) bool {
	if len(s) != DigestSize {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
