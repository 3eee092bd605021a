// Package cas computes content fingerprints of serialized result fragments.
// Two records with the same fields in the same order always share a
// fingerprint, which lets callers deduplicate payloads without comparing
// them field by field.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/poslavu/core/result"
)

// ErrInvalidHash is returned when a hash string is not a 64-character hex string.
var ErrInvalidHash = errors.New("invalid hash format")

// hashPattern matches a valid lowercase 256-bit hex digest.
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// HashResult contains both SHA-256 and BLAKE3 hashes of a fragment.
type HashResult struct {
	SHA256 string `json:"sha256" yaml:"sha256"`
	BLAKE3 string `json:"blake3" yaml:"blake3"`
}

// Sum hashes data with both algorithms.
func Sum(data []byte) HashResult {
	return HashResult{
		SHA256: Hash(data),
		BLAKE3: Blake3Hash(data),
	}
}

// Fingerprint hashes the serialized fragment of r.
func Fingerprint(r *result.Record) (HashResult, error) {
	fragment, err := r.Serialize()
	if err != nil {
		return HashResult{}, err
	}
	return Sum([]byte(fragment)), nil
}

// Matches reports whether data hashes to h. A BLAKE3-only or SHA-256-only
// HashResult is checked against the algorithm it carries.
func (h HashResult) Matches(data []byte) (bool, error) {
	if h.SHA256 == "" && h.BLAKE3 == "" {
		return false, ErrInvalidHash
	}
	if h.SHA256 != "" {
		if !isValidHash(h.SHA256) {
			return false, ErrInvalidHash
		}
		if Hash(data) != h.SHA256 {
			return false, nil
		}
	}
	if h.BLAKE3 != "" {
		if !isValidHash(h.BLAKE3) {
			return false, ErrInvalidHash
		}
		if Blake3Hash(data) != h.BLAKE3 {
			return false, nil
		}
	}
	return true, nil
}

// Hash computes the SHA-256 hash of the given data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Blake3Hash computes the BLAKE3 hash of the given data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

func isValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}
