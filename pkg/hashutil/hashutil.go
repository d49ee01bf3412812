package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// ParseHashAlgo resolves a configured algorithm name. Empty means sha256.
func ParseHashAlgo(name string) (HashAlgo, error) {
	switch HashAlgo(strings.ToLower(strings.TrimSpace(name))) {
	case "", HashAlgoSHA256:
		return HashAlgoSHA256, nil
	case HashAlgoBLAKE3:
		return HashAlgoBLAKE3, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
// Supported algorithms: "sha256" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case HashAlgoBLAKE3:
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// Sum64 is the stable, non-cryptographic 64-bit hash used for bucketing.
// The value never depends on process state, so it is safe to persist.
func Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Fold64 xor-folds a 64-bit hash down to its low byte by shifting
// 32, 16, 8 and then 4 bits.
func Fold64(hash uint64) byte {
	hash ^= hash >> 32
	hash ^= hash >> 16
	hash ^= hash >> 8
	hash ^= hash >> 4
	return byte(hash)
}

// Nibble returns the low 4 bits of key's folded hash, in [0, 15].
func Nibble(key string) byte {
	return Fold64(Sum64(key)) & 0x0f
}
