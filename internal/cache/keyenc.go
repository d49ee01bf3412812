package cache

import (
	"encoding/base64"

	"github.com/rohmanhakim/web-scraper/pkg/hashutil"
)

const hexDigits = "0123456789abcdef"

// EncodedKey is the on-disk identity of a cache key: a shard bucket in
// [0, 15] and a filesystem-safe file name.
type EncodedKey struct {
	Shard byte
	Name  string
}

// Encode maps key to its shard and file name. It is total and pure.
//
// The shard is the low nibble of the xor-folded xxhash of the key. The
// name is the unpadded URL-safe base64 of the key bytes, so two distinct
// keys never share a name and nothing is truncated.
func Encode(key string) EncodedKey {
	return EncodedKey{
		Shard: hashutil.Nibble(key),
		Name:  base64.RawURLEncoding.EncodeToString([]byte(key)),
	}
}

// ShardLabel renders the shard as one lowercase hex digit.
func (k EncodedKey) ShardLabel() string {
	return string(hexDigits[k.Shard&0x0f])
}
