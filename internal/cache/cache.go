package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores similarity scores keyed by name pair
type Cache interface {
	Get(key string) (float64, bool)
	Set(key string, score float64, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PairKey generates an order-independent cache key for two normalised names
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	hash := sha256.Sum256([]byte(a + "\x00" + b))
	return "masonvector:v1:" + hex.EncodeToString(hash[:])
}
