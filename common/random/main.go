package random

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GetUUID generates a UUID and returns it as a string without hyphens.
func GetUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewID returns a canonical hyphenated UUID, used for persisted entity ids.
func NewID() string {
	return uuid.NewString()
}

const (
	keyChars   = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars = "0123456789abcdefghijklmnopqrstuvwxyz"
)

func fill(alphabet string, length int) string {
	key := make([]byte, length)
	for i := range length {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		key[i] = alphabet[n.Int64()]
	}
	return string(key)
}

// GetRandomString generates a random string of the specified length
// using a mix of numbers and letters (both uppercase and lowercase).
func GetRandomString(length int) string {
	return fill(keyChars, length)
}

// Suffix returns a short lowercase alphanumeric tag suitable for names and email local parts.
func Suffix(length int) string {
	return fill(lowerChars, length)
}

// RandRange returns a random number between min and max (max is not included)
func RandRange(min, max int) int {
	if max <= min {
		return min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		panic(err)
	}
	return min + int(n.Int64())
}

// Pick returns a random element of items. It panics on an empty slice.
func Pick[T any](items []T) T {
	return items[RandRange(0, len(items))]
}
