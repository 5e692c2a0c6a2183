package application

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	slugLength   = 8
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewSlug returns a random alphanumeric plan url id.
func NewSlug() (string, error) {
	max := big.NewInt(int64(len(slugAlphabet)))
	buf := make([]byte, slugLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}
		buf[i] = slugAlphabet[n.Int64()]
	}
	return string(buf), nil
}
