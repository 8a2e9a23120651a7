package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Random string of ascii letters and digits
func randomString(length int) (string, error) {
	limit := big.NewInt(int64(len(alphanumeric)))
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("error while generating random string. Err: %w", err)
		}
		b[i] = alphanumeric[n.Int64()]
	}

	return string(b), nil
}
