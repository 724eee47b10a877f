package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
)

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// GenerateNumericCode returns a uniformly random, left-zero-padded numeric
// string of the requested digit count (e.g. "004213" for six digits).
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", errors.New("crypto: digit count must be positive")
	}

	bound := big.NewInt(10)
	for i := 1; i < digits; i++ {
		bound.Mul(bound, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}

	code := n.String()
	for len(code) < digits {
		code = "0" + code
	}
	return code, nil
}
