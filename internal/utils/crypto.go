// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math"
	"math/big"
)

func GenerateRandomString(length int, charset string) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(charset)))

	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateVerificationCode returns a six digit code without a leading zero.
func GenerateVerificationCode() (string, error) {
	first, err := GenerateRandomString(1, "123456789")
	if err != nil {
		return "", err
	}
	rest, err := GenerateRandomString(5, "0123456789")
	if err != nil {
		return "", err
	}
	return first + rest, nil
}

// RoundMoney rounds an amount to the smallest currency unit.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ToMinorUnits converts an amount to an integer count of the smallest currency unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
