package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

var (
	ten  = big.NewInt(10)
	nine = big.NewInt(9)
)

// GenerateOTP returns a numeric code of the given length drawn from
// crypto/rand. The first digit is never zero so the code keeps its length
// when read back as a number.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}

	code := make([]byte, length)
	for i := range code {
		max := ten
		if i == 0 {
			max = nine
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random digit: %w", err)
		}
		d := byte(n.Int64())
		if i == 0 {
			d++
		}
		code[i] = '0' + d
	}
	return string(code), nil
}

// OTPMatches compares a stored code with a supplied one in constant time.
func OTPMatches(expected, supplied string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}
