package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode"
	"unicode/utf8"
)

// Strength thresholds for PasswordStrength scores.
const (
	StrongThreshold     = 20
	VeryStrongThreshold = 40
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "\"`!?$%^&*()_-+={[}]:;@'~#|\\<,>./"
)

// PasswordStrength scores a plaintext password.
//
// Passwords longer than seven characters earn 10 plus one point per extra
// character. Every letter and symbol adds a point, and a password mixing at
// least two letters with at least two digits earns a bonus of letters+digits.
func PasswordStrength(password string) int {
	score := 0
	if n := utf8.RuneCountInString(password); n > 7 {
		score += 10 + (n - 7)
	}

	var letters, digits, symbols int
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsNumber(r):
			digits++
		default:
			symbols++
		}
	}

	score += letters + symbols
	if letters >= 2 && digits >= 2 {
		score += letters + digits
	}
	return score
}

// IsWeakPassword reports whether password scores below StrongThreshold.
func IsWeakPassword(password string) bool {
	return PasswordStrength(password) < StrongThreshold
}

// IsStrongPassword reports whether password scores at least StrongThreshold.
func IsStrongPassword(password string) bool {
	return PasswordStrength(password) >= StrongThreshold
}

// IsVeryStrongPassword reports whether password scores at least VeryStrongThreshold.
func IsVeryStrongPassword(password string) bool {
	return PasswordStrength(password) >= VeryStrongThreshold
}

// GeneratePassword draws random upper, lower, digit and symbol characters
// until the result is longer than seven characters and scores as strong.
func GeneratePassword() (string, error) {
	classes := []string{upperChars, lowerChars, digitChars, symbolChars}

	password := make([]byte, 0, 16)
	for len(password) <= 7 || !IsStrongPassword(string(password)) {
		class, err := randIndex(len(classes))
		if err != nil {
			return "", err
		}
		chars := classes[class]

		i, err := randIndex(len(chars))
		if err != nil {
			return "", err
		}
		password = append(password, chars[i])
	}
	return string(password), nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("cryptox: generate random password: %w", err)
	}
	return int(v.Int64()), nil
}
