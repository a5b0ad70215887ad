package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	upperAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerAlphabet = "abcdefghijkmnopqrstuvwxyz"
	digitAlphabet = "23456789"

	// PasswordAlphabet leaves out characters that are easy to misread (0/O, 1/l/I).
	PasswordAlphabet = upperAlphabet + lowerAlphabet + digitAlphabet

	minTemporaryPasswordLength = 8
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	value := make([]byte, length)
	for index := range value {
		position, err := randomIndex(len(alphabet))
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position]
	}

	return string(value), nil
}

// TemporaryPassword always contains an upper case letter, a lower case letter
// and a digit, so it satisfies the account password policy. Lengths below 8
// are raised to 8.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}

	rest, err := RandomString(length-3, PasswordAlphabet)
	if err != nil {
		return "", err
	}
	value := []byte(rest)
	for _, alphabet := range []string{upperAlphabet, lowerAlphabet, digitAlphabet} {
		char, err := RandomString(1, alphabet)
		if err != nil {
			return "", err
		}
		value = append(value, char[0])
	}

	// Fisher-Yates so the guaranteed characters do not sit at the end.
	for index := len(value) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return "", err
		}
		value[index], value[swap] = value[swap], value[index]
	}
	return string(value), nil
}

func randomIndex(size int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(size)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}
