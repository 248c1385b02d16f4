package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lowerAlphabet = "abcdefghijkmnopqrstuvwxyz"
	upperAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitAlphabet = "23456789"
	keyAlphabet   = lowerAlphabet + upperAlphabet + digitAlphabet
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
	errShortPassword  = errors.New("temporary password needs at least 8 characters")
)

// RandomString returns an unbiased string drawn from alphabet with crypto/rand.
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

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}

// TemporaryPassword returns a password that always carries an upper-case
// letter, a lower-case letter and a digit.
func TemporaryPassword(length int) (string, error) {
	if length < 8 {
		return "", errShortPassword
	}

	head := make([]byte, 0, 3)
	for _, alphabet := range []string{upperAlphabet, lowerAlphabet, digitAlphabet} {
		char, err := RandomString(1, alphabet)
		if err != nil {
			return "", err
		}
		head = append(head, char[0])
	}

	tail, err := RandomString(length-len(head), keyAlphabet)
	if err != nil {
		return "", err
	}
	return string(head) + tail, nil
}

func SecretKey() ([]byte, error) {
	key, err := RandomString(48, keyAlphabet)
	if err != nil {
		return nil, err
	}
	return []byte(key), nil
}
