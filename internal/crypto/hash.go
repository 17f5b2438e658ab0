package crypto

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor used for every stored password.
const HashCost = 10

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
const MaxPasswordLength = 72

var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// HashPassword hashes a password using bcrypt at HashCost.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword checks whether a password matches the given bcrypt hash.
// A mismatch is reported as (false, nil); a malformed hash is an error.
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// BurnVerify runs a comparison against a throwaway hash so that a lookup miss
// costs about as much as a real password check.
func BurnVerify(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("recipebox-dummy-password"), HashCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
