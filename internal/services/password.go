package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

// bcrypt only reads the first 72 bytes and x/crypto refuses longer input,
// so long passwords are reduced to base64(sha256) first.
const bcryptMaxPasswordLength = 72

func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxPasswordLength {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Compare(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
}

// TokenGenerator produces activation tokens.
type TokenGenerator func() (string, error)

const activationTokenBytes = 32

// GenerateActivationToken returns 64 hex characters from 32 random bytes.
func GenerateActivationToken() (string, error) {
	b := make([]byte, activationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate activation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// wellFormedActivationToken reports whether token has the shape
// GenerateActivationToken produces.
func wellFormedActivationToken(token string) bool {
	if len(token) != hex.EncodedLen(activationTokenBytes) {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
