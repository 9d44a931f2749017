package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes       = 8
	pbkdf2Iters     = 4096
	pbkdf2KeyLength = 32

	// MinPasswordLength is enforced at registration.
	MinPasswordLength = 4
)

// User is an account record. Password material is stored as a salted
// PBKDF2-SHA256 digest, both hex encoded.
type User struct {
	ID             int
	Username       string
	HashedPassword string
	Salt           string
	RegisteredAt   time.Time
}

// NewSalt returns a fresh random hex salt.
func NewSalt() (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}
	return hex.EncodeToString(raw), nil
}

// HashPassword derives the stored digest for a password and hex salt.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iters, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword checks a candidate password in constant time.
func (u User) VerifyPassword(password string) bool {
	candidate := HashPassword(password, u.Salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(u.HashedPassword)) == 1
}
