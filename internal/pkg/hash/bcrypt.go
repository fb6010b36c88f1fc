package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes account passwords with bcrypt.
//
// The pepper is a server-side secret appended to the plaintext before
// hashing, so password hashes cannot be attacked from a database dump
// alone. It lives in configuration, never next to the hashes.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt password hasher with the given work factor.
// An empty pepper disables peppering.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	return &Bcrypt{cost: cost, pepper: pepper}
}

// Hash returns the bcrypt hash of the peppered plaintext.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext+h.pepper), h.cost)
}

// Verify reports whether plaintext matches the stored hash.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+h.pepper)) == nil
}
