// Package auth contains the credential primitives of the console: adaptive
// password hashing, the password-strength policy, and API access tokens.
package auth

import (
	"crypto/rand"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt. Each generated hash
// carries its own random salt, so hashing the same plaintext twice yields two
// different values that both verify.
type Hasher struct {
	cost  int
	decoy []byte
}

// NewHasher returns a Hasher with the given bcrypt cost. A decoy hash is
// generated once from random input; it is burned on lookups for unknown
// usernames so that the failure path still pays the full bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	decoy, err := bcrypt.GenerateFromPassword(b, cost)
	if err != nil {
		return nil, err
	}
	return &Hasher{cost: cost, decoy: decoy}, nil
}

// Hash returns the bcrypt hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether the password matches the stored hash.
func (h *Hasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDecoy performs a comparison against the decoy hash and always
// reports false. It exists so the unknown-username path of authentication is
// not observably faster than a wrong password.
func (h *Hasher) VerifyDecoy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(password))
	return false
}
