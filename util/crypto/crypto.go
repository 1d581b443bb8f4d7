// Package crypto provides password hashing and verification.
package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/beyondbeauty/press/util/common"
)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// Vault hashes and verifies account passwords. It never keeps or logs the
// plaintext.
type Vault struct {
	Cost int
}

// NewVault returns a Vault with the given bcrypt work factor, clamped to the
// range bcrypt accepts.
func NewVault(cost int) *Vault {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Vault{Cost: cost}
}

// Hash generates a salted bcrypt hash of the password.
func (v *Vault) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.Cost)
	if err != nil {
		return "", &common.CryptoError{Op: "hash password", Err: err}
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. Any mismatch, including a
// malformed hash, is false. Passwords longer than MaxPasswordBytes never
// match: bcrypt would compare only their first 72 bytes.
func (v *Vault) Verify(password, hash string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
