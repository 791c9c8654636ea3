package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PINGuard checks the shared cancellation PIN against a bcrypt hash.
type PINGuard struct {
	hash []byte
}

func NewPINGuard(hash []byte) *PINGuard { return &PINGuard{hash: hash} }

// Verify reports whether pin matches. An empty pin never matches.
func (g *PINGuard) Verify(pin string) bool {
	if g == nil || pin == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(pin)) == nil
}
