package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrIncorrectPIN is returned when the supplied PIN does not match the
// configured hash.
var ErrIncorrectPIN = errors.New("incorrect PIN")

// PINVerifier checks a candidate PIN against a stored bcrypt hash. The hash
// is produced offline and configured via environment; the plaintext PIN is
// never stored.
type PINVerifier struct {
	hash []byte
}

// NewPINVerifier creates a verifier for the given bcrypt hash.
func NewPINVerifier(hash string) *PINVerifier {
	return &PINVerifier{hash: []byte(hash)}
}

// Verify checks the candidate PIN. Returns ErrIncorrectPIN on mismatch.
func (v *PINVerifier) Verify(pin string) error {
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(pin)); err != nil {
		return ErrIncorrectPIN
	}
	return nil
}

// HashPIN produces a bcrypt hash suitable for the ADMIN_PIN_HASH setting.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
