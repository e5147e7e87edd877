package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

func HashPIN(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPIN(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// PINAuthenticator is the possession factor for transfers. It stands in for
// the device biometric prompt: availability maps to "hardware present",
// enrollment to "a PIN is set", and the challenge compares the presented PIN
// against the enrolled bcrypt hash.
type PINAuthenticator struct {
	hash     string
	disabled bool
}

// NewPINAuthenticator enrolls pin (empty means not enrolled); disabled
// models absent hardware.
func NewPINAuthenticator(pin string, disabled bool) (*PINAuthenticator, error) {
	a := &PINAuthenticator{disabled: disabled}
	if pin != "" {
		h, err := HashPIN(pin)
		if err != nil {
			return nil, err
		}
		a.hash = h
	}
	return a, nil
}

func (a *PINAuthenticator) Availability(ctx context.Context) (available, enrolled bool, err error) {
	return !a.disabled, a.hash != "", nil
}

// Challenge returns (false, nil) on a wrong PIN: a decline, not an error.
func (a *PINAuthenticator) Challenge(ctx context.Context, prompt, presented string) (bool, error) {
	if err := VerifyPIN(presented, a.hash); err != nil {
		return false, nil
	}
	return true, nil
}
