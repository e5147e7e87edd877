package services

import "context"

// Authenticator is the possession-factor collaborator gating a transfer.
// Availability failures and declines are outcomes, not errors; an error means
// the collaborator itself broke.
type Authenticator interface {
	Availability(ctx context.Context) (available, enrolled bool, err error)
	// Challenge returns true only on explicit success; false is a decline.
	Challenge(ctx context.Context, prompt, presented string) (bool, error)
}
