package services

import "errors"

// Validation errors: deterministic, local, surfaced verbatim, never mutate
// state. First failing check wins (recipient, then amount, then funds).
var (
	ErrMissingRecipient  = errors.New("please select a recipient")
	ErrInvalidAmount     = errors.New("please enter a valid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Capability errors: the possession factor cannot run at all. Presented as an
// availability problem, not a data problem.
var (
	ErrAuthUnavailable = errors.New("authentication is not available on this device")
	ErrAuthNotEnrolled = errors.New("no authentication credential is enrolled")
)

// ErrChallengeDeclined is the silent abort: the user cancelled or failed the
// challenge. No mutation, no error dialog.
var ErrChallengeDeclined = errors.New("authentication declined")

// ErrTransferFailed covers unexpected commit-phase failures. State is exactly
// as before the attempt.
var ErrTransferFailed = errors.New("transfer failed, try again")

// ErrTransferInProgress is returned when an Idempotency-Key replay finds the
// original attempt still pending commit.
var ErrTransferInProgress = errors.New("transfer is still processing")

// ErrContactsAccessDenied aborts an import before any recipient is created.
var ErrContactsAccessDenied = errors.New("contacts access denied")
