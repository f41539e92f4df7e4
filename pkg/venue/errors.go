package venue

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates a read of an intent id the venue has never
	// assigned. During backfill races this may resolve on a later retry.
	ErrNotFound = errors.New("intent not found")

	// ErrRejected indicates the venue refused a write. Permanent for
	// that submission; the caller must resubmit with new parameters.
	ErrRejected = errors.New("submission rejected by venue")

	// ErrNotOwner indicates a cancel attempt by a non-owner account.
	ErrNotOwner = errors.New("caller is not the intent owner")

	// ErrAlreadyTerminal indicates a cancel of an executed or cancelled intent.
	ErrAlreadyTerminal = errors.New("intent already terminal")

	// ErrReadOnly indicates a write attempt on a session with no signing key.
	ErrReadOnly = errors.New("session is read-only, no private key configured")
)

// classifyRevert maps venue revert strings onto the error taxonomy.
// The venue still wins races, so these must be tolerated even when the
// local state machine should have prevented the call.
func classifyRevert(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NotOwner") || strings.Contains(msg, "not owner"):
		return ErrNotOwner
	case strings.Contains(msg, "AlreadyExecuted") ||
		strings.Contains(msg, "AlreadyCancelled") ||
		strings.Contains(msg, "already terminal"):
		return ErrAlreadyTerminal
	case strings.Contains(msg, "execution reverted"):
		return ErrRejected
	default:
		return err
	}
}
