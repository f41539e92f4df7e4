// Package status derives the lifecycle state of an intent from its
// stored fields and wall-clock time.
package status

import (
	"time"

	"github.com/sniper-hq/sniperwatch/pkg/models"
)

// Resolve computes the current lifecycle state of an intent.
//
// Execution and cancellation are permanent outcomes and outrank a
// merely-elapsed expiry: a transaction confirmed late may execute or
// cancel an intent at or after its nominal expiry, and the venue's
// terminal flags are authoritative over the clock.
func Resolve(intent models.Intent, now time.Time) models.Status {
	switch {
	case intent.Executed:
		return models.StatusExecuted
	case intent.Cancelled:
		return models.StatusCancelled
	case uint64(now.Unix()) >= intent.Expiry:
		return models.StatusExpired
	default:
		return models.StatusActive
	}
}

// CanCancel reports whether cancellation may be offered for the intent.
// Expired intents remain cancellable to reclaim escrowed funds.
func CanCancel(intent models.Intent, now time.Time) bool {
	s := Resolve(intent, now)
	return s == models.StatusActive || s == models.StatusExpired
}
