package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sniper-hq/sniperwatch/pkg/models"
)

func TestResolve(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	future := uint64(now.Unix()) + 3600
	past := uint64(now.Unix()) - 3600

	tests := []struct {
		name     string
		intent   models.Intent
		expected models.Status
	}{
		{
			name:     "active before expiry",
			intent:   models.Intent{Expiry: future},
			expected: models.StatusActive,
		},
		{
			name:     "expired after expiry",
			intent:   models.Intent{Expiry: past},
			expected: models.StatusExpired,
		},
		{
			name:     "expired exactly at expiry",
			intent:   models.Intent{Expiry: uint64(now.Unix())},
			expected: models.StatusExpired,
		},
		{
			name:     "executed",
			intent:   models.Intent{Executed: true, Expiry: future},
			expected: models.StatusExecuted,
		},
		{
			name:     "cancelled",
			intent:   models.Intent{Cancelled: true, Expiry: future},
			expected: models.StatusCancelled,
		},
		{
			name:     "executed outranks elapsed expiry",
			intent:   models.Intent{Executed: true, Expiry: past},
			expected: models.StatusExecuted,
		},
		{
			name:     "cancelled outranks elapsed expiry",
			intent:   models.Intent{Cancelled: true, Expiry: past},
			expected: models.StatusCancelled,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.intent, now))
		})
	}
}

func TestCanCancel(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	future := uint64(now.Unix()) + 3600
	past := uint64(now.Unix()) - 3600

	t.Run("active is cancellable", func(t *testing.T) {
		assert.True(t, CanCancel(models.Intent{Expiry: future}, now))
	})

	t.Run("expired remains cancellable", func(t *testing.T) {
		assert.True(t, CanCancel(models.Intent{Expiry: past}, now))
	})

	t.Run("executed is not cancellable", func(t *testing.T) {
		assert.False(t, CanCancel(models.Intent{Executed: true, Expiry: future}, now))
	})

	t.Run("cancelled is not cancellable", func(t *testing.T) {
		assert.False(t, CanCancel(models.Intent{Cancelled: true, Expiry: future}, now))
	})
}
