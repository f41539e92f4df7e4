package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	t.Run("trips after threshold failures", func(t *testing.T) {
		cb := NewCircuitBreaker(true, 3, time.Minute, time.Minute, nil)

		assert.False(t, cb.RecordFailure())
		assert.False(t, cb.RecordFailure())
		assert.True(t, cb.RecordFailure())
		assert.True(t, cb.IsOpen())
		assert.Equal(t, "open", cb.State())
	})

	t.Run("success closes the circuit", func(t *testing.T) {
		cb := NewCircuitBreaker(true, 2, time.Minute, time.Minute, nil)

		cb.RecordFailure()
		cb.RecordFailure()
		assert.True(t, cb.IsOpen())

		cb.RecordSuccess()
		assert.False(t, cb.IsOpen())
	})

	t.Run("reset timeout reopens for probing", func(t *testing.T) {
		cb := NewCircuitBreaker(true, 1, time.Minute, 10*time.Millisecond, nil)

		cb.RecordFailure()
		assert.True(t, cb.IsOpen())

		time.Sleep(20 * time.Millisecond)
		assert.False(t, cb.IsOpen())
	})

	t.Run("failures outside the window do not accumulate", func(t *testing.T) {
		cb := NewCircuitBreaker(true, 2, 10*time.Millisecond, time.Minute, nil)

		cb.RecordFailure()
		time.Sleep(20 * time.Millisecond)
		assert.False(t, cb.RecordFailure(), "stale failure must not count toward the threshold")
	})

	t.Run("disabled breaker never opens", func(t *testing.T) {
		cb := NewCircuitBreaker(false, 1, time.Minute, time.Minute, nil)

		for i := 0; i < 10; i++ {
			assert.False(t, cb.RecordFailure())
		}
		assert.False(t, cb.IsOpen())
	})

	t.Run("manual reset closes the circuit", func(t *testing.T) {
		cb := NewCircuitBreaker(true, 1, time.Minute, time.Minute, nil)

		cb.RecordFailure()
		assert.True(t, cb.IsOpen())

		cb.Reset()
		assert.False(t, cb.IsOpen())
		assert.Equal(t, "closed", cb.State())
	})
}
