package activity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	t.Run("entries accumulate in order", func(t *testing.T) {
		l := NewLog(5)

		l.Append(SeverityInfo, "first")
		l.Append(SeveritySuccess, "second")

		entries := l.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "first", entries[0].Message)
		assert.Equal(t, "second", entries[1].Message)
		assert.Equal(t, SeverityInfo, entries[0].Severity)
		assert.Less(t, entries[0].Sequence, entries[1].Sequence)
	})

	t.Run("oldest entry is evicted at capacity", func(t *testing.T) {
		l := NewLog(3)

		for i := 1; i <= 5; i++ {
			l.Append(SeverityInfo, fmt.Sprintf("entry %d", i))
		}

		entries := l.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, "entry 3", entries[0].Message)
		assert.Equal(t, "entry 5", entries[2].Message)
	})

	t.Run("sequence keeps counting past eviction", func(t *testing.T) {
		l := NewLog(2)

		for i := 0; i < 4; i++ {
			l.Append(SeverityInfo, "x")
		}

		entries := l.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, uint64(3), entries[0].Sequence)
		assert.Equal(t, uint64(4), entries[1].Sequence)
	})

	t.Run("zero capacity is clamped", func(t *testing.T) {
		l := NewLog(0)
		l.Append(SeverityDanger, "only")
		assert.Equal(t, 1, l.Len())
	})
}

func TestEntriesSnapshot(t *testing.T) {
	l := NewLog(3)
	l.Append(SeverityInfo, "a")

	snap := l.Entries()
	l.Append(SeverityInfo, "b")

	assert.Len(t, snap, 1, "snapshot must not see later appends")
	assert.Equal(t, 2, l.Len())
}
