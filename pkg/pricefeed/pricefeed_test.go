package pricefeed

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	price *big.Int
	at    time.Time
	err   error
	calls int
}

func (f *fakeSource) LatestRoundData(ctx context.Context) (*big.Int, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, time.Time{}, f.err
	}
	return f.price, f.at, nil
}

func TestFeed(t *testing.T) {
	t.Run("latest is empty before the first poll", func(t *testing.T) {
		f := New(&fakeSource{}, time.Second, nil)
		assert.Nil(t, f.Latest().Price)
	})

	t.Run("run polls immediately", func(t *testing.T) {
		src := &fakeSource{price: big.NewInt(3_000_00000000), at: time.Unix(1_700_000_000, 0)}
		f := New(src, time.Hour, nil)

		ctx, cancel := context.WithCancel(context.Background())
		go f.Run(ctx)

		require.Eventually(t, func() bool {
			return f.Latest().Price != nil
		}, 2*time.Second, 5*time.Millisecond)
		cancel()

		snap := f.Latest()
		assert.Equal(t, big.NewInt(3_000_00000000), snap.Price)
		assert.Equal(t, time.Unix(1_700_000_000, 0), snap.UpdatedAt)
	})

	t.Run("poll failure keeps the previous snapshot", func(t *testing.T) {
		src := &fakeSource{price: big.NewInt(100), at: time.Unix(1_700_000_000, 0)}
		f := New(src, time.Hour, nil)

		f.poll(context.Background())
		require.NotNil(t, f.Latest().Price)

		src.mu.Lock()
		src.err = errors.New("feed unavailable")
		src.mu.Unlock()

		f.poll(context.Background())
		assert.Equal(t, big.NewInt(100), f.Latest().Price, "stale price must survive a failed poll")
	})
}
