package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	var callTimes []time.Time
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		callTimes = append(callTimes, time.Now())
		if len(callTimes) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, callTimes, 3)

	// Gaps between attempts must be non-decreasing.
	gap1 := callTimes[1].Sub(callTimes[0])
	gap2 := callTimes[2].Sub(callTimes[1])
	assert.GreaterOrEqual(t, gap1, 10*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, gap1)
}

func TestRetryExhaustionReturnsLastError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("still failing")
	})

	require.Error(t, err)
	assert.Equal(t, "still failing", err.Error())
	assert.Equal(t, 3, calls)
}

func TestRetryStopsImmediatelyOnSuccess(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}

	calls := 0
	start := time.Now()
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	calls := 0
	err := policy.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
