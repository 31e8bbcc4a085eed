package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidExpression(t *testing.T) {
	_, err := New("not a schedule", func(context.Context) {}, testr.New(t))
	assert.Error(t, err)
}

func TestUntilNext(t *testing.T) {
	s, err := New("0 */15 * * * * *", func(context.Context) {}, testr.New(t))
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 8, 5, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	wait, err := s.UntilNext(now)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, wait)
}

func TestUntilNextNoFutureActivation(t *testing.T) {
	s, err := New("0 0 0 1 1 * 2000", func(context.Context) {}, testr.New(t))
	require.NoError(t, err)

	_, err = s.UntilNext(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoNextRun)
}

func TestRunFiresJobUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int32
	s, err := New("* * * * * * *", func(context.Context) {
		if atomic.AddInt32(&runs, 1) == 2 {
			cancel()
		}
	}, testr.New(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}

func TestRunReturnsImmediatelyWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New("0 0 0 1 1 * *", func(context.Context) { t.Error("job must not run") }, testr.New(t))
	require.NoError(t, err)
	assert.NoError(t, s.Run(ctx))
}
