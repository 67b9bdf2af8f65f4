package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewire/tracewire/snowflake"
)

// scriptedAllocator returns canned results in order.
type scriptedAllocator struct {
	results []error
	calls   int
}

func (a *scriptedAllocator) Next(_, _ uint64) (uint64, error) {
	err := a.results[a.calls]
	a.calls++
	if err != nil {
		return 0, err
	}
	return uint64(a.calls), nil
}

func TestAllocateSucceedsAfterExhaustion(t *testing.T) {
	a := &scriptedAllocator{results: []error{
		snowflake.ErrSequenceExhausted,
		snowflake.ErrSequenceExhausted,
		nil,
	}}

	id, err := Allocate(context.Background(), a, 1, 1, Settings{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, 3, a.calls)
}

func TestAllocateGivesUpAfterMaxAttempts(t *testing.T) {
	a := &scriptedAllocator{results: []error{
		snowflake.ErrSequenceExhausted,
		snowflake.ErrSequenceExhausted,
	}}

	_, err := Allocate(context.Background(), a, 1, 1, Settings{MaxAttempts: 2})
	assert.ErrorIs(t, err, snowflake.ErrSequenceExhausted)
	assert.Equal(t, 2, a.calls)
}

func TestAllocateInvalidIdentityIsTerminal(t *testing.T) {
	a := &scriptedAllocator{results: []error{
		snowflake.ErrInvalidIdentity,
	}}

	_, err := Allocate(context.Background(), a, 1, 1, Settings{MaxAttempts: 5})
	assert.ErrorIs(t, err, snowflake.ErrInvalidIdentity)
	assert.Equal(t, 1, a.calls, "waiting cannot fix an oversized identity")
}

func TestAllocateHonorsContext(t *testing.T) {
	a := &scriptedAllocator{results: []error{
		snowflake.ErrSequenceExhausted,
		nil,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Allocate(ctx, a, 1, 1, Settings{Wait: time.Hour})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, a.calls)
}

func TestAllocateRealAllocatorRegression(t *testing.T) {
	// A clock regression also clears after waiting, as long as the
	// clock catches back up; with the real clock a 1ms wait is enough
	// for the monotonic reading to pass any prior value.
	alloc, err := snowflake.New(snowflake.DefaultConfig())
	require.NoError(t, err)

	id, err := Allocate(context.Background(), alloc, 1, 1, Settings{})
	require.NoError(t, err)
	assert.NotZero(t, id)
}
