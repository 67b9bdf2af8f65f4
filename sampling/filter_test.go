package sampling

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zoobzio/clockz"

	"github.com/tracewire/tracewire/span"
)

// advanceClock is the slice of the fake clock's surface these tests drive.
type advanceClock interface {
	Clock
	Advance(d time.Duration)
}

func newFakeFilter(limit uint32) (*Filter, advanceClock) {
	clock := clockz.NewFakeClock()
	clock.Advance(time.Hour) // move off the fake clock's start
	return NewWithClock(limit, clock), clock
}

func unforced() *span.Span {
	return span.New()
}

func forced() *span.Span {
	s := span.New()
	s.TraceID = 99
	return s
}

func TestDefaultLimit(t *testing.T) {
	f := New(0)
	assert.Equal(t, uint32(DefaultSpanLimit), f.Limit())
}

func TestBucketCeiling(t *testing.T) {
	const limit = 5
	f, _ := newFakeFilter(limit)

	// Clock frozen: everything lands in one bucket.
	for i := 0; i < limit; i++ {
		s := unforced()
		assert.True(t, f.Accept(s), "span %d is within the bucket budget", i)
		span.Release(s)
	}
	for i := 0; i < 5; i++ {
		s := unforced()
		assert.False(t, f.Accept(s), "span %d exceeds the bucket budget", limit+i)
		span.Release(s)
	}
}

func TestForcedSpanBypassesFullBucket(t *testing.T) {
	const limit = 3
	f, _ := newFakeFilter(limit)

	for i := 0; i < limit; i++ {
		s := unforced()
		assert.True(t, f.Accept(s))
		span.Release(s)
	}

	s := unforced()
	assert.False(t, f.Accept(s), "bucket is exhausted")
	span.Release(s)

	fs := forced()
	assert.True(t, f.Accept(fs), "forced sampling is never throttled")
	span.Release(fs)
}

func TestFreshBucketResetsBudget(t *testing.T) {
	const limit = 2
	f, clock := newFakeFilter(limit)

	for i := 0; i < limit+1; i++ {
		s := unforced()
		f.Accept(s)
		span.Release(s)
	}

	clock.Advance(time.Millisecond)

	s := unforced()
	assert.True(t, f.Accept(s), "a new millisecond reopens admission")
	span.Release(s)

	// The reopening span counted itself: exactly limit-1 more fit.
	accepted := 0
	for i := 0; i < limit; i++ {
		s := unforced()
		if f.Accept(s) {
			accepted++
		}
		span.Release(s)
	}
	assert.Equal(t, limit-1, accepted)
}

func TestConcurrentAcceptBounded(t *testing.T) {
	const limit = 100
	f, _ := newFakeFilter(limit)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)

	wg.Add(8)
	for g := 0; g < 8; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s := unforced()
				ok := f.Accept(s)
				span.Release(s)
				if ok {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	// Frozen clock: one bucket, never more than the ceiling.
	assert.Equal(t, limit, accepted)
}
