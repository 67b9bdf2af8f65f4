// Package sampling decides which spans are worth persisting.
//
// The filter admits at most SpanLimit spans per 1ms bucket, which bounds
// worst-case export volume from high-QPS services. Spans whose trace id was
// pre-set upstream are force-sampled and never throttled.
package sampling

import (
	"math"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/tracewire/tracewire/span"
)

// DefaultSpanLimit is the per-millisecond admission ceiling used when no
// limit is configured.
const DefaultSpanLimit = 1000

// Clock is the time source consumed by a Filter. Satisfied by clockz.Clock
// implementations.
type Clock interface {
	Now() time.Time
}

// Filter is a stateful accept/reject decision shared by every concurrent
// span produced by one pipeline. Safe for concurrent use.
type Filter struct {
	clock Clock
	limit uint32

	// The bucket timestamp and its admission count form one decision:
	// racing callers must not interleave between reading one and
	// updating the other, so both live under the same lock.
	mu       sync.Mutex
	bucketMS int64
	accepted uint32
}

// New creates a filter reading the real clock. A zero limit selects
// DefaultSpanLimit.
func New(limit uint32) *Filter {
	return NewWithClock(limit, clockz.RealClock)
}

// NewWithClock creates a filter with an injected clock for deterministic
// testing.
func NewWithClock(limit uint32, clock Clock) *Filter {
	if limit == 0 {
		limit = DefaultSpanLimit
	}
	return &Filter{
		clock: clock,
		limit: limit,
		// Any first observation must open a fresh bucket.
		bucketMS: math.MinInt64,
	}
}

// Limit returns the configured per-bucket ceiling.
func (f *Filter) Limit() uint32 {
	return f.limit
}

// Accept reports whether the span should be exported, charging it against
// the current millisecond bucket. Force-sampled spans always pass but are
// still counted for bucket bookkeeping.
func (f *Filter) Accept(s *span.Span) bool {
	now := f.clock.Now().UnixMilli()

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case s.HasTraceID():
		f.accepted++
	case now == f.bucketMS && f.accepted < f.limit:
		f.accepted++
	case now > f.bucketMS:
		// Fresh bucket; this span is its first admission.
		f.bucketMS = now
		f.accepted = 1
	default:
		// Bucket full, or the clock did not advance.
		return false
	}
	return true
}
