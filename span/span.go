// Package span defines the flat record of one traced RPC call.
//
// A Span is pure data: identity, timing, and outcome of a single call,
// with explicit unset sentinels instead of optional types. Spans are
// leased from a free pool and must be released exactly once, by whichever
// pipeline stage touches them last.
package span

import (
	"math"
	"sync"
)

// Unset sentinels. A freshly leased span carries these in every field; the
// serialization boundary compares against them to decide what "absent"
// means on the wire.
const (
	UnsetUint64 uint64 = math.MaxUint64
	UnsetUint32 uint32 = math.MaxUint32
	UnsetInt    int    = -1
)

// Span records one traced call. Not safe for concurrent mutation; a span
// has exactly one owner at any point of its lifecycle.
type Span struct {
	TraceID      uint64
	SpanID       uint32
	ParentSpanID uint32

	ServiceName string
	MethodName  string

	DataType     int
	CompressType int
	Status       int
	Error        int

	// Milliseconds. StartTime and EndTime are absolute, Cost is the
	// call duration.
	StartTime uint64
	EndTime   uint64
	Cost      uint64

	RemoteIP string
}

var pool = sync.Pool{
	New: func() interface{} { return new(Span) },
}

// New leases a span with every field unset.
func New() *Span {
	s := pool.Get().(*Span)
	s.Reset()
	return s
}

// Release returns a span to the pool. The caller must not touch the span
// afterwards; releasing the same span twice is an ownership bug upstream.
func Release(s *Span) {
	if s == nil {
		return
	}
	pool.Put(s)
}

// Reset restores every field to its unset sentinel.
func (s *Span) Reset() {
	*s = Span{
		TraceID:      UnsetUint64,
		SpanID:       UnsetUint32,
		ParentSpanID: UnsetUint32,
		DataType:     UnsetInt,
		CompressType: UnsetInt,
		Status:       UnsetInt,
		Error:        UnsetInt,
		StartTime:    UnsetUint64,
		EndTime:      UnsetUint64,
		Cost:         UnsetUint64,
	}
}

// HasTraceID reports whether the trace id was set by the producer. A set
// trace id marks the span as force-sampled.
func (s *Span) HasTraceID() bool { return s.TraceID != UnsetUint64 }

// HasParent reports whether this span has a parent; root spans do not.
func (s *Span) HasParent() bool { return s.ParentSpanID != UnsetUint32 }

// HasEndTime reports whether the call has recorded its completion time.
func (s *Span) HasEndTime() bool { return s.EndTime != UnsetUint64 }

// HasCost reports whether the call duration was recorded. Cost and
// RemoteIP travel together on the wire.
func (s *Span) HasCost() bool { return s.Cost != UnsetUint64 }
