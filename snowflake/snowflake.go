package snowflake

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// Default bit widths. The remaining 12 bits of the 64-bit id hold the
// intra-millisecond sequence counter.
const (
	DefaultTimestampBits = 37
	DefaultGroupBits     = 5
	DefaultMachineBits   = 10

	totalBits = 64
)

// DefaultEpoch anchors the timestamp field. 37 bits of milliseconds cover
// roughly 4.3 years from this point.
var DefaultEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrInvalidIdentity reports a group or machine id wider than its
	// configured bit width.
	ErrInvalidIdentity = errors.New("snowflake: identity out of range")

	// ErrClockRegression reports that the local clock moved backwards
	// between allocations. The allocator never corrects for this.
	ErrClockRegression = errors.New("snowflake: clock moved backwards")

	// ErrSequenceExhausted reports that the current millisecond's sequence
	// budget is spent. Retry after the clock advances.
	ErrSequenceExhausted = errors.New("snowflake: sequence exhausted")
)

// Clock is the time source consumed by an Allocator. Satisfied by
// clockz.Clock implementations.
type Clock interface {
	Now() time.Time
}

// Config defines the bit layout of allocated ids. Widths are fixed at
// construction; derived shifts and maxima never change afterwards.
type Config struct {
	TimestampBits uint
	GroupBits     uint
	MachineBits   uint

	// Epoch is subtracted from the clock reading before packing.
	// Zero value means DefaultEpoch.
	Epoch time.Time
}

// DefaultConfig returns the 37/5/10 layout used by the tracing pipeline.
func DefaultConfig() Config {
	return Config{
		TimestampBits: DefaultTimestampBits,
		GroupBits:     DefaultGroupBits,
		MachineBits:   DefaultMachineBits,
		Epoch:         DefaultEpoch,
	}
}

// SequenceBits returns the derived sequence field width.
func (c Config) SequenceBits() uint {
	return totalBits - c.TimestampBits - c.GroupBits - c.MachineBits
}

// Validate checks that every field fits and at least one sequence bit
// remains.
func (c Config) Validate() error {
	if c.TimestampBits == 0 || c.GroupBits == 0 || c.MachineBits == 0 {
		return fmt.Errorf("snowflake: zero-width field in config %d/%d/%d",
			c.TimestampBits, c.GroupBits, c.MachineBits)
	}
	if c.TimestampBits+c.GroupBits+c.MachineBits >= totalBits {
		return fmt.Errorf("snowflake: config %d/%d/%d leaves no sequence bits",
			c.TimestampBits, c.GroupBits, c.MachineBits)
	}
	return nil
}

// Parts is a decoded id.
type Parts struct {
	Timestamp uint64
	Group     uint64
	Machine   uint64
	Sequence  uint64
}

// Allocator hands out ordered 64-bit ids. Safe for concurrent use by
// multiple goroutines.
type Allocator struct {
	cfg   Config
	clock Clock

	sequenceBits uint
	groupMax     uint64
	machineMax   uint64
	sequenceMax  uint64

	machineShift   uint
	groupShift     uint
	timestampShift uint

	epochMilli int64

	// state packs (lastTimestamp << sequenceBits) | sequence, so the
	// regression check, sequence bump, and timestamp adoption commit as
	// one compare-and-swap. Keeping the two values in separate atomics
	// would let racing callers interleave between them and mint
	// duplicate ids.
	state atomic.Uint64
}

// New creates an allocator reading the real clock.
func New(cfg Config) (*Allocator, error) {
	return NewWithClock(cfg, clockz.RealClock)
}

// NewWithClock creates an allocator with an injected clock for
// deterministic testing.
func NewWithClock(cfg Config, clock Clock) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Epoch.IsZero() {
		cfg.Epoch = DefaultEpoch
	}

	seqBits := cfg.SequenceBits()
	a := &Allocator{
		cfg:          cfg,
		clock:        clock,
		sequenceBits: seqBits,
		groupMax:     1<<cfg.GroupBits - 1,
		machineMax:   1<<cfg.MachineBits - 1,
		sequenceMax:  1<<seqBits - 1,
		epochMilli:   cfg.Epoch.UnixMilli(),
	}
	a.machineShift = seqBits
	a.groupShift = a.machineShift + cfg.MachineBits
	a.timestampShift = a.groupShift + cfg.GroupBits
	return a, nil
}

// Config returns the layout the allocator was built with.
func (a *Allocator) Config() Config {
	return a.cfg
}

// Next allocates one id for the given identity. Each identifier is checked
// against its own configured width before the clock is read.
func (a *Allocator) Next(groupID, machineID uint64) (uint64, error) {
	if groupID > a.groupMax {
		return 0, fmt.Errorf("%w: group id %d exceeds %d", ErrInvalidIdentity, groupID, a.groupMax)
	}
	if machineID > a.machineMax {
		return 0, fmt.Errorf("%w: machine id %d exceeds %d", ErrInvalidIdentity, machineID, a.machineMax)
	}

	for {
		nowMilli := a.clock.Now().UnixMilli() - a.epochMilli
		if nowMilli < 0 {
			return 0, fmt.Errorf("%w: clock reads before epoch", ErrClockRegression)
		}
		now := uint64(nowMilli)

		old := a.state.Load()
		last := old >> a.sequenceBits
		seq := old & a.sequenceMax

		switch {
		case now < last:
			return 0, ErrClockRegression
		case now == last:
			if seq == a.sequenceMax {
				return 0, ErrSequenceExhausted
			}
			seq++
		default:
			seq = 0
		}

		// Re-read the clock on contention: a racing caller may have
		// advanced the stored timestamp past our reading.
		if !a.state.CompareAndSwap(old, now<<a.sequenceBits|seq) {
			continue
		}

		return now<<a.timestampShift |
			groupID<<a.groupShift |
			machineID<<a.machineShift |
			seq, nil
	}
}

// Decompose splits an id back into its fields using the configured shifts.
func (a *Allocator) Decompose(id uint64) Parts {
	return Parts{
		Timestamp: id >> a.timestampShift,
		Group:     id >> a.groupShift & a.groupMax,
		Machine:   id >> a.machineShift & a.machineMax,
		Sequence:  id & a.sequenceMax,
	}
}
