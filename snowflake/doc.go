/*
Package snowflake provides ordered, collision-resistant 64-bit id allocation
for distributed call chains.

# Overview

Each Allocator packs a millisecond timestamp, a group id, a machine id, and an
intra-millisecond sequence counter into one 64-bit value:

	id = [timestamp][group][machine][sequence]

With the default 37/5/10 bit split (12 sequence bits derived), a single
allocator hands out up to 4096 ids per millisecond per (group, machine) pair,
and every id it returns is strictly greater than the last.

# Guarantees

- Ids from one Allocator are totally ordered by (timestamp, sequence)
- No central counter service and no coordination between machines
- Allocation is lock-free: the timestamp/sequence decision commits as a
  single compare-and-swap over one packed word

# Failure modes

Allocation refuses rather than corrects. Next returns ErrInvalidIdentity when
a group or machine id does not fit its configured width, ErrClockRegression
when the local clock moved backwards, and ErrSequenceExhausted when a single
millisecond's sequence budget is spent. Callers own the retry policy; waiting
for the next millisecond clears both clock errors.

# Usage

	alloc, err := snowflake.New(snowflake.DefaultConfig())
	if err != nil {
		return err
	}

	id, err := alloc.Next(groupID, machineID)
	if errors.Is(err, snowflake.ErrSequenceExhausted) {
		// back off until the next millisecond and retry
	}
*/
package snowflake
