package xtsn

import "encoding/binary"

// Counter is the 128-bit unsigned sector index (C2 in the design), stored
// as two 64-bit halves. Practical use never reaches 2^128, so overflow of
// Hi past 2^64 is not handled — matching the original switchfs SectorOffset.
type Counter struct {
	Hi uint64
	Lo uint64
}

// NewCounter builds a counter from its big-endian halves.
func NewCounter(hi, lo uint64) Counter {
	return Counter{Hi: hi, Lo: lo}
}

// CounterFromSectorOffset splits a single 128-bit sector offset, given as
// (hi, lo) where hi holds the top 64 bits, into a Counter. This is the
// "single big integer" shape spec.md §6 allows as an alternative to
// passing (hi, lo) directly.
func CounterFromSectorOffset(hi, lo uint64) Counter {
	return NewCounter(hi, lo)
}

// Step increments the counter by 1, propagating carry from Lo into Hi.
func (c *Counter) Step() {
	c.StepN(1)
}

// StepN increments the counter by n, propagating carry from Lo into Hi.
// Carry is detected via the unsigned-wraparound predicate lo+n < lo.
func (c *Counter) StepN(n uint64) {
	newLo := c.Lo + n
	if newLo < c.Lo {
		c.Hi++
	}
	c.Lo = newLo
}

// Bytes returns the 16-byte big-endian serialisation bswap(hi) || bswap(lo),
// the plaintext input to the tweak cipher (spec invariant 6).
func (c Counter) Bytes() [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], c.Hi)
	binary.BigEndian.PutUint64(out[8:16], c.Lo)
	return out
}
