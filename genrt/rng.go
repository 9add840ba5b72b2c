// Package genrt is the minimal runtime that code emitted by package emit
// imports. It defines the RNG surface and output buffer the generated
// generate_* methods are written against, plus a deterministic buffered RNG
// used to drive reproducible test vectors.
package genrt

import "math/bits"

// Rng is the uniform random source emitted generator code is written
// against (spec §6: "a uniform-integer RNG trait with gen_range, next_u32,
// next_u64, fill_bytes"). GenRange, GenBool, NextU8, and NextU16 are free
// functions below built only on these three methods, so any Rng
// implementation gets them for free and their byte consumption stays
// predictable.
type Rng interface {
	// NextU32 returns the next 32 bits of the stream.
	NextU32() uint32

	// NextU64 returns the next 64 bits of the stream.
	NextU64() uint64

	// FillBytes fills p entirely from the stream.
	FillBytes(p []byte)
}

// GenRange returns a value in [lo, hi) drawn from r by widening
// multiplication: a NextU32 draw times the span carries the result in its
// high 32 bits. A draw whose low 32 bits fall above a zone sized to a
// multiple of the span is rejected and redrawn, which keeps the result
// unbiased. Low products are always accepted, so an all-zero stream (such
// as an exhausted BufRng) returns lo. Panics if hi <= lo.
func GenRange(r Rng, lo, hi uint32) uint32 {
	if hi <= lo {
		panic("genrt: GenRange requires hi > lo")
	}
	span := hi - lo
	zone := (span << bits.LeadingZeros32(span)) - 1
	for {
		product := uint64(r.NextU32()) * uint64(span)
		if uint32(product) <= zone {
			return lo + uint32(product>>32)
		}
	}
}

// NextU8 draws 8 bits, consuming one NextU32 draw and truncating it.
func NextU8(r Rng) uint8 {
	return uint8(r.NextU32())
}

// NextU16 draws 16 bits, consuming one NextU32 draw and truncating it.
func NextU16(r Rng) uint16 {
	return uint16(r.NextU32())
}

// GenBool draws a boolean from r with the given probability of true,
// consuming one NextU64 draw and comparing it against a fixed-point
// threshold, matching the behavior of a full-width Bernoulli sample.
func GenBool(r Rng, probability float64) bool {
	if probability <= 0 {
		r.NextU64()
		return false
	}
	if probability >= 1 {
		r.NextU64()
		return true
	}
	threshold := uint64(probability * (1 << 64))
	return r.NextU64() < threshold
}
