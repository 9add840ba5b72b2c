package genrt

import "encoding/binary"

// BufRng is a deterministic Rng backed by a fixed byte slice, used to drive
// reproducible test vectors for emitted generators. It reads little-endian
// integers from the head of the slice, zero-pads a short read, and returns
// all zeros once exhausted; it never errors.
type BufRng struct {
	buf []byte
}

// NewBufRng returns a BufRng that reads from buf. It does not copy buf;
// mutating buf after this call invalidates the adapter's remaining state.
func NewBufRng(buf []byte) *BufRng {
	return &BufRng{buf: buf}
}

// NextU32 consumes 4 bytes, zero-padding a short or empty tail.
func (r *BufRng) NextU32() uint32 {
	var ibuf [4]byte
	n := copy(ibuf[:], r.buf)
	r.buf = r.buf[n:]
	return binary.LittleEndian.Uint32(ibuf[:])
}

// NextU64 consumes 8 bytes, zero-padding a short or empty tail.
func (r *BufRng) NextU64() uint64 {
	var ibuf [8]byte
	n := copy(ibuf[:], r.buf)
	r.buf = r.buf[n:]
	return binary.LittleEndian.Uint64(ibuf[:])
}

// FillBytes fills dest entirely, zero-padding once the buffer is
// exhausted, and never consumes more of the stream than dest's length.
func (r *BufRng) FillBytes(dest []byte) {
	n := copy(dest, r.buf)
	r.buf = r.buf[n:]
	for i := n; i < len(dest); i++ {
		dest[i] = 0
	}
}
