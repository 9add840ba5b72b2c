package genrt

// Buffer is the growable output sequence emitted generator methods write
// into. It doubles as both the byte-mode and token-id-mode output: exactly
// one of its two slices is used for the lifetime of a single generate_*
// call, selected by the grammar's output_terminal_ids policy flag.
type Buffer struct {
	bytes []byte
	ids   []int
}

// NewBuffer returns an empty Buffer ready for byte-mode output.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewIDBuffer returns an empty Buffer ready for token-id-mode output.
func NewIDBuffer() *Buffer {
	return &Buffer{ids: make([]int, 0, 16)}
}

// PushByte appends a single byte. Always the safe path; single-byte
// terminals never use the bulk-copy fast path.
func (b *Buffer) PushByte(c byte) {
	b.bytes = append(b.bytes, c)
}

// Extend appends data in the safe, bounds-checked way.
func (b *Buffer) Extend(data []byte) {
	b.bytes = append(b.bytes, data...)
}

// ExtendFast appends data using a reserve-then-reslice path: it grows the
// backing array in one step and copies directly into the grown region,
// avoiding append's per-call growth-check overhead for the hot multi-byte
// terminal path. Behaviorally identical to Extend; Go's bounds-checked
// slices give no way to skip the copy safely, so this differs from Extend
// only in amortized allocation pattern, matching the "reserve + set_len"
// intent of the original without resorting to unsafe.
func (b *Buffer) ExtendFast(data []byte) {
	n := len(b.bytes)
	need := n + len(data)
	if cap(b.bytes) < need {
		grown := make([]byte, n, need*2+1)
		copy(grown, b.bytes)
		b.bytes = grown
	}
	b.bytes = b.bytes[:need]
	copy(b.bytes[n:], data)
}

// PushID appends a single terminal index in token-id mode.
func (b *Buffer) PushID(id int) {
	b.ids = append(b.ids, id)
}

// Bytes returns the accumulated byte-mode output.
func (b *Buffer) Bytes() []byte {
	return b.bytes
}

// IDs returns the accumulated token-id-mode output.
func (b *Buffer) IDs() []int {
	return b.ids
}

// Reset empties the buffer for reuse, retaining its backing arrays.
func (b *Buffer) Reset() {
	b.bytes = b.bytes[:0]
	b.ids = b.ids[:0]
}
