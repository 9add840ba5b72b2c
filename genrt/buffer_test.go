package genrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Buffer_pushAndExtend(t *testing.T) {
	b := NewBuffer()
	b.PushByte('a')
	b.Extend([]byte("bc"))
	b.ExtendFast([]byte("de"))
	assert.Equal(t, []byte("abcde"), b.Bytes())
}

func Test_Buffer_idMode(t *testing.T) {
	b := NewIDBuffer()
	b.PushID(3)
	b.PushID(1)
	assert.Equal(t, []int{3, 1}, b.IDs())
}

func Test_Buffer_reset(t *testing.T) {
	b := NewBuffer()
	b.Extend([]byte("xyz"))
	b.Reset()
	assert.Empty(t, b.Bytes())
	b.Extend([]byte("w"))
	assert.Equal(t, []byte("w"), b.Bytes())
}

func Test_Buffer_extendFastMatchesExtend(t *testing.T) {
	a := NewBuffer()
	b := NewBuffer()
	chunks := [][]byte{[]byte("a"), []byte("bcdef"), []byte(""), []byte("ghi")}
	for _, c := range chunks {
		a.Extend(c)
		b.ExtendFast(c)
	}
	assert.Equal(t, a.Bytes(), b.Bytes())
}
