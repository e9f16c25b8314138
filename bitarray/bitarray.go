// Package bitarray provides densely-packed arrays of bits, used to hold
// keys and the selection masks that derive them.
package bitarray

import (
	"encoding/hex"
	"math/bits"
	"strings"
)

// A Dense is a bit array where every bit is explicitly represented,
// packed eight to a byte, least significant bit first.
type Dense struct {
	bits []byte
	n    int
}

// New returns a Dense whose data is a copy of data and whose length is
// bitLen. A negative bitLen is inferred from data. A bitLen longer than
// data implies trailing zeros.
func New(data []byte, bitLen int) Dense {
	if bitLen < 0 {
		bitLen = len(data) * 8
	}
	d := Dense{
		bits: make([]byte, bytesFor(bitLen)),
		n:    bitLen,
	}
	copy(d.bits, data)
	d.clearTail()
	return d
}

// Empty returns a zero-length Dense.
func Empty() Dense {
	return Dense{}
}

// Size returns the number of bits in d.
func (d Dense) Size() int {
	return d.n
}

// Get returns the bit at idx. Reads past the end return false, so the
// shorter operand of a binary operation behaves as if zero-padded.
func (d Dense) Get(idx int) bool {
	if idx < 0 || idx >= d.n {
		return false
	}
	return d.bits[idx/8]&(1<<(idx%8)) != 0
}

// AppendBit adds a single bit to the end of d.
func (d *Dense) AppendBit(bit bool) {
	if d.n%8 == 0 {
		d.bits = append(d.bits, 0)
	}
	if bit {
		d.bits[d.n/8] |= 1 << (d.n % 8)
	}
	d.n++
}

// Data returns a copy of the packed bytes underlying d.
func (d Dense) Data() []byte {
	data := make([]byte, len(d.bits))
	copy(data, d.bits)
	return data
}

// XOr returns the bitwise difference of d and other, sized to the
// longer of the two.
func (d Dense) XOr(other Dense) Dense {
	n := maxInt(d.n, other.n)
	r := Dense{
		bits: make([]byte, bytesFor(n)),
		n:    n,
	}
	for i := range r.bits {
		r.bits[i] = d.byteAt(i) ^ other.byteAt(i)
	}
	r.clearTail()
	return r
}

// XNor returns the bitwise equality of d and other, sized to the
// longer of the two.
func (d Dense) XNor(other Dense) Dense {
	n := maxInt(d.n, other.n)
	r := Dense{
		bits: make([]byte, bytesFor(n)),
		n:    n,
	}
	for i := range r.bits {
		r.bits[i] = ^(d.byteAt(i) ^ other.byteAt(i))
	}
	r.clearTail()
	return r
}

// Ones returns the number of set bits in d.
func (d Dense) Ones() int {
	var sum int
	for _, b := range d.bits {
		sum += bits.OnesCount8(b)
	}
	return sum
}

// Select returns the subsequence of d at positions where mask is set,
// preserving order.
func (d Dense) Select(mask Dense) Dense {
	var r Dense
	for i := 0; i < d.n; i++ {
		if mask.Get(i) {
			r.AppendBit(d.Get(i))
		}
	}
	return r
}

// Equal reports whether d and other have identical lengths and bits.
func (d Dense) Equal(other Dense) bool {
	if d.n != other.n {
		return false
	}
	for i := range d.bits {
		if d.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}

// String renders d as a binary string, index 0 leftmost.
func (d Dense) String() string {
	var sb strings.Builder
	sb.Grow(d.n)
	for i := 0; i < d.n; i++ {
		if d.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Hex renders d's packed bytes as lower-case hex.
func (d Dense) Hex() string {
	return hex.EncodeToString(d.bits)
}

// byteAt reads packed byte i, treating bytes past the end as zero.
func (d Dense) byteAt(i int) byte {
	if i >= len(d.bits) {
		return 0
	}
	return d.bits[i]
}

// clearTail zeroes the unused high bits of the last byte so that Ones
// and Equal never see stale padding.
func (d *Dense) clearTail() {
	if d.n%8 == 0 || len(d.bits) == 0 {
		return
	}
	d.bits[len(d.bits)-1] &= byte(1<<(d.n%8)) - 1
}

func bytesFor(bits int) int {
	return (bits + 7) / 8
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
