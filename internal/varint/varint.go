// Package varint implements a packed, auto-widening integer array and a
// fixed-width record array, the two growable containers the rest of
// pkgreaper builds its graph structures out of.
//
// A dependency graph for a few thousand packages is made up of tens of
// thousands of small integers (pids, dep-ids, string offsets), and
// storing every one of them in a full 32-bit word wastes three-quarters
// of the memory most of the time.
package varint

import "encoding/binary"

// Array is an ordered, growable sequence of unsigned 32-bit integers backed
// by a byte slice whose element width starts at zero and widens to 1, 2, or
// 4 bytes the first time a stored value needs it. Widening rewrites every
// existing element in place.
type Array struct {
	data  []byte
	width int // 0, 1, 2, or 4
	n     int
}

// widthFor returns the narrowest byte width that can hold v.
func widthFor(v uint32) int {
	switch {
	case v <= 0xff:
		return 1
	case v <= 0xffff:
		return 2
	default:
		return 4
	}
}

// Len reports the number of elements currently stored.
func (a *Array) Len() int { return a.n }

// Get returns the value at index i. It panics if i is out of range.
func (a *Array) Get(i int) uint32 {
	if i < 0 || i >= a.n {
		panic("varint: index out of range")
	}
	switch a.width {
	case 0:
		return 0
	case 1:
		return uint32(a.data[i])
	case 2:
		return uint32(binary.LittleEndian.Uint16(a.data[i*2:]))
	default:
		return binary.LittleEndian.Uint32(a.data[i*4:])
	}
}

// Set stores v at index i, extending the array (zero-filling any gap) if i
// is beyond the current length, and widening storage if v does not fit the
// current width.
func (a *Array) Set(i int, v uint32) {
	if i < 0 {
		panic("varint: negative index")
	}
	if need := widthFor(v); need > a.width {
		a.widen(need)
	}
	if i >= a.n {
		a.SetLen(i + 1)
	}
	a.store(i, v)
}

func (a *Array) store(i int, v uint32) {
	switch a.width {
	case 1:
		a.data[i] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(a.data[i*2:], uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(a.data[i*4:], v)
	}
}

// widen rewrites the backing array at a larger element width, preserving
// every element currently in [0, n).
func (a *Array) widen(newWidth int) {
	old := a.data
	oldWidth := a.width
	a.width = newWidth
	a.data = make([]byte, a.n*newWidth)
	if oldWidth == 0 {
		return
	}
	for i := 0; i < a.n; i++ {
		var v uint32
		switch oldWidth {
		case 1:
			v = uint32(old[i])
		case 2:
			v = uint32(binary.LittleEndian.Uint16(old[i*2:]))
		case 4:
			v = binary.LittleEndian.Uint32(old[i*4:])
		}
		a.store(i, v)
	}
}

// SetLen changes the logical length to n, zero-filling newly exposed
// elements when growing and zeroing the truncated tail when shrinking.
func (a *Array) SetLen(n int) {
	if n < 0 {
		panic("varint: negative length")
	}
	if n > a.n {
		need := n * a.width
		if need > len(a.data) {
			grown := make([]byte, need)
			copy(grown, a.data)
			a.data = grown
		}
	} else if n < a.n {
		for i := range a.data[n*a.width : a.n*a.width] {
			a.data[n*a.width+i] = 0
		}
	}
	a.n = n
}

// Inc adds d, which may be negative, to the element at i. It panics if the
// result would drop below zero.
func (a *Array) Inc(i int, d int32) {
	cur := int64(a.Get(i)) + int64(d)
	if cur < 0 {
		panic("varint: Inc underflowed")
	}
	a.Set(i, uint32(cur))
}

// Move copies n elements starting at src to dst, within the same array,
// correctly handling overlap (like memmove).
func (a *Array) Move(dst, src, n int) {
	if n == 0 {
		return
	}
	if dst == src {
		return
	}
	if a.width == 0 {
		return
	}
	w := a.width
	copy(a.data[dst*w:(dst+n)*w], a.data[src*w:(src+n)*w])
}

// Zero sets n elements starting at start back to zero without changing the
// logical length.
func (a *Array) Zero(start, n int) {
	if a.width == 0 || n == 0 {
		return
	}
	w := a.width
	for i := range a.data[start*w : (start+n)*w] {
		a.data[start*w+i] = 0
	}
}

// Clone returns an independent deep copy.
func (a *Array) Clone() *Array {
	c := &Array{width: a.width, n: a.n}
	c.data = make([]byte, len(a.data))
	copy(c.data, a.data)
	return c
}

// Bsearch returns the lower-bound position of v within the n elements
// starting at start: the first index i in [start, start+n) with
// Get(i) >= v, or start+n if none qualifies. The range must already be
// sorted ascending.
func (a *Array) Bsearch(start, n int, v uint32) int {
	lo, hi := start, start+n
	for lo < hi {
		mid := lo + (hi-lo)/2
		if a.Get(mid) < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// RecordArray is a growable array of opaque fixed-width byte records, used
// for the package table where each entry is a struct of scalar fields
// packed into a constant number of bytes.
type RecordArray struct {
	data  []byte
	width int
	n     int
}

// NewRecordArray creates a RecordArray whose every record is width bytes.
func NewRecordArray(width int) *RecordArray {
	if width <= 0 {
		panic("varint: record width must be positive")
	}
	return &RecordArray{width: width}
}

// Len reports the number of records stored.
func (a *RecordArray) Len() int { return a.n }

// Width reports the fixed record size in bytes.
func (a *RecordArray) Width() int { return a.width }

// Get returns a mutable view of record i. Writes through the returned slice
// are visible to subsequent Get calls.
func (a *RecordArray) Get(i int) []byte {
	if i < 0 || i >= a.n {
		panic("varint: index out of range")
	}
	return a.data[i*a.width : (i+1)*a.width]
}

// Set overwrites record i with rec, which must be exactly Width() bytes.
// The array grows (zero-filling any gap) if i is beyond the current length.
func (a *RecordArray) Set(i int, rec []byte) {
	if len(rec) != a.width {
		panic("varint: record size mismatch")
	}
	if i < 0 {
		panic("varint: negative index")
	}
	if i >= a.n {
		a.SetLen(i + 1)
	}
	copy(a.data[i*a.width:(i+1)*a.width], rec)
}

// SetLen changes the logical length, zero-filling or truncating as needed.
func (a *RecordArray) SetLen(n int) {
	if n < 0 {
		panic("varint: negative length")
	}
	if n > a.n {
		need := n * a.width
		if need > len(a.data) {
			grown := make([]byte, need)
			copy(grown, a.data)
			a.data = grown
		}
	} else if n < a.n {
		for i := range a.data[n*a.width : a.n*a.width] {
			a.data[n*a.width+i] = 0
		}
	}
	a.n = n
}
