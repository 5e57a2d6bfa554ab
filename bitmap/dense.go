package bitmap

import "math/bits"

// Dense is a packed word bitmap.
// It is not safe for concurrent writers.
type Dense struct {
	words []uint64
	size  int
}

// NewDense creates a Dense bitmap holding capacity bits, all clear.
func NewDense(capacity int) *Dense {
	if capacity < 0 {
		capacity = 0
	}
	return &Dense{
		words: make([]uint64, (capacity+63)/64),
		size:  capacity,
	}
}

// Len returns the capacity in bits.
func (d *Dense) Len() int {
	return d.size
}

// Set sets or clears bit i.
func (d *Dense) Set(i int, v bool) {
	if i < 0 || i >= d.size {
		return
	}
	mask := uint64(1) << (uint(i) & 63)
	if v {
		d.words[i>>6] |= mask
	} else {
		d.words[i>>6] &^= mask
	}
}

// Get reports whether bit i is set.
func (d *Dense) Get(i int) bool {
	if i < 0 || i >= d.size {
		return false
	}
	return d.words[i>>6]&(uint64(1)<<(uint(i)&63)) != 0
}

// Count returns the number of set bits.
func (d *Dense) Count() int {
	count := 0
	for _, w := range d.words {
		if w != 0 {
			count += bits.OnesCount64(w)
		}
	}
	return count
}

// ForEach iterates set bits in ascending order.
func (d *Dense) ForEach(fn func(i int) bool) {
	for i := d.NextSetBit(0); i >= 0; i = d.NextSetBit(i + 1) {
		if !fn(i) {
			return
		}
	}
}

// NextSetBit returns the position of the next set bit at or after i, or -1.
func (d *Dense) NextSetBit(i int) int {
	if i < 0 {
		i = 0
	}
	if i >= d.size {
		return -1
	}

	wi := i >> 6
	// Mask out bits before i in the first word.
	w := d.words[wi] &^ ((uint64(1) << (uint(i) & 63)) - 1)
	for {
		if w != 0 {
			return wi<<6 + bits.TrailingZeros64(w)
		}
		wi++
		if wi >= len(d.words) {
			return -1
		}
		w = d.words[wi]
	}
}
