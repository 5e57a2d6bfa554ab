package bitmap

import (
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

// Roaring implements Bitmap on top of a 32-bit Roaring Bitmap.
// It wraps the official roaring implementation; capacity is tracked
// separately because roaring bitmaps are unbounded.
type Roaring struct {
	rb   *roaring.Bitmap
	size int
}

// NewRoaring creates an empty Roaring bitmap with the given capacity.
func NewRoaring(capacity int) *Roaring {
	if capacity < 0 {
		capacity = 0
	}
	return &Roaring{
		rb:   roaring.New(),
		size: capacity,
	}
}

// FromBitmap converts any Bitmap into a Roaring bitmap.
// A Roaring input is cloned.
func FromBitmap(b Bitmap) *Roaring {
	if r, ok := b.(*Roaring); ok {
		return r.Clone()
	}
	r := NewRoaring(b.Len())
	b.ForEach(func(i int) bool {
		r.rb.Add(uint32(i))
		return true
	})
	return r
}

// Len returns the capacity in bits.
func (r *Roaring) Len() int {
	return r.size
}

// Set sets or clears bit i.
func (r *Roaring) Set(i int, v bool) {
	if i < 0 || i >= r.size {
		return
	}
	if v {
		r.rb.Add(uint32(i))
	} else {
		r.rb.Remove(uint32(i))
	}
}

// Get reports whether bit i is set.
func (r *Roaring) Get(i int) bool {
	if i < 0 || i >= r.size {
		return false
	}
	return r.rb.Contains(uint32(i))
}

// Count returns the number of set bits.
func (r *Roaring) Count() int {
	return int(r.rb.GetCardinality())
}

// ForEach iterates set bits in ascending order.
func (r *Roaring) ForEach(fn func(i int) bool) {
	it := r.rb.Iterator()
	for it.HasNext() {
		if !fn(int(it.Next())) {
			break
		}
	}
}

// Clone returns a deep copy of the bitmap.
func (r *Roaring) Clone() *Roaring {
	return &Roaring{
		rb:   r.rb.Clone(),
		size: r.size,
	}
}

// RunOptimize converts containers to run-length encoding where smaller.
func (r *Roaring) RunOptimize() {
	r.rb.RunOptimize()
}

// SerializedSize returns the number of bytes WriteTo produces.
func (r *Roaring) SerializedSize() uint64 {
	return r.rb.GetSerializedSizeInBytes()
}

// WriteTo writes the bitmap in the portable roaring format.
// Capacity is not part of the encoding.
func (r *Roaring) WriteTo(w io.Writer) (int64, error) {
	return r.rb.WriteTo(w)
}

// ReadFrom replaces the bitmap contents with a portable roaring encoding.
// Bits at or above Len are dropped.
func (r *Roaring) ReadFrom(rd io.Reader) (int64, error) {
	n, err := r.rb.ReadFrom(rd)
	if err != nil {
		return n, err
	}
	if r.rb.IsEmpty() {
		return n, nil
	}
	if hi := r.rb.Maximum(); int(hi) >= r.size {
		r.rb.RemoveRange(uint64(r.size), uint64(hi)+1)
	}
	return n, nil
}
