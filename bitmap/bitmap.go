package bitmap

// Bitmap is a fixed-capacity bit vector addressed by record position.
//
// Set on an index outside [0, Len()) is ignored and Get returns false.
// Implementations are not required to be safe for concurrent writers.
type Bitmap interface {
	// Len returns the capacity in bits.
	Len() int
	// Set sets or clears the bit at position i.
	Set(i int, v bool)
	// Get reports whether the bit at position i is set.
	Get(i int) bool
	// Count returns the number of set bits.
	Count() int
	// ForEach calls fn for every set bit in ascending order until fn returns false.
	ForEach(fn func(i int) bool)
}

// Factory creates an empty Bitmap with the given capacity.
type Factory func(capacity int) Bitmap

// DenseFactory creates Dense bitmaps. It is the default factory.
func DenseFactory(capacity int) Bitmap {
	return NewDense(capacity)
}

// RoaringFactory creates Roaring bitmaps.
func RoaringFactory(capacity int) Bitmap {
	return NewRoaring(capacity)
}

// Equal reports whether a and b have the same capacity and the same set bits.
func Equal(a, b Bitmap) bool {
	if a.Len() != b.Len() || a.Count() != b.Count() {
		return false
	}
	eq := true
	a.ForEach(func(i int) bool {
		if !b.Get(i) {
			eq = false
		}
		return eq
	})
	return eq
}

// ToSlice returns the positions of all set bits in ascending order.
func ToSlice(b Bitmap) []int {
	out := make([]int, 0, b.Count())
	b.ForEach(func(i int) bool {
		out = append(out, i)
		return true
	})
	return out
}
