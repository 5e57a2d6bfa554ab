package bitdex

import (
	"iter"
	"slices"

	"github.com/hupe1980/bitdex/bitmap"
)

// Index is the immutable result of Builder.Build: one bitmap per key, where
// bit i reflects the key's predicate on the i-th record of the dataset
// snapshot taken at Build time.
//
// An Index is safe for concurrent readers. Callers must not mutate the
// bitmaps returned by Get.
type Index[T any] struct {
	keys    []string // sorted
	bitmaps map[string]bitmap.Bitmap
	data    []T
	stats   BuildStats
}

func newIndex[T any](keys []string, bitmaps []bitmap.Bitmap, data []T, workers int) *Index[T] {
	ix := &Index[T]{
		keys:    slices.Sorted(slices.Values(keys)),
		bitmaps: make(map[string]bitmap.Bitmap, len(keys)),
		data:    data,
	}
	setBits := 0
	for i, k := range keys {
		ix.bitmaps[k] = bitmaps[i]
		setBits += bitmaps[i].Count()
	}
	ix.stats = BuildStats{
		Keys:    len(keys),
		Records: len(data),
		Workers: workers,
		SetBits: setBits,
	}
	return ix
}

// Get returns the bitmap stored under key.
func (ix *Index[T]) Get(key string) (bitmap.Bitmap, bool) {
	bm, ok := ix.bitmaps[key]
	return bm, ok
}

// Keys returns all keys in lexical order.
func (ix *Index[T]) Keys() []string {
	return slices.Clone(ix.keys)
}

// Len returns the number of records, which is also the capacity of every bitmap.
func (ix *Index[T]) Len() int {
	return len(ix.data)
}

// Record returns the record at bit position pos.
func (ix *Index[T]) Record(pos int) (T, bool) {
	if pos < 0 || pos >= len(ix.data) {
		var zero T
		return zero, false
	}
	return ix.data[pos], true
}

// Count returns the number of records matching key, or 0 for an unknown key.
func (ix *Index[T]) Count(key string) int {
	bm, ok := ix.bitmaps[key]
	if !ok {
		return 0
	}
	return bm.Count()
}

// Matches iterates the positions and records whose bit is set under key.
// An unknown key yields nothing. Positions outside the dataset are skipped.
func (ix *Index[T]) Matches(key string) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		bm, ok := ix.bitmaps[key]
		if !ok {
			return
		}
		bm.ForEach(func(i int) bool {
			if i < 0 || i >= len(ix.data) {
				return true
			}
			return yield(i, ix.data[i])
		})
	}
}

// Stats returns statistics about the Build that produced the index.
func (ix *Index[T]) Stats() BuildStats {
	return ix.stats
}
