// Package bitmap defines the bit vector capability used by bitdex indexes.
//
// A Bitmap is a fixed-capacity sequence of bits addressed by record position.
// Two implementations are provided:
//
//   - Dense: packed []uint64 words. The default; one bit per record regardless
//     of density.
//   - Roaring: compressed Roaring Bitmap. Better for very sparse or very
//     clustered predicates and the representation used by snapshots.
//
// Any type satisfying Bitmap can be plugged into a builder through a Factory.
package bitmap
