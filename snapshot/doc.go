// Package snapshot persists the bitmaps of a built index.
//
// A snapshot stores, for every key, the Roaring encoding of its bitmap plus
// the record count that gives the bitmaps their capacity. Records themselves
// are not stored; positions refer to the dataset order used at build time.
//
// # Format
//
// All integers are little endian.
//
//	header   magic "BDX1" | version u16 | compression u8 | reserved u8 | records u64 | keys u32
//	per key  key length u32 | key bytes | block
//	block    uncompressed size u32 | compressed size u32 (0 = raw) | payload
//	trailer  CRC32 (IEEE) of everything above
//
// Snapshots can be written to any io.Writer or published to a
// blobstore.Store with Save, which also moves the CURRENT pointer.
package snapshot
