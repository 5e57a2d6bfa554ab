package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"slices"

	"github.com/hupe1980/bitdex/bitmap"
	"golang.org/x/sync/errgroup"
)

// Source is the read side of a built index. *bitdex.Index and *Snapshot
// satisfy it.
type Source interface {
	Keys() []string
	Get(key string) (bitmap.Bitmap, bool)
	Len() int
}

type options struct {
	compression Compression
	workers     int
}

// Option configures snapshot encoding.
type Option func(*options)

// WithCompression selects the block compression. The default is CompressionLZ4.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithWorkers sets the number of goroutines encoding bitmaps. Values below 1
// are treated as 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// Snapshot is a decoded, read-only set of bitmaps.
type Snapshot struct {
	records     int
	keys        []string // sorted
	bitmaps     map[string]*bitmap.Roaring
	compression Compression
}

// Len returns the record count, which is the capacity of every bitmap.
func (s *Snapshot) Len() int {
	return s.records
}

// Keys returns all keys in lexical order.
func (s *Snapshot) Keys() []string {
	return slices.Clone(s.keys)
}

// Get returns the bitmap stored under key.
func (s *Snapshot) Get(key string) (bitmap.Bitmap, bool) {
	bm, ok := s.bitmaps[key]
	if !ok {
		return nil, false
	}
	return bm, true
}

// Compression returns the compression the snapshot was written with.
func (s *Snapshot) Compression() Compression {
	return s.compression
}

// Encode serializes src into a snapshot.
func Encode(src Source, optFns ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Write(&buf, src, optFns...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes src to w and returns the number of bytes written.
func Write(w io.Writer, src Source, optFns ...Option) (int64, error) {
	opts := options{compression: CompressionLZ4, workers: 1}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.compression.valid() {
		return 0, fmt.Errorf("snapshot: unknown compression %s", opts.compression)
	}

	keys := slices.Sorted(slices.Values(src.Keys()))
	blocks, err := encodeBlocks(src, keys, opts)
	if err != nil {
		return 0, err
	}

	cw := &checksumWriter{w: w, hash: crc32.NewIEEE()}

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], MagicNumber)
	binary.LittleEndian.PutUint16(header[4:], Version)
	header[6] = byte(opts.compression)
	binary.LittleEndian.PutUint64(header[8:], uint64(src.Len()))
	binary.LittleEndian.PutUint32(header[16:], uint32(len(keys)))
	if _, err := cw.Write(header[:]); err != nil {
		return cw.n, err
	}

	var lenBuf [4]byte
	for i, key := range keys {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(key)))
		if _, err := cw.Write(lenBuf[:]); err != nil {
			return cw.n, err
		}
		if _, err := io.WriteString(cw, key); err != nil {
			return cw.n, err
		}
		if _, err := cw.Write(blocks[i]); err != nil {
			return cw.n, err
		}
	}

	binary.LittleEndian.PutUint32(lenBuf[:], cw.hash.Sum32())
	n, err := w.Write(lenBuf[:])
	return cw.n + int64(n), err
}

// encodeBlocks serializes and compresses each key's bitmap.
func encodeBlocks(src Source, keys []string, opts options) ([][]byte, error) {
	blocks := make([][]byte, len(keys))

	g := new(errgroup.Group)
	g.SetLimit(opts.workers)

	for i, key := range keys {
		g.Go(func() error {
			bm, ok := src.Get(key)
			if !ok {
				return fmt.Errorf("snapshot: key %q listed but not found", key)
			}
			rb := bitmap.FromBitmap(bm)
			rb.RunOptimize()

			var buf bytes.Buffer
			buf.Grow(int(rb.SerializedSize()))
			if _, err := rb.WriteTo(&buf); err != nil {
				return fmt.Errorf("snapshot: encode %q: %w", key, err)
			}
			block, err := compressBlock(buf.Bytes(), opts.compression)
			if err != nil {
				return fmt.Errorf("snapshot: compress %q: %w", key, err)
			}
			blocks[i] = block
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Read reads a whole snapshot from r.
func Read(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a snapshot produced by Encode or Write.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize+crcSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupted, len(data))
	}
	if binary.LittleEndian.Uint32(data[0:]) != MagicNumber {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}

	body := data[:len(data)-crcSize]
	expected := binary.LittleEndian.Uint32(data[len(data)-crcSize:])
	if actual := crc32.ChecksumIEEE(body); actual != expected {
		return nil, &ChecksumMismatchError{Expected: expected, Actual: actual}
	}

	c := Compression(data[6])
	if !c.valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupted, data[6])
	}
	records := binary.LittleEndian.Uint64(data[8:])
	numKeys := binary.LittleEndian.Uint32(data[16:])
	if records > uint64(1)<<32 {
		return nil, fmt.Errorf("%w: record count %d exceeds 32-bit positions", ErrCorrupted, records)
	}

	rest := body[headerSize:]
	if uint64(numKeys) > uint64(len(rest)/(4+blockHeaderSize)) {
		return nil, fmt.Errorf("%w: %d keys do not fit in %d bytes", ErrCorrupted, numKeys, len(rest))
	}
	limit := maxBlockSize(records)

	s := &Snapshot{
		records:     int(records),
		keys:        make([]string, 0, numKeys),
		bitmaps:     make(map[string]*bitmap.Roaring, numKeys),
		compression: c,
	}

	for range numKeys {
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: truncated key length", ErrCorrupted)
		}
		keyLen := int(binary.LittleEndian.Uint32(rest))
		rest = rest[4:]
		if len(rest) < keyLen {
			return nil, fmt.Errorf("%w: truncated key", ErrCorrupted)
		}
		key := string(rest[:keyLen])
		rest = rest[keyLen:]

		payload, n, err := decompressBlock(rest, c, limit)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		rest = rest[n:]

		if _, dup := s.bitmaps[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrCorrupted, key)
		}
		rb := bitmap.NewRoaring(s.records)
		if _, err := rb.ReadFrom(bytes.NewReader(payload)); err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrCorrupted, key, err)
		}
		s.keys = append(s.keys, key)
		s.bitmaps[key] = rb
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupted, len(rest))
	}

	slices.Sort(s.keys)
	return s, nil
}
