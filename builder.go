package bitdex

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/hupe1980/bitdex/bitmap"
	"golang.org/x/sync/errgroup"
)

// Predicate is a pure boolean function over one record.
type Predicate[T any] func(rec T) bool

type builderState uint8

const (
	stateEmpty builderState = iota
	stateAccumulating
	stateFinalized
)

// ctxCheckInterval is the number of records evaluated between context checks.
const ctxCheckInterval = 1024

// Builder accumulates named predicates over records of type T and
// materializes them into an Index.
//
// A Builder is not safe for concurrent use. After a successful Build every
// further call returns ErrFinalized.
//
// Example:
//
//	b := bitdex.NewBuilder[Order]()
//	_ = bitdex.IndexFor(b, orders[0], status) // key "Status.Active"
//	_ = b.ForData(orders)
//	ix, err := b.Build(ctx)
type Builder[T any] struct {
	opts   options
	ledger *ledger[T]
	state  builderState

	data    []T
	source  iter.Seq2[T, error]
	hasData bool
}

// NewBuilder creates an empty Builder.
func NewBuilder[T any](optFns ...Option) *Builder[T] {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder[T]{
		opts:   opts,
		ledger: newLedger[T](),
	}
}

// Register stores an explicit key/predicate pair.
func (b *Builder[T]) Register(key string, p Predicate[T]) error {
	return b.register(key, func() ([]entry[T], error) {
		if key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidPredicate)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: nil predicate for %q", ErrInvalidPredicate, key)
		}
		return []entry[T]{{key: key, pred: p}}, nil
	})
}

// ForData sets the dataset. The slice is copied at Build time, so later
// changes to it do not affect a built Index. A nil slice is an empty dataset.
// Later calls replace earlier ones.
func (b *Builder[T]) ForData(data []T) error {
	if b.state == stateFinalized {
		return ErrFinalized
	}
	b.data = data
	b.source = nil
	b.hasData = true
	return nil
}

// ForSource sets a fallible dataset source. It is drained once by Build;
// the first error aborts the build with ErrDatasetRead.
func (b *Builder[T]) ForSource(src iter.Seq2[T, error]) error {
	if b.state == stateFinalized {
		return ErrFinalized
	}
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrDatasetNotSet)
	}
	b.data = nil
	b.source = src
	b.hasData = true
	return nil
}

// WithBitmap sets the bitmap factory used by Build.
// If nil is passed, bitmap.DenseFactory is used.
func (b *Builder[T]) WithBitmap(f bitmap.Factory) error {
	if b.state == stateFinalized {
		return ErrFinalized
	}
	WithBitmapFactory(f)(&b.opts)
	return nil
}

// Keys returns the registered keys in registration order.
func (b *Builder[T]) Keys() []string {
	return slices.Clone(b.ledger.keys)
}

// Len returns the number of registered keys.
func (b *Builder[T]) Len() int {
	return b.ledger.len()
}

// String returns the registered keys, one per line.
func (b *Builder[T]) String() string {
	return strings.Join(b.ledger.keys, "\n")
}

// Build evaluates every registered predicate against every record and
// returns the resulting Index.
//
// Cost is O(keys x records). On failure no Index is returned and the builder
// keeps its state, so the caller can fix the input and retry.
func (b *Builder[T]) Build(ctx context.Context) (*Index[T], error) {
	start := time.Now()
	ix, err := b.build(ctx)
	d := time.Since(start)

	records := 0
	if ix != nil {
		records = ix.Len()
		ix.stats.Duration = d
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		b.opts.logger.WithKey(evalErr.Key).ErrorContext(ctx, "predicate panicked", "panic", evalErr.Panic)
	}
	b.opts.metrics.RecordBuild(b.ledger.len(), records, d, err)
	b.opts.logger.LogBuild(ctx, b.ledger.len(), records, b.opts.workers, d, err)

	return ix, err
}

func (b *Builder[T]) build(ctx context.Context) (*Index[T], error) {
	if b.state == stateFinalized {
		return nil, ErrFinalized
	}
	if !b.hasData {
		return nil, ErrDatasetNotSet
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := b.snapshot()
	if err != nil {
		return nil, err
	}

	keys := slices.Clone(b.ledger.keys)
	preds := b.ledger.predicates()

	bitmaps := make([]bitmap.Bitmap, len(keys))
	for i, key := range keys {
		bm := b.opts.factory(len(data))
		if bm == nil || bm.Len() != len(data) {
			return nil, fmt.Errorf("%w: key %q: want %d bits", ErrBitmapCapacity, key, len(data))
		}
		bitmaps[i] = bm
	}

	b.opts.logger.DebugContext(ctx, "build started",
		"keys", len(keys),
		"records", len(data),
		"workers", b.opts.workers,
	)

	if b.opts.workers > 1 && len(keys) > 1 {
		err = materializeByKey(ctx, data, keys, preds, bitmaps, b.opts.workers)
	} else {
		err = materializeByRecord(ctx, data, keys, preds, bitmaps)
	}
	if err != nil {
		return nil, err
	}

	b.state = stateFinalized
	return newIndex(keys, bitmaps, data, b.opts.workers), nil
}

// snapshot returns a private copy of the dataset.
func (b *Builder[T]) snapshot() ([]T, error) {
	if b.source == nil {
		return slices.Clone(b.data), nil
	}

	var data []T
	for rec, err := range b.source {
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrDatasetRead, len(data), err)
		}
		data = append(data, rec)
	}
	return data, nil
}

// register derives entries and appends them to the ledger atomically.
func (b *Builder[T]) register(name string, derive func() ([]entry[T], error)) error {
	ctx := context.Background()
	if b.state == stateFinalized {
		b.opts.metrics.RecordRegister(0, ErrFinalized)
		b.opts.logger.LogRegister(ctx, name, 0, ErrFinalized)
		return ErrFinalized
	}

	entries, err := derive()
	if err == nil {
		err = b.ledger.add(entries)
	}
	b.opts.metrics.RecordRegister(len(entries), err)
	b.opts.logger.LogRegister(ctx, name, len(entries), err)
	if err != nil {
		return err
	}

	if b.state == stateEmpty && b.ledger.len() > 0 {
		b.state = stateAccumulating
	}
	return nil
}

// materializeByRecord makes one pass over the dataset and evaluates every
// predicate per record.
func materializeByRecord[T any](ctx context.Context, data []T, keys []string, preds []Predicate[T], bitmaps []bitmap.Bitmap) (err error) {
	current := -1
	defer func() {
		if r := recover(); r != nil {
			err = &EvaluationError{Key: keys[current], Panic: r}
		}
	}()

	for i, rec := range data {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j, p := range preds {
			current = j
			if p(rec) {
				bitmaps[j].Set(i, true)
			}
		}
	}
	return nil
}

// materializeByKey partitions the keys across workers. Each bitmap is written
// by exactly one goroutine.
func materializeByKey[T any](ctx context.Context, data []T, keys []string, preds []Predicate[T], bitmaps []bitmap.Bitmap, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for j := range keys {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &EvaluationError{Key: keys[j], Panic: r}
				}
			}()

			p, bm := preds[j], bitmaps[j]
			for i, rec := range data {
				if i%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if p(rec) {
					bm.Set(i, true)
				}
			}
			return nil
		})
	}

	return g.Wait()
}
