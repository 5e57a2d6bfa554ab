package bitdex

import "fmt"

// entry is a single key/predicate registration.
type entry[T any] struct {
	key  string
	pred Predicate[T]
}

// ledger is the ordered key -> predicate mapping accumulated by a Builder.
// Entries are only ever appended.
type ledger[T any] struct {
	preds map[string]Predicate[T]
	keys  []string // registration order
}

func newLedger[T any]() *ledger[T] {
	return &ledger[T]{
		preds: make(map[string]Predicate[T]),
	}
}

// add appends all entries or none of them.
func (l *ledger[T]) add(entries []entry[T]) error {
	batch := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := l.preds[e.key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, e.key)
		}
		if _, ok := batch[e.key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, e.key)
		}
		batch[e.key] = struct{}{}
	}

	for _, e := range entries {
		l.preds[e.key] = e.pred
		l.keys = append(l.keys, e.key)
	}
	return nil
}

func (l *ledger[T]) len() int {
	return len(l.keys)
}

// predicates returns the predicates in registration order.
func (l *ledger[T]) predicates() []Predicate[T] {
	out := make([]Predicate[T], len(l.keys))
	for i, k := range l.keys {
		out[i] = l.preds[k]
	}
	return out
}
