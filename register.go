package bitdex

import (
	"fmt"
	"slices"
)

// IndexFor registers an equality predicate for the value f has on example.
//
// The key is "<path>.<value>", e.g. "Status.Active", and the predicate
// matches every record whose field equals that value. For a Nested field an
// example with a nil intermediate fails with ErrNullIntermediate.
func IndexFor[T any, V comparable](b *Builder[T], example T, f Field[T, V]) error {
	return b.register(f.Name(), func() ([]entry[T], error) {
		path, err := f.Path()
		if err != nil {
			return nil, err
		}
		var nilAt string
		v, err := evaluate(path, func() V {
			v, p := f.lookup(example)
			nilAt = p
			return v
		})
		if err != nil {
			return nil, err
		}
		if nilAt != "" {
			return nil, fmt.Errorf("%w: %s", ErrNullIntermediate, nilAt)
		}
		return []entry[T]{{
			key: formatKey(v, path),
			pred: func(rec T) bool {
				got, p := f.lookup(rec)
				return p == "" && got == v
			},
		}}, nil
	})
}

// IndexForNested registers an equality predicate on a field of a nested value.
//
// The key is "<outerPath>.<innerPath>.<value>". If outer yields nil on
// example the call fails with ErrNullIntermediate. Records whose intermediate
// value is nil never match.
func IndexForNested[T, M any, V comparable](b *Builder[T], example T, outer Field[T, M], inner Field[M, V]) error {
	return b.register(outer.Name()+"."+inner.Name(), func() ([]entry[T], error) {
		outerPath, err := outer.Path()
		if err != nil {
			return nil, err
		}
		innerPath, err := inner.Path()
		if err != nil {
			return nil, err
		}

		f := Nested(outer, inner)
		var nilAt string
		v, err := evaluate(outerPath+"."+innerPath, func() V {
			v, p := f.lookup(example)
			nilAt = p
			return v
		})
		if err != nil {
			return nil, err
		}
		if nilAt != "" {
			return nil, fmt.Errorf("%w: %s", ErrNullIntermediate, nilAt)
		}

		return []entry[T]{{
			key: formatKey(v, outerPath, innerPath),
			pred: func(rec T) bool {
				got, p := f.lookup(rec)
				return p == "" && got == v
			},
		}}, nil
	})
}

// IndexForEach registers one membership predicate per distinct element of
// the collection f has on example. Keys are "<path>.<element>".
//
// Only values present in example are indexed; values that appear elsewhere in
// the dataset get no key. Register further examples to cover them.
func IndexForEach[T any, E comparable](b *Builder[T], example T, f Field[T, []E]) error {
	return indexMembership(b, example, f, func(s []E) []E { return s })
}

// IndexForEachSelect is like IndexForEach but projects the collection
// through sel first, e.g. to index the names of a slice of structs.
func IndexForEachSelect[T, E any, S comparable](b *Builder[T], example T, f Field[T, []E], sel func([]E) []S) error {
	if sel == nil {
		return b.register(f.Name(), func() ([]entry[T], error) {
			return nil, fmt.Errorf("%w: nil selector for %q", ErrInvalidPredicate, f.Name())
		})
	}
	return indexMembership(b, example, f, sel)
}

func indexMembership[T, E any, S comparable](b *Builder[T], example T, f Field[T, []E], project func([]E) []S) error {
	return b.register(f.Name(), func() ([]entry[T], error) {
		path, err := f.Path()
		if err != nil {
			return nil, err
		}
		var nilAt string
		values, err := evaluate(path, func() []S {
			s, p := f.lookup(example)
			nilAt = p
			if p != "" {
				return nil
			}
			return project(s)
		})
		if err != nil {
			return nil, err
		}
		if nilAt != "" {
			return nil, fmt.Errorf("%w: %s", ErrNullIntermediate, nilAt)
		}

		seen := make(map[S]struct{}, len(values))
		entries := make([]entry[T], 0, len(values))
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			entries = append(entries, entry[T]{
				key:  formatKey(v, path),
				pred: func(rec T) bool {
					s, p := f.lookup(rec)
					return p == "" && slices.Contains(project(s), v)
				},
			})
		}
		return entries, nil
	})
}

// evaluate runs fn, turning a panic into ErrEvaluation.
func evaluate[R any](path string, fn func() R) (v R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrEvaluation, path, r)
		}
	}()
	return fn(), nil
}
