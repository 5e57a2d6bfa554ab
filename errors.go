package bitdex

import (
	"errors"
	"fmt"
)

// Registration errors
var (
	// ErrDuplicateKey is returned when a key is already registered on the builder.
	ErrDuplicateKey = errors.New("bitdex: duplicate key")
	// ErrUnsupportedExpression is returned when a field name is not a plain
	// member-access path such as "Address.City".
	ErrUnsupportedExpression = errors.New("bitdex: unsupported field expression")
	// ErrNullIntermediate is returned when a nested field's outer accessor
	// yields nil on the example record.
	ErrNullIntermediate = errors.New("bitdex: nil intermediate value")
	// ErrEvaluation is returned when an accessor panics while evaluating the example record.
	ErrEvaluation = errors.New("bitdex: accessor evaluation failed")
	// ErrInvalidPredicate is returned for an empty key or a nil predicate.
	ErrInvalidPredicate = errors.New("bitdex: invalid predicate")
)

// Build errors
var (
	// ErrDatasetNotSet is returned by Build when no dataset was supplied.
	ErrDatasetNotSet = errors.New("bitdex: dataset is not set")
	// ErrDatasetRead wraps an error yielded by a dataset source during Build.
	ErrDatasetRead = errors.New("bitdex: dataset read failed")
	// ErrBitmapCapacity is returned when a bitmap factory ignores the requested capacity.
	ErrBitmapCapacity = errors.New("bitdex: bitmap capacity mismatch")
	// ErrFinalized is returned by every builder call after a successful Build.
	ErrFinalized = errors.New("bitdex: builder is finalized")
)

// EvaluationError reports a predicate that panicked during Build.
// It matches ErrEvaluation via errors.Is.
type EvaluationError struct {
	Key   string
	Panic any
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: key %q: %v", ErrEvaluation, e.Key, e.Panic)
}

// Is reports whether target is ErrEvaluation.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}
