package bitdex

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Field describes a member-access path over records of type T yielding a V.
//
// A Field pairs the textual path used in index keys with the accessor that
// reads the value, e.g.
//
//	city := bitdex.NewField("Address.City", func(c Customer) string { return c.Address.City })
type Field[T, V any] struct {
	name string
	get  func(T) V
	// resolve is set on nested fields. It returns the value and the path of
	// the first nil intermediate, which is empty when the chain is complete.
	resolve func(T) (V, string)
}

// NewField creates a Field. The name must be a dot-separated chain of
// identifiers; it is validated when the field is registered.
func NewField[T, V any](name string, get func(T) V) Field[T, V] {
	return Field[T, V]{name: name, get: get}
}

// Nested joins two fields into one path ("outer.inner").
// A nil intermediate value yields the zero value of V without calling inner.
// Registration rejects an example with a nil intermediate and records with one
// never match.
func Nested[T, M, V any](outer Field[T, M], inner Field[M, V]) Field[T, V] {
	name := outer.name + "." + inner.name
	if outer.get == nil || inner.get == nil {
		return Field[T, V]{name: name}
	}
	resolve := func(rec T) (V, string) {
		var zero V
		m, nilAt := outer.lookup(rec)
		if nilAt != "" {
			return zero, nilAt
		}
		if isNil(m) {
			return zero, outer.name
		}
		v, nilAt := inner.lookup(m)
		if nilAt != "" {
			return zero, outer.name + "." + nilAt
		}
		return v, ""
	}
	return Field[T, V]{
		name: name,
		get: func(rec T) V {
			v, _ := resolve(rec)
			return v
		},
		resolve: resolve,
	}
}

// lookup reads the field and reports the path of a nil intermediate, if any.
func (f Field[T, V]) lookup(rec T) (V, string) {
	if f.resolve != nil {
		return f.resolve(rec)
	}
	return f.get(rec), ""
}

// Name returns the raw field name without validation.
func (f Field[T, V]) Name() string {
	return f.name
}

// Get reads the field from rec.
func (f Field[T, V]) Get(rec T) V {
	return f.get(rec)
}

// Path returns the validated member-access path of the field.
func (f Field[T, V]) Path() (string, error) {
	if f.get == nil {
		return "", fmt.Errorf("%w: field %q has no accessor", ErrUnsupportedExpression, f.name)
	}
	if err := validatePath(f.name); err != nil {
		return "", err
	}
	return f.name, nil
}

// validatePath accepts only simple member-access chains such as "Address.City".
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrUnsupportedExpression)
	}
	for _, seg := range strings.Split(path, ".") {
		if !isIdentifier(seg) {
			return fmt.Errorf("%w: %q is not a member access", ErrUnsupportedExpression, path)
		}
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// isNil reports whether v is nil or a nil pointer, map, slice, interface, func or chan.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// formatKey joins path segments and the stringified value into an index key.
func formatKey(value any, path ...string) string {
	return strings.Join(path, ".") + "." + fmt.Sprint(value)
}
