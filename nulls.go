package arrowrow

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// valueArray is the typed access surface shared by arrow's concrete
// array types: *array.Int64 yields int64, *array.String yields string,
// and so on.
type valueArray[E any] interface {
	arrow.Array
	Value(i int) E
}

// decodeNotNull zips a column's native values into the destination
// through conv. The column must not carry nulls: each destination slot
// consumes exactly one source value.
func decodeNotNull[T, E any](src valueArray[E], conv func(E) (T, error), target string, dst Target[T]) (int, error) {
	if src.NullN() != 0 {
		return 0, &UnexpectedNullError{Target: target}
	}
	n := min(src.Len(), dst.Len())
	for i := 0; i < n; i++ {
		v, err := conv(src.Value(i))
		if err != nil {
			return 0, err
		}
		*dst.At(i) = v
	}
	return n, nil
}

// decodeNullable threads the column's validity bitmap through the same
// zip: a present row consumes one source value, an absent row stores
// nil without consuming one.
func decodeNullable[T, E any](src valueArray[E], conv func(E) (T, error), dst Target[*T]) (int, error) {
	n := min(src.Len(), dst.Len())
	for i := 0; i < n; i++ {
		if src.IsNull(i) {
			*dst.At(i) = nil
			continue
		}
		v, err := conv(src.Value(i))
		if err != nil {
			return 0, err
		}
		*dst.At(i) = &v
	}
	return n, nil
}

func ident[E any](v E) (E, error) { return v, nil }

// checkDataType accepts a column whose physical type is one of the
// given encodings, directly or behind one level of dictionary encoding.
// Dictionaries do not nest.
func checkDataType(dt arrow.DataType, accepted []arrow.DataType, target string) error {
	dt = unwrapDictionary(dt)
	for _, want := range accepted {
		if arrow.TypeEqual(dt, want) {
			return nil
		}
	}
	return &TypeMismatchError{Target: target, Expected: accepted, Actual: dt}
}

func unwrapDictionary(dt arrow.DataType) arrow.DataType {
	if d, ok := dt.(*arrow.DictionaryType); ok {
		return d.ValueType
	}
	return dt
}
