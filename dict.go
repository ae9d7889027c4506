package arrowrow

import (
	"github.com/apache/arrow-go/v18/arrow/array"
)

// decodeDictionary resolves a dictionary-encoded column into a
// non-optional destination. The dictionary's values array is fully
// decoded through the engine first (dictionaries may nest under lists
// and structs, but not under another dictionary), then each row's
// normalized key is resolved against it. Decoded values may be copied
// into many rows.
func decodeDictionary[T any](elem Decoder[T], target string, src *array.Dictionary, dst Target[T]) (int, error) {
	if src.NullN() != 0 {
		return 0, &UnexpectedNullError{Target: target}
	}
	values, err := FromArray(elem, src.Dictionary())
	if err != nil {
		return 0, err
	}
	n := min(src.Len(), dst.Len())
	for i := 0; i < n; i++ {
		key := src.GetValueIndex(i)
		if key < 0 || key >= len(values) {
			return 0, &DictionaryOverflowError{Key: key, Len: len(values), Type: src.DataType()}
		}
		*dst.At(i) = values[key]
	}
	return n, nil
}

// decodeDictionaryOptional is the nullable form: a null key row yields
// nil without a lookup. The values array itself is decoded as
// non-optional; dictionaries do not store null values, they mark the
// key null instead.
func decodeDictionaryOptional[T any](elem Decoder[T], src *array.Dictionary, dst Target[*T]) (int, error) {
	values, err := FromArray(elem, src.Dictionary())
	if err != nil {
		return 0, err
	}
	n := min(src.Len(), dst.Len())
	for i := 0; i < n; i++ {
		if src.IsNull(i) {
			*dst.At(i) = nil
			continue
		}
		key := src.GetValueIndex(i)
		if key < 0 || key >= len(values) {
			return 0, &DictionaryOverflowError{Key: key, Len: len(values), Type: src.DataType()}
		}
		v := values[key]
		*dst.At(i) = &v
	}
	return n, nil
}
