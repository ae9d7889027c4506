package arrowrow

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Decoder decodes one column into values of type T.
//
// Check validates the column's physical layout against T before any
// value is copied; it is side-effect free and can run independently of
// decode. Decode and DecodeOptional make at most one pass over the
// column, write at most min(column rows, dst.Len()) entries, and return
// the count written. Slots past that count keep whatever value the
// caller put there. Any error means the caller must discard the whole
// destination: some slots may already have been written.
//
// Optionality is selected by the shape of the destination, as two
// explicit operations rather than one overloaded one: Decode fills
// non-pointer slots and fails with [UnexpectedNullError] if the column
// carries any null; DecodeOptional fills pointer slots, storing nil for
// absent rows.
type Decoder[T any] interface {
	Check(dt arrow.DataType) error
	Decode(src arrow.Array, dst Target[T]) (int, error)
	DecodeOptional(src arrow.Array, dst Target[*T]) (int, error)
}

type optionalDecoder[T any] struct {
	inner Decoder[T]
}

// Optional adapts a decoder to a nullable destination: absent rows
// decode to nil instead of failing.
func Optional[T any](d Decoder[T]) Decoder[*T] {
	return optionalDecoder[T]{inner: d}
}

func (d optionalDecoder[T]) Check(dt arrow.DataType) error {
	return d.inner.Check(dt)
}

func (d optionalDecoder[T]) Decode(src arrow.Array, dst Target[*T]) (int, error) {
	return d.inner.DecodeOptional(src, dst)
}

func (d optionalDecoder[T]) DecodeOptional(arrow.Array, Target[**T]) (int, error) {
	panic("arrowrow: nested optional decoders are not supported")
}

// FromArray allocates a destination sized to the array and decodes into
// it. Callers decoding many batches should reuse a buffer through
// [Decoder.Decode] or [Rows] instead.
func FromArray[T any](d Decoder[T], arr arrow.Array) ([]T, error) {
	rows := make([]T, arr.Len())
	n, err := d.Decode(arr, Slice(rows))
	if err != nil {
		return nil, err
	}
	return rows[:n], nil
}

// FromRecord decodes a record batch into one value per row.
func FromRecord[T any](d Decoder[T], rec arrow.Record) ([]T, error) {
	sa := array.RecordToStructArray(rec)
	defer sa.Release()
	return FromArray(d, sa)
}

// CheckSchema validates a record batch schema against a record decoder.
// Run it before decoding to get a complete diagnostic early, instead of
// cast errors or values decoded into the wrong fields (e.g. when a file
// has two columns swapped).
func CheckSchema[T any](d Decoder[T], schema *arrow.Schema) error {
	return d.Check(arrow.StructOf(schema.Fields()...))
}
