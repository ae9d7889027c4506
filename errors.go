package arrowrow

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/hashicorp/go-multierror"
)

// TypeMismatchError reports that a column's physical type is
// incompatible with the decoder's destination type.
type TypeMismatchError struct {
	// Target describes the destination, e.g. "int64" or a record name.
	Target string
	// Expected lists the accepted physical encodings. Kind is set
	// instead when the accepted set is a whole type family.
	Expected []arrow.DataType
	Kind     string
	Actual   arrow.DataType
}

func (e *TypeMismatchError) Error() string {
	want := e.Kind
	if want == "" {
		names := make([]string, len(e.Expected))
		for i, dt := range e.Expected {
			names[i] = dt.String()
		}
		want = strings.Join(names, "/")
	}
	return fmt.Sprintf("%s must be decoded from Arrow %s, not Arrow %s", e.Target, want, e.Actual)
}

// SchemaError is the multi-field diagnostic produced by checking a
// record decoder against a struct column. It collects every field
// mismatch, not just the first.
type SchemaError struct {
	Record string
	Err    *multierror.Error
}

func (e *SchemaError) Error() string {
	msgs := make([]string, 0, len(e.Err.Errors))
	for _, err := range e.Err.Errors {
		msgs = append(msgs, err.Error())
	}
	body := strings.ReplaceAll(strings.Join(msgs, "\n"), "\n", "\n\t")
	return fmt.Sprintf("%s cannot be decoded:\n\t%s", e.Record, body)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// UnexpectedNullError reports a decode of a column containing nulls
// into a non-optional destination.
type UnexpectedNullError struct {
	// Target names the destination type or field.
	Target string
}

func (e *UnexpectedNullError) Error() string {
	return fmt.Sprintf("unexpected null value: %s column contains nulls", e.Target)
}

// LengthMismatchError reports a destination shorter than the source
// column's row count. It is returned before anything is written.
type LengthMismatchError struct {
	Src, Dst int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("cannot decode %d-row column into %d-slot destination", e.Src, e.Dst)
}

// SizeMismatchError reports a fixed-size binary value whose byte length
// does not match the declared width.
type SizeMismatchError struct {
	// Src is the value's byte length, Dst the declared width.
	Src, Dst int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("cannot decode FixedSizeBinary(%d) values into %d-byte destinations", e.Src, e.Dst)
}

// DictionaryOverflowError reports a dictionary key pointing past the
// end of the dictionary's values array. Keys are never wrapped or
// clamped.
type DictionaryOverflowError struct {
	Key, Len int
	Type     arrow.DataType
}

func (e *DictionaryOverflowError) Error() string {
	return fmt.Sprintf("cannot read entry %d of a %s dictionary of length %d", e.Key, e.Type, e.Len)
}

// TimestampOverflowError reports a Decimal128 timestamp whose seconds
// component does not fit a 64-bit signed integer.
type TimestampOverflowError struct {
	Seconds *big.Int
}

func (e *TimestampOverflowError) Error() string {
	return fmt.Sprintf("cannot represent number of seconds (%s) as a 64-bit signed integer", e.Seconds)
}
