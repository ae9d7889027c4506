package arrowrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/hashicorp/go-multierror"
)

// StructField binds one column of a struct array to one field of the
// destination type. Build values with [Field]; the interface itself has
// no exported methods.
type StructField[T any] interface {
	fieldName() string
	checkField(dt arrow.DataType) error
	decodeField(src arrow.Array, dst Target[T]) error
	decodeFieldDeref(src arrow.Array, dst Target[*T]) error
}

type structField[T, F any] struct {
	name   string
	dec    Decoder[F]
	access func(*T) *F
}

// Field binds the struct column called name to the destination field
// selected by access. The accessor typically returns the address of one
// field:
//
//	arrowrow.Field("id", arrowrow.Int64, func(r *Row) *int64 { return &r.ID })
//
// Whether the column may carry nulls is decided by dec: wrap it in
// [Optional] and point access at a pointer field to accept them.
func Field[T, F any](name string, dec Decoder[F], access func(*T) *F) StructField[T] {
	return structField[T, F]{name: name, dec: dec, access: access}
}

func (f structField[T, F]) fieldName() string { return f.name }

func (f structField[T, F]) checkField(dt arrow.DataType) error {
	return f.dec.Check(dt)
}

func (f structField[T, F]) decodeField(src arrow.Array, dst Target[T]) error {
	_, err := f.dec.Decode(src, Project(dst, f.access))
	return err
}

// decodeFieldDeref decodes into rows that the struct decoder has
// already allocated: every slot of dst holds a non-nil pointer when
// this runs.
func (f structField[T, F]) decodeFieldDeref(src arrow.Array, dst Target[*T]) error {
	_, err := f.dec.Decode(src, Project(dst, func(p **T) *F { return f.access(*p) }))
	return err
}

type structDecoder[T any] struct {
	name   string
	fields []StructField[T]
}

// Struct returns a decoder that composes fields, matched to struct
// columns by position, into whole values of T. The name is used in
// diagnostics only.
//
// Columns are matched positionally and their names verified, never used
// for lookup: a file with reordered columns fails [Decoder.Check] with
// a [SchemaError] instead of silently filling the wrong fields.
func Struct[T any](name string, fields ...StructField[T]) Decoder[T] {
	return structDecoder[T]{name: name, fields: fields}
}

func (d structDecoder[T]) Check(dt arrow.DataType) error {
	st, ok := unwrapDictionary(dt).(*arrow.StructType)
	if !ok {
		return &TypeMismatchError{Target: d.name, Kind: "Struct", Actual: dt}
	}
	var merr *multierror.Error
	for i, f := range d.fields {
		if i >= st.NumFields() {
			merr = multierror.Append(merr, fmt.Errorf("field %s is missing", f.fieldName()))
			continue
		}
		col := st.Field(i)
		if col.Name != f.fieldName() {
			// A misplaced column's type is checked against the wrong
			// field anyway; report only the naming problem.
			merr = multierror.Append(merr, fmt.Errorf("field #%d must be named %s, not %s", i, f.fieldName(), col.Name))
			continue
		}
		if err := f.checkField(col.Type); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("field %s cannot be decoded: %w", f.fieldName(), err))
		}
	}
	if extra := st.NumFields() - len(d.fields); extra > 0 {
		names := make([]string, 0, extra)
		for i := len(d.fields); i < st.NumFields(); i++ {
			names = append(names, st.Field(i).Name)
		}
		merr = multierror.Append(merr, fmt.Errorf("%d unexpected extra fields: %v", extra, names))
	}
	if merr != nil {
		return &SchemaError{Record: d.name, Err: merr}
	}
	return nil
}

func (d structDecoder[T]) Decode(src arrow.Array, dst Target[T]) (int, error) {
	sa, ok := src.(*array.Struct)
	if !ok {
		return 0, &TypeMismatchError{Target: d.name, Kind: "Struct", Actual: src.DataType()}
	}
	if sa.NullN() != 0 {
		return 0, &UnexpectedNullError{Target: d.name}
	}
	d.checkArity(sa)
	n := sa.Len()
	if dst.Len() < n {
		return 0, &LengthMismatchError{Src: n, Dst: dst.Len()}
	}
	// Reset every row before the column sweeps so that rows skipped by
	// a short column (or left over from a previous batch) hold zero
	// values, not stale ones.
	var zero T
	for i := 0; i < n; i++ {
		*dst.At(i) = zero
	}
	for j, f := range d.fields {
		if err := f.decodeField(sa.Field(j), dst); err != nil {
			return 0, fmt.Errorf("%s.%s: %w", d.name, f.fieldName(), err)
		}
	}
	return n, nil
}

func (d structDecoder[T]) DecodeOptional(src arrow.Array, dst Target[*T]) (int, error) {
	sa, ok := src.(*array.Struct)
	if !ok {
		return 0, &TypeMismatchError{Target: d.name, Kind: "Struct", Actual: src.DataType()}
	}
	d.checkArity(sa)
	n := sa.Len()
	if dst.Len() < n {
		return 0, &LengthMismatchError{Src: n, Dst: dst.Len()}
	}
	// Child columns carry values for every row, absent parents
	// included, so decode them all into allocated rows first and drop
	// the absent ones afterwards.
	for i := 0; i < n; i++ {
		*dst.At(i) = new(T)
	}
	for j, f := range d.fields {
		if err := f.decodeFieldDeref(sa.Field(j), dst); err != nil {
			return 0, fmt.Errorf("%s.%s: %w", d.name, f.fieldName(), err)
		}
	}
	for i := 0; i < n; i++ {
		if sa.IsNull(i) {
			*dst.At(i) = nil
		}
	}
	return n, nil
}

// checkArity guards the positional field sweep. A column count mismatch
// past Check means the caller decoded a different schema than it
// checked, which is a programming error, not a data error.
func (d structDecoder[T]) checkArity(sa *array.Struct) {
	if sa.NumField() != len(d.fields) {
		panic(fmt.Sprintf("arrowrow: %s has %d fields but the struct column has %d; run Check before Decode",
			d.name, len(d.fields), sa.NumField()))
	}
}
