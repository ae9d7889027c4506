package arrowrow

import (
	"bytes"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
)

// Decoders for every scalar column type the engine supports. Text and
// binary accept both the narrow and wide (Large*) representations;
// everything else matches a single physical encoding, directly or
// behind dictionary encoding.
var (
	Bool    Decoder[bool]    = newScalar[bool, *array.Boolean]("bool", arrow.FixedWidthTypes.Boolean)
	Int8    Decoder[int8]    = newScalar[int8, *array.Int8]("int8", arrow.PrimitiveTypes.Int8)
	Int16   Decoder[int16]   = newScalar[int16, *array.Int16]("int16", arrow.PrimitiveTypes.Int16)
	Int32   Decoder[int32]   = newScalar[int32, *array.Int32]("int32", arrow.PrimitiveTypes.Int32)
	Int64   Decoder[int64]   = newScalar[int64, *array.Int64]("int64", arrow.PrimitiveTypes.Int64)
	Uint8   Decoder[uint8]   = newScalar[uint8, *array.Uint8]("uint8", arrow.PrimitiveTypes.Uint8)
	Uint16  Decoder[uint16]  = newScalar[uint16, *array.Uint16]("uint16", arrow.PrimitiveTypes.Uint16)
	Uint32  Decoder[uint32]  = newScalar[uint32, *array.Uint32]("uint32", arrow.PrimitiveTypes.Uint32)
	Uint64  Decoder[uint64]  = newScalar[uint64, *array.Uint64]("uint64", arrow.PrimitiveTypes.Uint64)
	Float32 Decoder[float32] = newScalar[float32, *array.Float32]("float32", arrow.PrimitiveTypes.Float32)
	Float64 Decoder[float64] = newScalar[float64, *array.Float64]("float64", arrow.PrimitiveTypes.Float64)

	Date Decoder[arrow.Date32] = newScalar[arrow.Date32, *array.Date32]("date", arrow.FixedWidthTypes.Date32)

	String  Decoder[string]         = stringDecoder{}
	Binary  Decoder[[]byte]         = binaryDecoder{}
	Decimal Decoder[decimal128.Num] = decimalDecoder{}
)

// scalarDecoder decodes a single physical array type A into T. It
// implements the three decode branches shared by every scalar: direct
// physical match, dictionary encoding, and type mismatch.
type scalarDecoder[T, E any, A valueArray[E]] struct {
	name     string
	accepted []arrow.DataType
	conv     func(E) (T, error)
}

func newScalar[T any, A valueArray[T]](name string, dt arrow.DataType) Decoder[T] {
	return scalarDecoder[T, T, A]{name: name, accepted: []arrow.DataType{dt}, conv: ident[T]}
}

func (d scalarDecoder[T, E, A]) Check(dt arrow.DataType) error {
	return checkDataType(dt, d.accepted, d.name)
}

func (d scalarDecoder[T, E, A]) Decode(src arrow.Array, dst Target[T]) (int, error) {
	if a, ok := src.(A); ok {
		return decodeNotNull(a, d.conv, d.name, dst)
	}
	if dict, ok := src.(*array.Dictionary); ok {
		return decodeDictionary(Decoder[T](d), d.name, dict, dst)
	}
	return 0, &TypeMismatchError{Target: d.name, Expected: d.accepted, Actual: src.DataType()}
}

func (d scalarDecoder[T, E, A]) DecodeOptional(src arrow.Array, dst Target[*T]) (int, error) {
	if a, ok := src.(A); ok {
		return decodeNullable(a, d.conv, dst)
	}
	if dict, ok := src.(*array.Dictionary); ok {
		return decodeDictionaryOptional(Decoder[T](d), dict, dst)
	}
	return 0, &TypeMismatchError{Target: d.name, Expected: d.accepted, Actual: src.DataType()}
}

// stringDecoder accepts either string representation; files written by
// different producers disagree on which one text columns use.
type stringDecoder struct{}

var stringTypes = []arrow.DataType{arrow.BinaryTypes.String, arrow.BinaryTypes.LargeString}

func (stringDecoder) Check(dt arrow.DataType) error {
	return checkDataType(dt, stringTypes, "string")
}

func (d stringDecoder) Decode(src arrow.Array, dst Target[string]) (int, error) {
	switch a := src.(type) {
	case *array.String:
		return decodeNotNull(a, ident[string], "string", dst)
	case *array.LargeString:
		return decodeNotNull(a, ident[string], "string", dst)
	case *array.Dictionary:
		return decodeDictionary(Decoder[string](d), "string", a, dst)
	}
	return 0, &TypeMismatchError{Target: "string", Expected: stringTypes, Actual: src.DataType()}
}

func (d stringDecoder) DecodeOptional(src arrow.Array, dst Target[*string]) (int, error) {
	switch a := src.(type) {
	case *array.String:
		return decodeNullable(a, ident[string], dst)
	case *array.LargeString:
		return decodeNullable(a, ident[string], dst)
	case *array.Dictionary:
		return decodeDictionaryOptional(Decoder[string](d), a, dst)
	}
	return 0, &TypeMismatchError{Target: "string", Expected: stringTypes, Actual: src.DataType()}
}

type binaryDecoder struct{}

var binaryTypes = []arrow.DataType{arrow.BinaryTypes.Binary, arrow.BinaryTypes.LargeBinary}

// cloneBytes detaches a value from the column's backing buffer, which
// only stays valid until the batch is released.
func cloneBytes(v []byte) ([]byte, error) {
	return bytes.Clone(v), nil
}

func (binaryDecoder) Check(dt arrow.DataType) error {
	return checkDataType(dt, binaryTypes, "binary")
}

func (d binaryDecoder) Decode(src arrow.Array, dst Target[[]byte]) (int, error) {
	switch a := src.(type) {
	case *array.Binary:
		return decodeNotNull(a, cloneBytes, "binary", dst)
	case *array.LargeBinary:
		return decodeNotNull(a, cloneBytes, "binary", dst)
	case *array.Dictionary:
		return decodeDictionary(Decoder[[]byte](d), "binary", a, dst)
	}
	return 0, &TypeMismatchError{Target: "binary", Expected: binaryTypes, Actual: src.DataType()}
}

func (d binaryDecoder) DecodeOptional(src arrow.Array, dst Target[*[]byte]) (int, error) {
	switch a := src.(type) {
	case *array.Binary:
		return decodeNullable(a, cloneBytes, dst)
	case *array.LargeBinary:
		return decodeNullable(a, cloneBytes, dst)
	case *array.Dictionary:
		return decodeDictionaryOptional(Decoder[[]byte](d), a, dst)
	}
	return 0, &TypeMismatchError{Target: "binary", Expected: binaryTypes, Actual: src.DataType()}
}

type fixedSizeBinaryDecoder struct {
	width int
}

// FixedSizeBinary returns a decoder for FixedSizeBinary(width) columns.
// The declared width must match the column's exactly; values of any
// other length fail with [SizeMismatchError].
func FixedSizeBinary(width int) Decoder[[]byte] {
	return fixedSizeBinaryDecoder{width: width}
}

func (d fixedSizeBinaryDecoder) Check(dt arrow.DataType) error {
	fsb, ok := unwrapDictionary(dt).(*arrow.FixedSizeBinaryType)
	if !ok {
		return &TypeMismatchError{Target: "fixed-size binary", Kind: "FixedSizeBinary", Actual: dt}
	}
	if fsb.ByteWidth != d.width {
		return &TypeMismatchError{
			Target:   "fixed-size binary",
			Expected: []arrow.DataType{&arrow.FixedSizeBinaryType{ByteWidth: d.width}},
			Actual:   dt,
		}
	}
	return nil
}

func (d fixedSizeBinaryDecoder) conv(v []byte) ([]byte, error) {
	if len(v) != d.width {
		return nil, &SizeMismatchError{Src: len(v), Dst: d.width}
	}
	return bytes.Clone(v), nil
}

func (d fixedSizeBinaryDecoder) Decode(src arrow.Array, dst Target[[]byte]) (int, error) {
	switch a := src.(type) {
	case *array.FixedSizeBinary:
		return decodeNotNull(a, d.conv, "fixed-size binary", dst)
	case *array.Dictionary:
		return decodeDictionary(Decoder[[]byte](d), "fixed-size binary", a, dst)
	}
	return 0, &TypeMismatchError{Target: "fixed-size binary", Kind: "FixedSizeBinary", Actual: src.DataType()}
}

func (d fixedSizeBinaryDecoder) DecodeOptional(src arrow.Array, dst Target[*[]byte]) (int, error) {
	switch a := src.(type) {
	case *array.FixedSizeBinary:
		return decodeNullable(a, d.conv, dst)
	case *array.Dictionary:
		return decodeDictionaryOptional(Decoder[[]byte](d), a, dst)
	}
	return 0, &TypeMismatchError{Target: "fixed-size binary", Kind: "FixedSizeBinary", Actual: src.DataType()}
}

// decimalDecoder passes Decimal128 values through untouched, any
// precision and scale. Interpreting the scale is the caller's business.
type decimalDecoder struct{}

func (decimalDecoder) Check(dt arrow.DataType) error {
	if _, ok := unwrapDictionary(dt).(*arrow.Decimal128Type); ok {
		return nil
	}
	return &TypeMismatchError{Target: "decimal128", Kind: "Decimal128(_, _)", Actual: dt}
}

func (d decimalDecoder) Decode(src arrow.Array, dst Target[decimal128.Num]) (int, error) {
	switch a := src.(type) {
	case *array.Decimal128:
		return decodeNotNull(a, ident[decimal128.Num], "decimal128", dst)
	case *array.Dictionary:
		return decodeDictionary(Decoder[decimal128.Num](d), "decimal128", a, dst)
	}
	return 0, &TypeMismatchError{Target: "decimal128", Kind: "Decimal128(_, _)", Actual: src.DataType()}
}

func (d decimalDecoder) DecodeOptional(src arrow.Array, dst Target[*decimal128.Num]) (int, error) {
	switch a := src.(type) {
	case *array.Decimal128:
		return decodeNullable(a, ident[decimal128.Num], dst)
	case *array.Dictionary:
		return decodeDictionaryOptional(Decoder[decimal128.Num](d), a, dst)
	}
	return 0, &TypeMismatchError{Target: "decimal128", Kind: "Decimal128(_, _)", Actual: src.DataType()}
}
