package arrowrow

import (
	"math/big"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
)

// Timestamp is a timezone-less instant split into whole seconds and a
// sub-second remainder in nanoseconds.
//
// The split uses truncating division, so for instants before the epoch
// both fields carry the sign: -1.5s is {Seconds: -1, Nanoseconds:
// -500000000}. Note this differs from time.Unix, which expects a
// non-negative nanosecond remainder.
type Timestamp struct {
	Seconds     int64
	Nanoseconds int64
}

// ORC writers that cannot express a timestamp column emit it as
// Decimal128(38, 9): a count of seconds with nine digits of sub-second
// scale.
const (
	timestampPrecision = 38
	timestampScale     = 9
)

var timestampDividend = big.NewInt(1_000_000_000)

// Timestamps decodes timestamp columns in any of the four integer
// units, or the Decimal128(38, 9) seconds representation.
var Timestamps Decoder[Timestamp] = timestampDecoder{}

type timestampDecoder struct{}

func (timestampDecoder) Check(dt arrow.DataType) error {
	switch t := unwrapDictionary(dt).(type) {
	case *arrow.TimestampType:
		return nil
	case *arrow.Decimal128Type:
		if t.Precision == timestampPrecision && t.Scale == timestampScale {
			return nil
		}
	}
	return &TypeMismatchError{
		Target: "Timestamp",
		Kind:   "Timestamp(s/ms/us/ns) or Decimal128(38, 9)",
		Actual: dt,
	}
}

func (d timestampDecoder) Decode(src arrow.Array, dst Target[Timestamp]) (int, error) {
	switch a := src.(type) {
	case *array.Timestamp:
		ratio := unitRatio(a.DataType().(*arrow.TimestampType).Unit)
		return decodeNotNull(a, func(v arrow.Timestamp) (Timestamp, error) {
			return splitTimestamp(int64(v), ratio), nil
		}, "Timestamp", dst)
	case *array.Decimal128:
		if err := d.Check(a.DataType()); err != nil {
			return 0, err
		}
		return decodeNotNull(a, timestampFromDecimal, "Timestamp", dst)
	case *array.Dictionary:
		return decodeDictionary(Decoder[Timestamp](d), "Timestamp", a, dst)
	}
	return 0, &TypeMismatchError{
		Target: "Timestamp",
		Kind:   "Timestamp(s/ms/us/ns) or Decimal128(38, 9)",
		Actual: src.DataType(),
	}
}

func (d timestampDecoder) DecodeOptional(src arrow.Array, dst Target[*Timestamp]) (int, error) {
	switch a := src.(type) {
	case *array.Timestamp:
		ratio := unitRatio(a.DataType().(*arrow.TimestampType).Unit)
		return decodeNullable(a, func(v arrow.Timestamp) (Timestamp, error) {
			return splitTimestamp(int64(v), ratio), nil
		}, dst)
	case *array.Decimal128:
		if err := d.Check(a.DataType()); err != nil {
			return 0, err
		}
		return decodeNullable(a, timestampFromDecimal, dst)
	case *array.Dictionary:
		return decodeDictionaryOptional(Decoder[Timestamp](d), a, dst)
	}
	return 0, &TypeMismatchError{
		Target: "Timestamp",
		Kind:   "Timestamp(s/ms/us/ns) or Decimal128(38, 9)",
		Actual: src.DataType(),
	}
}

// unitRatio returns the number of native units per second.
func unitRatio(u arrow.TimeUnit) int64 {
	switch u {
	case arrow.Second:
		return 1
	case arrow.Millisecond:
		return 1_000
	case arrow.Microsecond:
		return 1_000_000
	default:
		return 1_000_000_000
	}
}

func splitTimestamp(v, ratio int64) Timestamp {
	return Timestamp{
		Seconds:     v / ratio,
		Nanoseconds: (v % ratio) * (1_000_000_000 / ratio),
	}
}

// timestampFromDecimal splits a Decimal128(38, 9) seconds count. The
// quotient must fit int64; the remainder always does.
func timestampFromDecimal(v decimal128.Num) (Timestamp, error) {
	quo, rem := new(big.Int).QuoRem(v.BigInt(), timestampDividend, new(big.Int))
	if !quo.IsInt64() {
		return Timestamp{}, &TimestampOverflowError{Seconds: quo}
	}
	return Timestamp{Seconds: quo.Int64(), Nanoseconds: rem.Int64()}, nil
}
