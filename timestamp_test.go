package arrowrow

import (
	"math/big"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

func buildTimestamps(t *testing.T, unit arrow.TimeUnit, vals []arrow.Timestamp) *array.Timestamp {
	t.Helper()
	b := array.NewTimestampBuilder(memory.DefaultAllocator, &arrow.TimestampType{Unit: unit})
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewTimestampArray()
}

func TestTimestampSplit(t *testing.T) {
	for _, tc := range []struct {
		name string
		unit arrow.TimeUnit
		in   arrow.Timestamp
		want Timestamp
	}{
		{"seconds", arrow.Second, 2114380800, Timestamp{Seconds: 2114380800}},
		{"millis", arrow.Millisecond, 1500, Timestamp{Seconds: 1, Nanoseconds: 500_000_000}},
		{"millis negative", arrow.Millisecond, -1500, Timestamp{Seconds: -1, Nanoseconds: -500_000_000}},
		{"micros", arrow.Microsecond, 1_000_001, Timestamp{Seconds: 1, Nanoseconds: 1_000}},
		{"nanos", arrow.Nanosecond, 1_500_000_000, Timestamp{Seconds: 1, Nanoseconds: 500_000_000}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			arr := buildTimestamps(t, tc.unit, []arrow.Timestamp{tc.in})
			defer arr.Release()
			got, err := FromArray(Timestamps, arr)
			require.NoError(t, err)
			require.Equal(t, []Timestamp{tc.want}, got)
		})
	}
}

func TestTimestampFromDecimal(t *testing.T) {
	dt := &arrow.Decimal128Type{Precision: 38, Scale: 9}
	b := array.NewDecimal128Builder(memory.DefaultAllocator, dt)
	defer b.Release()
	b.Append(decimal128.FromI64(-2198229903900000000))
	b.Append(decimal128.FromI64(1_000_000_001))
	arr := b.NewDecimal128Array()
	defer arr.Release()

	require.NoError(t, Timestamps.Check(dt))
	got, err := FromArray(Timestamps, arr)
	require.NoError(t, err)
	require.Equal(t, []Timestamp{
		{Seconds: -2198229903, Nanoseconds: -900_000_000},
		{Seconds: 1, Nanoseconds: 1},
	}, got)
}

func TestTimestampDecimalOverflow(t *testing.T) {
	// 10^28 nanoseconds is 10^19 seconds, one order past int64.
	huge := decimal128.FromBigInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(28), nil))

	dt := &arrow.Decimal128Type{Precision: 38, Scale: 9}
	b := array.NewDecimal128Builder(memory.DefaultAllocator, dt)
	defer b.Release()
	b.Append(huge)
	arr := b.NewDecimal128Array()
	defer arr.Release()

	_, err := FromArray(Timestamps, arr)
	var overflow *TimestampOverflowError
	require.ErrorAs(t, err, &overflow)
	require.Equal(t, "10000000000000000000", overflow.Seconds.String())
}

func TestTimestampRejectsOtherDecimals(t *testing.T) {
	dt := &arrow.Decimal128Type{Precision: 12, Scale: 2}
	require.Error(t, Timestamps.Check(dt))

	b := array.NewDecimal128Builder(memory.DefaultAllocator, dt)
	defer b.Release()
	b.Append(decimal128.FromI64(1))
	arr := b.NewDecimal128Array()
	defer arr.Release()

	_, err := FromArray(Timestamps, arr)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestTimestampOptional(t *testing.T) {
	b := array.NewTimestampBuilder(memory.DefaultAllocator, &arrow.TimestampType{Unit: arrow.Second})
	defer b.Release()
	b.Append(10)
	b.AppendNull()
	arr := b.NewTimestampArray()
	defer arr.Release()

	got, err := FromArray(Optional(Timestamps), arr)
	require.NoError(t, err)
	require.Equal(t, Timestamp{Seconds: 10}, *got[0])
	require.Nil(t, got[1])
}
