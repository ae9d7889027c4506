package arrowrow

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

func buildInt64List(t *testing.T, rows [][]int64, valid []bool) *array.List {
	t.Helper()
	b := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int64Builder)
	for i, row := range rows {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(true)
		vb.AppendValues(row, nil)
	}
	return b.NewListArray()
}

func TestListReconstruction(t *testing.T) {
	arr := buildInt64List(t, [][]int64{{3, 4}, {100000000, -100000, 1234}}, nil)
	defer arr.Release()

	got, err := FromArray(List(Int64), arr)
	require.NoError(t, err)
	require.Equal(t, [][]int64{{3, 4}, {100000000, -100000, 1234}}, got)
}

func TestListWithAbsentRow(t *testing.T) {
	arr := buildInt64List(t,
		[][]int64{{3, 4}, nil, {100000000, -100000, 1234}},
		[]bool{true, false, true})
	defer arr.Release()

	got, err := FromArray(Optional(List(Int64)), arr)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []int64{3, 4}, *got[0])
	require.Nil(t, got[1])
	require.Equal(t, []int64{100000000, -100000, 1234}, *got[2])

	_, err = FromArray(List(Int64), arr)
	var nullErr *UnexpectedNullError
	require.ErrorAs(t, err, &nullErr)
}

func TestLargeList(t *testing.T) {
	b := array.NewLargeListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int64Builder)
	b.Append(true)
	vb.AppendValues([]int64{7}, nil)
	b.Append(true)
	arr := b.NewLargeListArray()
	defer arr.Release()

	got, err := FromArray(List(Int64), arr)
	require.NoError(t, err)
	require.Equal(t, [][]int64{{7}, {}}, got)
}

func TestListOfOptionalElements(t *testing.T) {
	b := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int64Builder)
	b.Append(true)
	vb.Append(1)
	vb.AppendNull()
	vb.Append(3)
	arr := b.NewListArray()
	defer arr.Release()

	got, err := FromArray(List(Optional(Int64)), arr)
	require.NoError(t, err)
	require.Len(t, got, 1)
	row := got[0]
	require.Len(t, row, 3)
	require.Equal(t, int64(1), *row[0])
	require.Nil(t, row[1])
	require.Equal(t, int64(3), *row[2])
}

func TestListCheck(t *testing.T) {
	dec := List(Int64)
	require.NoError(t, dec.Check(arrow.ListOf(arrow.PrimitiveTypes.Int64)))
	require.NoError(t, dec.Check(arrow.LargeListOf(arrow.PrimitiveTypes.Int64)))
	require.Error(t, dec.Check(arrow.ListOf(arrow.BinaryTypes.String)))
	require.Error(t, dec.Check(arrow.PrimitiveTypes.Int64))
}

func TestSlicedListDecode(t *testing.T) {
	arr := buildInt64List(t, [][]int64{{1}, {2, 3}, {4, 5, 6}}, nil)
	defer arr.Release()

	slice := array.NewSlice(arr, 0, 2).(*array.List)
	defer slice.Release()

	got, err := FromArray(List(Int64), slice)
	require.NoError(t, err)
	require.Equal(t, [][]int64{{1}, {2, 3}}, got)

	tail := array.NewSlice(arr, 1, 3).(*array.List)
	defer tail.Release()

	got, err = FromArray(List(Int64), tail)
	require.NoError(t, err)
	require.Equal(t, [][]int64{{2, 3}, {4, 5, 6}}, got)
}

// rawInt64List assembles a list array straight from offsets and child
// buffers, bypassing the builder's bookkeeping.
func rawInt64List(t *testing.T, offsets []int32, child []int64) *array.List {
	t.Helper()
	cb := array.NewInt64Builder(memory.DefaultAllocator)
	defer cb.Release()
	cb.AppendValues(child, nil)
	childArr := cb.NewInt64Array()
	defer childArr.Release()

	offBuf := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(offsets))
	data := array.NewData(arrow.ListOf(arrow.PrimitiveTypes.Int64), len(offsets)-1,
		[]*memory.Buffer{nil, offBuf}, []arrow.ArrayData{childArr.Data()}, 0, 0)
	defer data.Release()
	return array.NewListData(data)
}

func TestListOffsetFaults(t *testing.T) {
	t.Run("too long", func(t *testing.T) {
		arr := rawInt64List(t, []int32{0, 2, 5}, []int64{1, 2, 3, 4, 5, 6})
		defer arr.Release()
		require.Panics(t, func() { _, _ = FromArray(List(Int64), arr) })
	})
	t.Run("too short", func(t *testing.T) {
		arr := rawInt64List(t, []int32{0, 2, 8}, []int64{1, 2, 3, 4, 5, 6})
		defer arr.Release()
		require.Panics(t, func() { _, _ = FromArray(List(Int64), arr) })
	})
	t.Run("not contiguous", func(t *testing.T) {
		arr := rawInt64List(t, []int32{0, 3, 2, 6}, []int64{1, 2, 3, 4, 5, 6})
		defer arr.Release()
		require.Panics(t, func() { _, _ = FromArray(List(Int64), arr) })
	})
}

func TestMapReconstruction(t *testing.T) {
	b := array.NewMapBuilder(memory.DefaultAllocator, arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int64, false)
	defer b.Release()
	kb := b.KeyBuilder().(*array.StringBuilder)
	ib := b.ItemBuilder().(*array.Int64Builder)

	b.Append(true)
	kb.Append("a")
	ib.Append(1)
	kb.Append("b")
	ib.Append(2)
	b.Append(true)
	b.Append(true)
	kb.Append("c")
	ib.Append(3)
	arr := b.NewMapArray()
	defer arr.Release()

	dec := Map(String, Int64)
	require.NoError(t, dec.Check(arr.DataType()))
	got, err := FromArray(dec, arr)
	require.NoError(t, err)
	require.Equal(t, [][]MapEntry[string, int64]{
		{{Key: "a", Value: 1}, {Key: "b", Value: 2}},
		{},
		{{Key: "c", Value: 3}},
	}, got)
}

func TestMapWithAbsentRow(t *testing.T) {
	b := array.NewMapBuilder(memory.DefaultAllocator, arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int64, false)
	defer b.Release()
	kb := b.KeyBuilder().(*array.StringBuilder)
	ib := b.ItemBuilder().(*array.Int64Builder)

	b.Append(true)
	kb.Append("k")
	ib.Append(9)
	b.AppendNull()
	arr := b.NewMapArray()
	defer arr.Release()

	got, err := FromArray(Optional(Map(String, Int64)), arr)
	require.NoError(t, err)
	require.Equal(t, []MapEntry[string, int64]{{Key: "k", Value: 9}}, *got[0])
	require.Nil(t, got[1])
}
