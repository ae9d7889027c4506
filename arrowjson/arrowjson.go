// Package arrowjson renders Arrow columns as generic tree-shaped
// documents, one value per row, without compile-time record types. It
// follows the same reconstruction rules as the typed decoders in the
// parent package: dictionary keys are resolved against their decoded
// values, list rows are split out of the flat child by offsets, and
// nulls become JSON null at any depth.
package arrowjson

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	jsoniter "github.com/json-iterator/go"

	"github.com/softwareheritage/ar-row-go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

type mapEntry struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}

// Column converts every row of a column into a generic value:
// nil, bool, integer, float, string, []byte, []any, map[string]any for
// structs, or []mapEntry-shaped objects for maps.
func Column(arr arrow.Array) ([]any, error) {
	rows := make([]any, arr.Len())
	if err := fill(arr, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Record converts a record batch into one document per row, with one
// entry per top-level field.
func Record(rec arrow.Record) ([]map[string]any, error) {
	cols := make([][]any, rec.NumCols())
	for i, col := range rec.Columns() {
		var err error
		if cols[i], err = Column(col); err != nil {
			return nil, fmt.Errorf("column %s: %w", rec.ColumnName(i), err)
		}
	}
	rows := make([]map[string]any, rec.NumRows())
	for i := range rows {
		doc := make(map[string]any, rec.NumCols())
		for j := range cols {
			doc[rec.ColumnName(j)] = cols[j][i]
		}
		rows[i] = doc
	}
	return rows, nil
}

// Write renders a record batch to w, one JSON document per line.
func Write(w io.Writer, rec arrow.Record) error {
	rows, err := Record(rec)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func fill(arr arrow.Array, rows []any) error {
	switch a := arr.(type) {
	case *array.Boolean:
		fillValues(a, rows, func(v bool) any { return v })
	case *array.Int8:
		fillValues(a, rows, func(v int8) any { return v })
	case *array.Int16:
		fillValues(a, rows, func(v int16) any { return v })
	case *array.Int32:
		fillValues(a, rows, func(v int32) any { return v })
	case *array.Int64:
		fillValues(a, rows, func(v int64) any { return v })
	case *array.Uint8:
		fillValues(a, rows, func(v uint8) any { return v })
	case *array.Uint16:
		fillValues(a, rows, func(v uint16) any { return v })
	case *array.Uint32:
		fillValues(a, rows, func(v uint32) any { return v })
	case *array.Uint64:
		fillValues(a, rows, func(v uint64) any { return v })
	case *array.Float32:
		fillValues(a, rows, func(v float32) any { return v })
	case *array.Float64:
		fillValues(a, rows, func(v float64) any { return v })
	case *array.String:
		fillValues(a, rows, func(v string) any { return v })
	case *array.LargeString:
		fillValues(a, rows, func(v string) any { return v })
	case *array.Binary:
		fillValues(a, rows, func(v []byte) any { return append([]byte(nil), v...) })
	case *array.LargeBinary:
		fillValues(a, rows, func(v []byte) any { return append([]byte(nil), v...) })
	case *array.FixedSizeBinary:
		fillValues(a, rows, func(v []byte) any { return append([]byte(nil), v...) })
	case *array.Date32:
		fillValues(a, rows, func(v arrow.Date32) any { return v.ToTime().Format("2006-01-02") })
	case *array.Timestamp, *array.Decimal128:
		return fillTimestamps(arr, rows)
	case *array.Dictionary:
		return fillDictionary(a, rows)
	case *array.List:
		return fillList(a, rows)
	case *array.LargeList:
		return fillList(a, rows)
	case *array.Map:
		return fillMap(a, rows)
	case *array.Struct:
		return fillStruct(a, rows)
	default:
		return fmt.Errorf("unsupported column type %s", arr.DataType())
	}
	return nil
}

func fillValues[E any](src interface {
	arrow.Array
	Value(i int) E
}, rows []any, conv func(E) any) {
	for i := range rows {
		if src.IsNull(i) {
			rows[i] = nil
			continue
		}
		rows[i] = conv(src.Value(i))
	}
}

// fillTimestamps reuses the typed timestamp decoder, Decimal128(38, 9)
// handling included, and renders each value as a two-field document.
func fillTimestamps(arr arrow.Array, rows []any) error {
	decoded, err := arrowrow.FromArray(arrowrow.Optional(arrowrow.Timestamps), arr)
	if err != nil {
		return err
	}
	for i, ts := range decoded {
		if ts == nil {
			rows[i] = nil
			continue
		}
		rows[i] = timestamp{Seconds: ts.Seconds, Nanoseconds: ts.Nanoseconds}
	}
	return nil
}

func fillDictionary(a *array.Dictionary, rows []any) error {
	values, err := Column(a.Dictionary())
	if err != nil {
		return err
	}
	for i := range rows {
		if a.IsNull(i) {
			rows[i] = nil
			continue
		}
		key := a.GetValueIndex(i)
		if key < 0 || key >= len(values) {
			return &arrowrow.DictionaryOverflowError{Key: key, Len: len(values), Type: a.DataType()}
		}
		rows[i] = values[key]
	}
	return nil
}

func fillList(a interface {
	arrow.Array
	ListValues() arrow.Array
	ValueOffsets(i int) (int64, int64)
}, rows []any) error {
	child, err := Column(a.ListValues())
	if err != nil {
		return err
	}
	for i := range rows {
		if a.IsNull(i) {
			rows[i] = nil
			continue
		}
		start, end := a.ValueOffsets(i)
		row := make([]any, end-start)
		copy(row, child[start:end])
		rows[i] = row
	}
	return nil
}

func fillMap(a *array.Map, rows []any) error {
	keys, err := Column(a.Keys())
	if err != nil {
		return err
	}
	items, err := Column(a.Items())
	if err != nil {
		return err
	}
	for i := range rows {
		if a.IsNull(i) {
			rows[i] = nil
			continue
		}
		start, end := a.ValueOffsets(i)
		entries := make([]any, 0, end-start)
		for j := start; j < end; j++ {
			entries = append(entries, mapEntry{Key: keys[j], Value: items[j]})
		}
		rows[i] = entries
	}
	return nil
}

func fillStruct(a *array.Struct, rows []any) error {
	st := a.DataType().(*arrow.StructType)
	fields := make([][]any, a.NumField())
	for j := 0; j < a.NumField(); j++ {
		var err error
		if fields[j], err = Column(a.Field(j)); err != nil {
			return fmt.Errorf("field %s: %w", st.Field(j).Name, err)
		}
	}
	for i := range rows {
		if a.IsNull(i) {
			rows[i] = nil
			continue
		}
		doc := make(map[string]any, a.NumField())
		for j := range fields {
			doc[st.Field(j).Name] = fields[j][i]
		}
		rows[i] = doc
	}
	return nil
}
