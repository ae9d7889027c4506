package arrowrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// listLike is the surface shared by 32-bit offset lists, 64-bit offset
// lists and map entry-lists: a flat child array plus per-row offset
// spans.
type listLike interface {
	arrow.Array
	ListValues() arrow.Array
	ValueOffsets(i int) (int64, int64)
}

type listDecoder[E any] struct {
	elem Decoder[E]
}

// List returns a decoder that rebuilds variable-length rows from a flat
// child array plus its offsets. Both 32- and 64-bit offset widths are
// supported; whichever the source uses is selected at decode time.
func List[E any](elem Decoder[E]) Decoder[[]E] {
	return listDecoder[E]{elem: elem}
}

func (d listDecoder[E]) Check(dt arrow.DataType) error {
	var inner arrow.DataType
	switch t := dt.(type) {
	case *arrow.ListType:
		inner = t.Elem()
	case *arrow.LargeListType:
		inner = t.Elem()
	default:
		return &TypeMismatchError{Target: "list", Kind: "List", Actual: dt}
	}
	return d.elem.Check(inner)
}

func (d listDecoder[E]) Decode(src arrow.Array, dst Target[[]E]) (int, error) {
	l, ok := asListLike(src)
	if !ok {
		return 0, &TypeMismatchError{Target: "list", Kind: "List", Actual: src.DataType()}
	}
	if l.NullN() != 0 {
		return 0, &UnexpectedNullError{Target: "list"}
	}
	buf, err := d.decodeElements(l)
	if err != nil {
		return 0, err
	}
	n := l.Len()
	if dst.Len() < n {
		return 0, &LengthMismatchError{Src: n, Dst: dst.Len()}
	}
	split := newSplitter(l, len(buf))
	for i := 0; i < n; i++ {
		start, end := split.row(i)
		row := make([]E, end-start)
		copy(row, buf[start:end])
		*dst.At(i) = row
	}
	split.finish()
	return n, nil
}

func (d listDecoder[E]) DecodeOptional(src arrow.Array, dst Target[*[]E]) (int, error) {
	l, ok := asListLike(src)
	if !ok {
		return 0, &TypeMismatchError{Target: "list", Kind: "List", Actual: src.DataType()}
	}
	buf, err := d.decodeElements(l)
	if err != nil {
		return 0, err
	}
	n := l.Len()
	if dst.Len() < n {
		return 0, &LengthMismatchError{Src: n, Dst: dst.Len()}
	}
	split := newSplitter(l, len(buf))
	for i := 0; i < n; i++ {
		// An absent row still owns its offsets slot (a zero-width span
		// in well-formed data); consume it without materializing.
		start, end := split.row(i)
		if l.IsNull(i) {
			*dst.At(i) = nil
			continue
		}
		row := make([]E, end-start)
		copy(row, buf[start:end])
		*dst.At(i) = &row
	}
	split.finish()
	return n, nil
}

// decodeElements fully decodes the flat child array into a temporary
// buffer before any row is materialized. Per-element absence, for
// optional item types, lives inside the buffer's values.
func (d listDecoder[E]) decodeElements(l listLike) ([]E, error) {
	values := l.ListValues()
	buf := make([]E, values.Len())
	if _, err := d.elem.Decode(values, Slice(buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func asListLike(src arrow.Array) (listLike, bool) {
	switch a := src.(type) {
	case *array.List:
		return a, true
	case *array.LargeList:
		return a, true
	}
	return nil, false
}

// splitter walks a list column's offsets and checks their bookkeeping
// against the decoded element buffer. Violations are pipeline defects,
// not data errors: well-formed input, per its own declared offsets and
// lengths, cannot trigger them.
type splitter struct {
	src      listLike
	elements int
	consumed int64
	sliced   bool
}

func newSplitter(src listLike, elements int) *splitter {
	s := &splitter{src: src, elements: elements, sliced: !wholeArray(src)}
	if src.Len() > 0 {
		// A sliced array's first offset points into the middle of the
		// shared child; everything before it belongs to other rows.
		s.consumed, _ = src.ValueOffsets(0)
	}
	return s
}

// wholeArray reports whether the list array owns its child exclusively,
// which is when exhaustion bookkeeping is meaningful. A slice shares
// the parent's offsets buffer, so the buffer holds more than the
// slice's rows+1 entries even when the slice starts at row zero.
func wholeArray(src listLike) bool {
	if src.Data().Offset() != 0 {
		return false
	}
	switch a := src.(type) {
	case *array.List:
		return len(a.Offsets()) == a.Len()+1
	case *array.LargeList:
		return len(a.Offsets()) == a.Len()+1
	case *array.Map:
		return len(a.Offsets()) == a.Len()+1
	}
	return false
}

func (s *splitter) row(i int) (start, end int64) {
	start, end = s.src.ValueOffsets(i)
	if start != s.consumed || end < start {
		panic(fmt.Sprintf("arrowrow: list offsets are not contiguous at row %d: [%d, %d) after %d consumed", i, start, end, s.consumed))
	}
	if end > int64(s.elements) {
		panic(fmt.Sprintf("arrowrow: list too short: row %d spans [%d, %d) but only %d elements were decoded", i, start, end, s.elements))
	}
	s.consumed = end
	return start, end
}

// finish asserts the element buffer is exactly exhausted. Leftover
// elements mean the offsets under-consumed the child array. Skipped for
// sliced arrays, which deliberately cover only part of the child.
func (s *splitter) finish() {
	if !s.sliced && s.consumed != int64(s.elements) {
		panic(fmt.Sprintf("arrowrow: list too long: %d elements decoded but only %d consumed", s.elements, s.consumed))
	}
}

// MapEntry is one ordered key/value pair of a map row.
type MapEntry[K, V any] struct {
	Key   K
	Value V
}

type mapDecoder[K, V any] struct {
	key   Decoder[K]
	value Decoder[V]
}

// Map returns a decoder that rebuilds map rows as ordered entry slices.
// The keys and items flat arrays are decoded in lockstep and split with
// the same offsets walk lists use.
func Map[K, V any](key Decoder[K], value Decoder[V]) Decoder[[]MapEntry[K, V]] {
	return mapDecoder[K, V]{key: key, value: value}
}

func (d mapDecoder[K, V]) Check(dt arrow.DataType) error {
	t, ok := dt.(*arrow.MapType)
	if !ok {
		return &TypeMismatchError{Target: "map", Kind: "Map", Actual: dt}
	}
	if err := d.key.Check(t.KeyType()); err != nil {
		return fmt.Errorf("map key cannot be decoded: %w", err)
	}
	if err := d.value.Check(t.ItemType()); err != nil {
		return fmt.Errorf("map value cannot be decoded: %w", err)
	}
	return nil
}

func (d mapDecoder[K, V]) Decode(src arrow.Array, dst Target[[]MapEntry[K, V]]) (int, error) {
	m, ok := src.(*array.Map)
	if !ok {
		return 0, &TypeMismatchError{Target: "map", Kind: "Map", Actual: src.DataType()}
	}
	if m.NullN() != 0 {
		return 0, &UnexpectedNullError{Target: "map"}
	}
	keys, values, err := d.decodeEntries(m)
	if err != nil {
		return 0, err
	}
	n := m.Len()
	if dst.Len() < n {
		return 0, &LengthMismatchError{Src: n, Dst: dst.Len()}
	}
	split := newSplitter(m, len(keys))
	for i := 0; i < n; i++ {
		start, end := split.row(i)
		*dst.At(i) = zipEntries(keys[start:end], values[start:end])
	}
	split.finish()
	return n, nil
}

func (d mapDecoder[K, V]) DecodeOptional(src arrow.Array, dst Target[*[]MapEntry[K, V]]) (int, error) {
	m, ok := src.(*array.Map)
	if !ok {
		return 0, &TypeMismatchError{Target: "map", Kind: "Map", Actual: src.DataType()}
	}
	keys, values, err := d.decodeEntries(m)
	if err != nil {
		return 0, err
	}
	n := m.Len()
	if dst.Len() < n {
		return 0, &LengthMismatchError{Src: n, Dst: dst.Len()}
	}
	split := newSplitter(m, len(keys))
	for i := 0; i < n; i++ {
		start, end := split.row(i)
		if m.IsNull(i) {
			*dst.At(i) = nil
			continue
		}
		row := zipEntries(keys[start:end], values[start:end])
		*dst.At(i) = &row
	}
	split.finish()
	return n, nil
}

// decodeEntries decodes the parallel keys and items arrays fully, once,
// before any row is split. Both must be the same length; the arrow
// layout shares one offsets buffer between them.
func (d mapDecoder[K, V]) decodeEntries(m *array.Map) ([]K, []V, error) {
	keys, err := FromArray(d.key, m.Keys())
	if err != nil {
		return nil, nil, err
	}
	values, err := FromArray(d.value, m.Items())
	if err != nil {
		return nil, nil, err
	}
	if len(keys) != len(values) {
		panic(fmt.Sprintf("arrowrow: map keys and items diverge: %d keys, %d values", len(keys), len(values)))
	}
	return keys, values, nil
}

func zipEntries[K, V any](keys []K, values []V) []MapEntry[K, V] {
	entries := make([]MapEntry[K, V], len(keys))
	for i := range keys {
		entries[i] = MapEntry[K, V]{Key: keys[i], Value: values[i]}
	}
	return entries
}
