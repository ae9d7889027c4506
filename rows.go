package arrowrow

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Rows turns a stream of record batches into a flat sequence of decoded
// rows, in the usual scanner shape:
//
//	rows, err := arrowrow.NewRows(decoder, reader)
//	if err != nil { ... }
//	for rows.Next() {
//		use(rows.Row())
//	}
//	if err := rows.Err(); err != nil { ... }
//
// One destination buffer is grown to the largest batch seen and reused
// for every batch after it, so steady-state iteration does not
// allocate per batch. Rows does not manage the reader's lifecycle; the
// caller releases it after iteration.
type Rows[T any] struct {
	dec Decoder[T]
	rr  array.RecordReader
	buf []T
	n   int
	cur int
	err error
}

// NewRows validates the reader's schema against the decoder and returns
// the scanner. The schema check runs here, once, so that iteration can
// never fail with a shape error halfway through a stream.
func NewRows[T any](dec Decoder[T], rr array.RecordReader) (*Rows[T], error) {
	if err := CheckSchema(dec, rr.Schema()); err != nil {
		return nil, err
	}
	return &Rows[T]{dec: dec, rr: rr, cur: -1}, nil
}

// Next advances to the next row, fetching and decoding batches as
// needed. It returns false when the stream is exhausted or an error
// occurred; consult Err to tell the two apart.
func (r *Rows[T]) Next() bool {
	if r.err != nil {
		return false
	}
	r.cur++
	for r.cur >= r.n {
		if !r.rr.Next() {
			r.err = r.rr.Err()
			return false
		}
		if err := r.fill(r.rr.Record()); err != nil {
			r.err = err
			return false
		}
		r.cur = 0
	}
	return true
}

// Row returns the current row. It is only valid after a call to Next
// that returned true, and only until the following call to Next for row
// types containing slices, which may alias the reused buffer.
func (r *Rows[T]) Row() T {
	return r.buf[r.cur]
}

// Err returns the first error encountered, from the reader or from
// decoding. It returns nil after a clean end of stream.
func (r *Rows[T]) Err() error {
	return r.err
}

func (r *Rows[T]) fill(rec arrow.Record) error {
	rows := int(rec.NumRows())
	if cap(r.buf) < rows {
		r.buf = make([]T, rows)
	}
	r.buf = r.buf[:rows]
	sa := array.RecordToStructArray(rec)
	defer sa.Release()
	n, err := r.dec.Decode(sa, Slice(r.buf))
	if err != nil {
		r.n = 0
		return err
	}
	r.n = n
	return nil
}
