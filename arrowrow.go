// Package arrowrow decodes Apache Arrow columnar data into row-oriented
// Go values.
//
// Arrow (and columnar sources feeding it, such as ORC files) stores all
// values of one field contiguously. To work with individual rows, a
// reader has to "zip" columns back together: walk every column of a
// record batch in lockstep and produce one value per logical row. This
// package implements that zip as a type-directed decode engine that
// writes directly into caller-owned, pre-sized buffers, making a single
// pass over each column.
//
// A [Decoder] describes how one column decodes into one Go type. Scalar
// decoders ([Bool], [Int64], [String], ...) are provided as package
// variables; [List], [Map], [Optional] and [Struct] compose them into
// decoders for nested types. Nullable columns decode into pointer
// destinations via [Optional]; decoding a column that contains nulls
// into a non-pointer destination fails with [UnexpectedNullError].
//
// Use [Struct] with a declarative field list to build a decoder for a
// row type:
//
//	type Row struct {
//		Name  string
//		Sizes []int64
//	}
//
//	dec := arrowrow.Struct("Row",
//		arrowrow.Field("name", arrowrow.String, func(r *Row) *string { return &r.Name }),
//		arrowrow.Field("sizes", arrowrow.List(arrowrow.Int64), func(r *Row) *[]int64 { return &r.Sizes }),
//	)
//
//	rows, err := arrowrow.FromRecord(dec, record)
//
// Decoder.Check validates a column's physical layout against the
// decoder before any value is copied; run it (or [CheckSchema]) once
// per schema to get a complete, human-readable diagnostic instead of
// cast errors halfway through a file.
package arrowrow
