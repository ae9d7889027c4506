package arrowrow

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"golang.org/x/sync/errgroup"
)

// FromRecordParallel decodes a record batch like [FromRecord], spread
// over up to parallelism goroutines. The batch is split into contiguous
// row ranges and each range is decoded into its own disjoint window of
// the output slice, so workers never touch the same slot and the result
// is identical to a sequential decode.
//
// Worth it only for large batches; per-batch overhead is a record slice
// and a struct-array view per worker. parallelism < 1 means one worker.
func FromRecordParallel[T any](d Decoder[T], rec arrow.Record, parallelism int) ([]T, error) {
	total := int(rec.NumRows())
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism == 1 || total < 2 {
		return FromRecord(d, rec)
	}
	if parallelism > total {
		parallelism = total
	}
	out := make([]T, total)
	chunk := (total + parallelism - 1) / parallelism

	var g errgroup.Group
	for lo := 0; lo < total; lo += chunk {
		hi := min(lo+chunk, total)
		g.Go(func() error {
			slice := rec.NewSlice(int64(lo), int64(hi))
			defer slice.Release()
			sa := array.RecordToStructArray(slice)
			defer sa.Release()
			_, err := d.Decode(sa, Slice(out[lo:hi]))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
