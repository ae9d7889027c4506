package arrowrow

// Target is a mutable view over a decode destination. It is exactly
// sized and repeatedly traversable: a decoder asks for it once per
// column it fills, addressing slots by index.
//
// Len must never overstate the number of slots At can address. Decoders
// advance through destinations without per-step bounds checks of their
// own; an implementation that lies about Len makes At panic via the
// underlying slice bounds check.
type Target[T any] interface {
	// Len reports the number of row slots the destination holds.
	Len() int
	// At returns a pointer to slot i, 0 <= i < Len().
	At(i int) *T
}

type sliceTarget[T any] struct {
	rows []T
}

// Slice wraps a destination buffer in a Target. The buffer must be
// sized to the row count of the batch being decoded before decode
// starts; decoding never resizes it.
func Slice[T any](rows []T) Target[T] {
	return sliceTarget[T]{rows: rows}
}

func (t sliceTarget[T]) Len() int    { return len(t.rows) }
func (t sliceTarget[T]) At(i int) *T { return &t.rows[i] }

type projection[S, F any] struct {
	parent Target[S]
	access func(*S) *F
}

// Project derives a Target over one field of a struct destination. The
// accessor extracts a mutable reference to the field without copying,
// so nested decoders write directly into the final struct layout, never
// through a temporary.
func Project[S, F any](t Target[S], access func(*S) *F) Target[F] {
	return projection[S, F]{parent: t, access: access}
}

func (p projection[S, F]) Len() int    { return p.parent.Len() }
func (p projection[S, F]) At(i int) *F { return p.access(p.parent.At(i)) }
