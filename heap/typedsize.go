package heap

import "github.com/cznic/mathutil"

// TypedSize is the result of size inference: a byte interval, a
// guessed element type and, iff the request is for a fixed-size
// strong allocation whose bounds are equal and divisible by
// sizeof(elem), the resulting element count (spec.md §3).
type TypedSize struct {
	MinBytes int64
	MaxBytes int64
	ElemType string
	ElemSize int64
	NbElems  int64
	HasElems bool
}

// ExtractSize projects an abstract size value to a [min, max] byte
// interval (spec.md §4.1). If sizev cannot be projected to an integer
// interval at all, it defaults to (0, maxByteSize).
func ExtractSize(sizev AbstractValue, maxByteSize int64) (smin, smax int64) {
	ival, ok := sizev.ProjectIval()
	if !ok || !ival.Ok {
		return 0, maxByteSize
	}
	smin, smax = ival.Min, ival.Max
	if smin < 0 {
		smin = 0
	}
	if smax > maxByteSize {
		smax = maxByteSize
	}
	if smax < smin {
		smax = smin
	}
	return smin, smax
}

// GuessIntendedMallocType implements spec.md §4.1's element-type
// guess: inspect the current call site; if it is an assignment
// "lv = call(...)" whose lvalue has pointer type T* with T non-void,
// and both smin and smax are multiples of sizeof(T), pick T; else
// pick char (size 1).
//
// Open question (spec.md §9, preserved verbatim): the guess is made
// from the *caller's* destination lvalue; if the same callstack hosts
// two different destination types, whichever is seen first wins,
// because the guess is cached per-callstack by the CallstackRegistry
// and never re-derived on reuse.
func GuessIntendedMallocType(stack Callstack, oracle TypeOracle, smin, smax int64, constantSize bool) TypedSize {
	elem := "char"
	elemSize := int64(1)
	if t, ok := oracle.PointeeTypeOfAssignment(stack); ok {
		sz := oracle.BytesSizeOf(t)
		if sz > 0 && smin%sz == 0 && smax%sz == 0 {
			elem = t
			elemSize = sz
		}
	}
	ts := TypedSize{MinBytes: smin, MaxBytes: smax, ElemType: elem, ElemSize: elemSize}
	if constantSize && smin == smax && elemSize > 0 && smin%elemSize == 0 {
		ts.NbElems = smin / elemSize
		ts.HasElems = true
	}
	return ts
}

// roundup rounds n up to the next multiple of m; m must be a power of
// two. Lifted verbatim from the teacher's own roundup helper.
func roundup(n, m int64) int64 { return (n + m - 1) &^ (m - 1) }

// sizeClassBits classifies a byte size the way the teacher buckets
// allocation requests into size-class logs, reusing its own
// mathutil.BitLen dependency; used only to pick the AllocStats size
// histogram bucket of a coined base, never to size real memory.
func sizeClassBits(size int64) uint {
	if size <= 0 {
		return 0
	}
	n := int(roundup(size, 8) - 1)
	return uint(mathutil.BitLen(n))
}
