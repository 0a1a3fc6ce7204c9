package heap

import "fmt"

// AllocAbstract mints a fresh symbolic base and returns it together
// with the maximum valid bit offset to paint as UNINITIALIZED
// (spec.md §4.2).
//
//   - sizev is projected to a TypedSize via Size Inference.
//   - the C type is a scalar T if nb_elems == 1, an array T[n] if
//     nb_elems = n > 1, or an unsized array T[] if unknown or weak.
//   - the name is derived from prefix, the innermost caller name and
//     the call-site line, suffixed "_w" once weak.
//   - bit bounds are minAlloc = 8*smin - 1, maxAlloc = 8*smax - 1,
//     both possibly -1 for a size-0 request.
//
// AllocAbstract also registers the returned BaseId in ctx.Malloced
// (globally "malloced"); appending it to the CallstackRegistry pool is
// left to the caller (AllocByStack).
func (ctx *Context) AllocAbstract(stack Callstack, oracle TypeOracle, weak bool, prefix string, sizev AbstractValue, constantSize bool) (BaseId, int64) {
	smin, smax := ExtractSize(sizev, ctx.Options.MaxByteSize)
	ts := GuessIntendedMallocType(stack, oracle, smin, smax, constantSize)
	ts = ctx.Registry.PinTypedSize(stack, ts)
	// nb_elems depends on *this* call's smin/smax, even once ElemType/
	// ElemSize were pinned by an earlier, differently-sized call at the
	// same site (spec.md §4.1, §9 open question).
	ts.NbElems, ts.HasElems = 0, false
	if constantSize && smin == smax && ts.ElemSize > 0 && smin%ts.ElemSize == 0 {
		ts.NbElems = smin / ts.ElemSize
		ts.HasElems = true
	}

	typ := CType{Elem: ts.ElemType, ElemSize: ts.ElemSize}
	switch {
	case ts.HasElems && ts.NbElems == 1:
		typ.Kind = Scalar
	case ts.HasElems && ts.NbElems > 1 && !weak:
		typ.Kind = Array
		typ.NbElems = ts.NbElems
	default:
		typ.Kind = UnsizedArray
	}

	idx := ctx.Registry.Len(stack)
	name := baseName(prefix, stack, idx, weak)

	minAlloc, maxAlloc := bitBounds(smin, smax)
	b := Base{
		Name:     name,
		Kind:     Allocated,
		Validity: VariableValidity(weak, minAlloc, maxAlloc),
		Typ:      typ,
	}
	id := ctx.Arena.New(b)
	ctx.markMalloced(id)
	ctx.Stats.recordCoined(smax)
	ctx.tracef("alloc_abstract(%s) -> %s [%d,%d] weak=%v", prefix, name, minAlloc, maxAlloc, weak)
	return id, maxAlloc
}

// bitBounds converts a byte interval to the bit-offset validity
// bounds of spec.md §4.2: hi = -1 means size 0.
func bitBounds(smin, smax int64) (minAlloc, maxAlloc int64) {
	minAlloc = 8*smin - 1
	maxAlloc = 8*smax - 1
	return minAlloc, maxAlloc
}

// baseName derives "__prefix_caller_L<line>#<idx>" (or "_w" suffixed
// if weak), matching spec.md §4.2's "prefix + caller + line-number"
// recipe. idx is this base's position in its callstack's reuse pool
// (spec.md §8 scenario 2: "__malloc_L#0, __malloc_L#1, __malloc_L_w#2"),
// disambiguating repeated mintings at one callsite.
func baseName(prefix string, stack Callstack, idx int, weak bool) string {
	caller := "top"
	line := 0
	if top, ok := stack.Top(); ok {
		caller = top.Func
		line = top.Line
	}
	name := fmt.Sprintf("__%s_%s_L%d", prefix, caller, line)
	if weak {
		name += "_w"
	}
	name += fmt.Sprintf("#%d", idx)
	return name
}

// markWeak inserts exactly one "_w" segment into name, just before
// the trailing "#<idx>" disambiguator, the rename spec.md §4.3
// requires on strong->weak promotion. Idempotent: calling it on an
// already-weak name is a no-op.
func markWeak(name string) string {
	if hasWeakSuffix(name) {
		return name
	}
	if i := lastIndexByte(name, '#'); i >= 0 {
		return name[:i] + "_w" + name[i:]
	}
	return name + "_w"
}

func hasWeakSuffix(name string) bool {
	i := lastIndexByte(name, '#')
	if i < 0 {
		i = len(name)
	}
	return i >= 2 && name[i-2:i] == "_w"
}

func lastIndexByte(s string, c byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == c {
			return i
		}
	}
	return -1
}
