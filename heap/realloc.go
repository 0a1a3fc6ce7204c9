package heap

// ReallocMode selects between Frama_C_realloc (Single, a weak
// destination via alloc_by_stack) and Frama_C_realloc_multiple
// (Multiple, a fresh strong destination per source base, spec.md
// §4.9).
type ReallocMode int

const (
	Single ReallocMode = iota
	Multiple
)

// ReallocOutcome is the result of one Realloc call: the destination
// base(s) -- one for Single, one per source for Multiple -- and the
// updated Model.
type ReallocOutcome struct {
	Dests []BaseId
	State Model
}

// allocableBits is the bit length of a base's full addressable range:
// [0, MaxAlloc], i.e. MaxAlloc+1 bits (-1 => 0 bits, a size-0 base).
func allocableBits(b *Base) int64 {
	return b.Validity.MaxAlloc + 1
}

// sizeSureValid is the number of bits a base is *guaranteed* to hold,
// i.e. its MinAlloc+1.
func sizeSureValid(b *Base) int64 {
	return b.Validity.MinAlloc + 1
}

// copyOneSource copies min(source's allocable bits, dest's requested
// bits) bits from offset 0 of src into dest with a weak
// (non-reducing, non-exact) paste, so that when multiple sources
// exist all contributions join (spec.md §4.9 step 3).
func copyOneSource(ops EvalOp, state Model, src, dest BaseId, srcBase, destBase *Base) Model {
	n := srcBase.Validity.MaxAlloc + 1
	if cap := destBase.Validity.MaxAlloc + 1; n > cap {
		n = cap
	}
	if n <= 0 {
		return state
	}
	srcMap, ok := state.FindBase(src)
	if !ok {
		return state
	}
	destMap, ok := state.FindBase(dest)
	if !ok {
		return state
	}
	copied := ops.CopyOffsetmap(srcMap, 0, n)
	pasted := ops.PasteOffsetmap(copied, destMap, 0, n, false /* reducing */, false /* exact */)
	return state.AddBase(dest, pasted)
}

// reallocOneDestination implements the common destination-building
// recipe of spec.md §4.9 steps 1-3 for one destination base against
// one or more source bases:
//
//  1. coin destID of the requested size; add it to state with
//     full-range UNINITIALIZED.
//  2. size_sure_valid = min over sources of size_sure_valid(source),
//     clamped to the destination size; overwrite [0, size_sure_valid)
//     of the destination with bottom so the subsequent weak copies
//     settle to exactly the source contents where all sources are
//     defined.
//  3. for each source, copy into the destination with a weak paste.
func (ctx *Context) reallocOneDestination(ops EvalOp, state Model, destID BaseId, maxValid int64, sources []BaseId, bottom, uninitialized AbstractValue) Model {
	destBase := ctx.Arena.Get(destID)
	state = AddUninitialized(ops, state, destID, allocableBits(destBase), maxValid, bottom, uninitialized)

	sureValid := allocableBits(destBase)
	for _, s := range sources {
		if v := sizeSureValid(ctx.Arena.Get(s)); v < sureValid {
			sureValid = v
		}
	}
	if cap := allocableBits(destBase); sureValid > cap {
		sureValid = cap
	}
	if sureValid > 0 {
		if destMap, ok := state.FindBase(destID); ok {
			destMap = ops.AddRange(destMap, 0, sureValid-1, bottom, RepeatSpec{Repeat: 1, Rel: false})
			state = state.AddBase(destID, destMap)
		}
	}

	for _, s := range sources {
		state = copyOneSource(ops, state, s, destID, ctx.Arena.Get(s), destBase)
	}
	return state
}

// Realloc implements spec.md §4.9's Single and Multiple modes.
//
// Single: one weak destination (via AllocByStack) fed by every
// source. Multiple: one fresh strong destination per source (via
// AllocAbstract, Strong), each fed only by its own source.
//
// In both modes the source bases are then freed as one set: strong
// iff exactly one source base and no source is weak, else weak --
// which is exactly the general Free cardinality rule of spec.md §4.8
// (a single non-weak base has cardinality 1; anything else is > 1).
func (ctx *Context) Realloc(mode ReallocMode, stack Callstack, state Model, ops EvalOp, oracle TypeOracle, maxLevel int, prefix string, sources []BaseId, sizev AbstractValue, bottom, uninitialized AbstractValue) (ReallocOutcome, bool) {
	var dests []BaseId

	switch mode {
	case Single:
		destID, maxValid := ctx.AllocByStack(stack, state, oracle, maxLevel, Weak, prefix, sizev, false)
		state = ctx.reallocOneDestination(ops, state, destID, maxValid, sources, bottom, uninitialized)
		dests = []BaseId{destID}
	case Multiple:
		for _, s := range sources {
			destID, maxValid := ctx.AllocAbstract(stack, oracle, false, prefix, sizev, false)
			state = ctx.reallocOneDestination(ops, state, destID, maxValid, []BaseId{s}, bottom, uninitialized)
			dests = append(dests, destID)
		}
	}

	srcSet := make(map[BaseId]struct{}, len(sources))
	for _, s := range sources {
		srcSet[s] = struct{}{}
	}
	state, strongFree := ctx.Free(srcSet, state)

	return ReallocOutcome{Dests: dests, State: state}, strongFree
}

// TisRealloc implements spec.md §4.9's tis_realloc variant:
//
//   - the size argument must be a concrete non-negative interval,
//     otherwise the call aborts analysis (InvalidRealloc).
//   - if the pointer set excludes NULL and the requested max size is
//     zero, behaves as pure free.
//   - copying from a weak source is unsupported (WeakReallocUnsupported,
//     fatal).
//   - if NULL is among the source set and the minimum requested size
//     is zero, the returned value set includes NULL in addition to the
//     new base (spec.md §9 open question, preserved verbatim and
//     flagged here: this is unconditional once min==0, even though one
//     could argue it should depend on whether NULL was definitely vs.
//     maybe present).
func (ctx *Context) TisRealloc(stack Callstack, state Model, ops EvalOp, oracle TypeOracle, prefix string, fs FreeSet, sizev AbstractValue, bottom, uninitialized AbstractValue) (dest *BaseId, includeNull bool, outState Model, err error) {
	ival, ok := sizev.ProjectIval()
	if !ok || !ival.Ok || ival.Min < 0 {
		return nil, false, state, &HeapError{Kind: InvalidRealloc, Msg: "tis_realloc size is not a concrete non-negative interval"}
	}

	if !fs.Null && ival.Max == 0 {
		newState, _ := ctx.Free(fs.Bases, state)
		return nil, false, newState, nil
	}

	for s := range fs.Bases {
		if ctx.Arena.Get(s).Validity.Weak {
			fatalf(WeakReallocUnsupported, "tis_realloc: copying from weak source %q is not yet implemented", ctx.Arena.Get(s).Name)
		}
	}

	sources := make([]BaseId, 0, len(fs.Bases))
	for s := range fs.Bases {
		sources = append(sources, s)
	}
	destID, maxValid := ctx.AllocAbstract(stack, oracle, false, prefix, sizev, false)
	state = ctx.reallocOneDestination(ops, state, destID, maxValid, sources, bottom, uninitialized)
	state, _ = ctx.Free(fs.Bases, state)

	includeNull = fs.Null && ival.Min == 0
	return &destID, includeNull, state, nil
}
