package heap

// FreeSet is the resolved set of bases Free should act on, plus
// whether NULL was among the pointer value's summaries (spec.md §4.8).
type FreeSet struct {
	Bases       map[BaseId]struct{}
	Null        bool
	WrongFrees  int // count of "Wrong free" diagnostics emitted
}

// ResolveBasesToFree folds over ptr's (base, offset) summaries
// (spec.md §4.8):
//
//   - a base that is neither allocated nor NULL, or whose offset set
//     does not contain zero, emits a "Wrong free" diagnostic and is
//     otherwise skipped;
//   - every base whose offset set contains zero and that is allocated
//     is collected; Null is set if NULL was among the summaries.
func (ctx *Context) ResolveBasesToFree(ptr AbstractValue) FreeSet {
	fs := FreeSet{Bases: make(map[BaseId]struct{})}
	ptr.FoldTopsetOk(func(base BaseId, offsets OffsetSet) bool {
		b := ctx.Arena.Get(base)
		if b.Kind == Null {
			fs.Null = true
			return true
		}
		if b.Kind != Allocated || !offsets.Contains(0) {
			fs.WrongFrees++
			ctx.tracef("free: wrong free of %q (allocated=%v, contains-zero=%v)",
				b.Name, b.Kind == Allocated, offsets.Contains(0))
			return true
		}
		fs.Bases[base] = struct{}{}
		return true
	})
	return fs
}

// cardinality implements spec.md §4.8's counting rule: each base
// counts as 1, except weak bases which count as 2 -- so any set that
// contains a weak base, or more than one base at all, forces a weak
// update (strong iff card <= 1).
func (ctx *Context) cardinality(bases map[BaseId]struct{}) int {
	card := 0
	for id := range bases {
		if ctx.Arena.Get(id).Validity.Weak {
			card += 2
		} else {
			card++
		}
	}
	return card
}

// Free implements spec.md §4.8: strong is decided by cardinality
// (strong iff card <= 1); if strong, each base's binding is removed
// from state. In both cases every location reference whose target is
// a freed base is rewritten to ESCAPINGADDR.
func (ctx *Context) Free(bases map[BaseId]struct{}, state Model) (Model, bool) {
	strong := ctx.cardinality(bases) <= 1

	if strong {
		for id := range bases {
			state = state.RemoveBase(id)
			ctx.unmarkMalloced(id)
			ctx.Stats.FreedHard.Inc(1)
		}
	} else {
		for range bases {
			ctx.Stats.FreedWeak.Inc(1)
		}
	}
	state = state.RewriteEscaping(bases)
	ctx.tracef("free: %d base(s), strong=%v", len(bases), strong)
	return state, strong
}
