package heap

// Weakness selects whether a freshly coined base starts life strong
// or weak (the alloc_by_stack "initial_weak" parameter, spec.md §4.7).
type Weakness int

const (
	Strong Weakness = iota
	Weak
)

// AllocByStack implements the precision ladder of spec.md §4.7.
//
// Let stack := CallStackNoWrappers(...); pool := registry[stack].
// Walking pool left to right, counting visited entries in nb:
//
//   - if an entry b is not currently bound in state (freed, or never
//     materialized on this path): reuse b via the Validity Updater,
//     with makeWeak = (initialWeak == Weak).
//   - if b is bound and nb == maxLevel: promote b to weak via the
//     Validity Updater with makeWeak = true regardless of initialWeak,
//     and return it.
//   - otherwise advance.
//
// If the pool is exhausted without returning, the new base's index
// (its position in registry[stack], before appending) decides its
// weakness: the first maxLevel distinct bases at a callstack are
// strong (subject to initialWeak); the (maxLevel+1)-th is coined weak
// directly, so that every call thereafter finds it already bound and
// takes the nb==maxLevel coalesce branch above, onto the very same
// base, rather than strong-then-promote-on-next-visit.
//
// Invariant: for each truncated callstack, at most maxLevel+1 distinct
// bases ever appear; the (maxLevel+1)-th and beyond are coalesced
// into the same weak base.
func (ctx *Context) AllocByStack(stack Callstack, state Model, oracle TypeOracle, maxLevel int, initialWeak Weakness, prefix string, sizev AbstractValue, constantSize bool) (BaseId, int64) {
	stack = CallStackNoWrappers(stack, ctx.Options.Wrappers())
	pool := ctx.Registry.Pool(stack)

	for nb, b := range pool {
		if _, bound := state.FindBase(b); !bound {
			maxValid := ctx.UpdateVariableValidity(b, sizev, initialWeak == Weak)
			ctx.markMalloced(b)
			ctx.Stats.Reused.Inc(1)
			ctx.tracef("alloc_by_stack reuse %s at nb=%d", ctx.Arena.Get(b).Name, nb)
			return b, maxValid
		}
		if nb == maxLevel {
			maxValid := ctx.UpdateVariableValidity(b, sizev, true)
			ctx.tracef("alloc_by_stack coalesce %s at nb=%d (max_level=%d)", ctx.Arena.Get(b).Name, nb, maxLevel)
			return b, maxValid
		}
	}

	idx := ctx.Registry.Len(stack)
	weak := initialWeak == Weak || idx >= maxLevel
	id, maxValid := ctx.AllocAbstract(stack, oracle, weak, prefix, sizev, constantSize)
	ctx.Registry.Append(stack, id)
	return id, maxValid
}

// AllocSize implements spec.md §4.7's alloc_size: no callstack
// memoization, a fresh base every visit.
func (ctx *Context) AllocSize(stack Callstack, oracle TypeOracle, weak bool, prefix string, sizev AbstractValue, constantSize bool) (BaseId, int64) {
	return ctx.AllocAbstract(stack, oracle, weak, prefix, sizev, constantSize)
}
