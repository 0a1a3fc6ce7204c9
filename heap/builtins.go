package heap

// CacheKind mirrors the c_cacheable field of spec.md §6's builtin
// return contract: whether a call's result can be cached across
// identical (state, args) regardless of callstack, or must be
// recomputed per caller because it depends on the callstack (every
// allocation/realloc builtin, since they memoize into the
// CallstackRegistry).
type CacheKind int

const (
	Cacheable CacheKind = iota
	NoCacheCallers
)

// Result is the {c_values, c_clobbered, c_cacheable, c_from} tuple
// every exposed builtin returns (spec.md §6). c_from is always "None"
// for this engine and so is omitted.
type Result struct {
	Values    []ValueState
	Clobbered map[BaseId]struct{}
	Cacheable CacheKind
}

// Env bundles the collaborators a builtin call needs that are not
// carried by *Context: the current callstack, the abstract-value
// evaluator, the type oracle and the bottom/uninitialized/null
// sentinel values. Registering these names with the analyzer and
// parsing CLI flags into Options is explicitly out of scope (spec.md
// §1); Env is only the argument bundle this package's own dispatch
// functions need.
type Env struct {
	Stack         Callstack
	Ops           EvalOp
	Oracle        TypeOracle
	Bottom        AbstractValue
	Uninitialized AbstractValue
	Null          AbstractValue
	SetErrno      func(Model, int) Model
}

func argCountErr(want, got int) error {
	return &HeapError{Kind: InvalidArgCount, Msg: argCountMsg(want, got)}
}

func argCountMsg(want, got int) string {
	return "expected " + itoa(want) + " argument(s), got " + itoa(got)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// finish wraps destID/maxValid through the Uninitialization Painter
// and the Fallible-Return Wrapper, producing a Result -- the common
// tail of every allocation builtin (spec.md §2's data-flow diagram).
func (ctx *Context) finish(env Env, origState, state Model, destID BaseId, maxValid int64) Result {
	b := ctx.Arena.Get(destID)
	state = AddUninitialized(env.Ops, state, destID, allocableBits(b), maxValid, env.Bottom, env.Uninitialized)
	vs := ctx.Fallible(destID, env.Ops, origState, state, env.Null, env.SetErrno)
	return Result{
		Values:    vs,
		Clobbered: map[BaseId]struct{}{destID: {}},
		Cacheable: NoCacheCallers,
	}
}

// AllocSizeBuiltin implements Frama_C_alloc_size / _weak: args =
// [size]. Always a fresh base.
func (ctx *Context) AllocSizeBuiltin(env Env, state Model, weak bool, args []AbstractValue) (Result, error) {
	if len(args) != 1 {
		return Result{}, argCountErr(1, len(args))
	}
	destID, maxValid := ctx.AllocSize(env.Stack, env.Oracle, weak, "malloc", args[0], true)
	return ctx.finish(env, state, state, destID, maxValid), nil
}

// AllocByStackBuiltin implements Frama_C_alloc_by_stack: args =
// [size]; maxLevel/initialWeak come from the active Options / the
// builtin variant (alloc_by_stack itself always starts Strong per
// spec.md §4.7, the precision ladder is what may coalesce to weak).
func (ctx *Context) AllocByStackBuiltin(env Env, state Model, args []AbstractValue) (Result, error) {
	if len(args) != 1 {
		return Result{}, argCountErr(1, len(args))
	}
	destID, maxValid := ctx.AllocByStack(env.Stack, state, env.Oracle, ctx.Options.MLevel, Strong, "malloc", args[0], true)
	return ctx.finish(env, state, state, destID, maxValid), nil
}

// AllocTmsBuiltin implements Frama_C_alloc_tms / tis_alloc: like
// AllocByStack but keyed off the malloc-plevel option instead of
// mlevel, and starting with the caller-supplied initialWeak.
func (ctx *Context) AllocTmsBuiltin(env Env, state Model, initialWeak Weakness, args []AbstractValue) (Result, error) {
	if len(args) != 1 {
		return Result{}, argCountErr(1, len(args))
	}
	destID, maxValid := ctx.AllocByStack(env.Stack, state, env.Oracle, ctx.Options.MallocPLevel, initialWeak, "tms", args[0], true)
	return ctx.finish(env, state, state, destID, maxValid), nil
}

// TisAllocWeakBuiltin implements the legacy tis_alloc_weak: unlike
// AllocTmsBuiltin, its requested size is not the
// caller-supplied argument but the fixed tis-alloc-weak-size option
// (spec.md §6), and the resulting base always starts weak.
func (ctx *Context) TisAllocWeakBuiltin(env Env, state Model, args []AbstractValue) (Result, error) {
	if len(args) != 1 {
		return Result{}, argCountErr(1, len(args))
	}
	size := fixedSizeValue{bytes: ctx.Options.TisAllocWeakSize}
	destID, maxValid := ctx.AllocByStack(env.Stack, state, env.Oracle, ctx.Options.MallocPLevel, Weak, "tms", size, true)
	return ctx.finish(env, state, state, destID, maxValid), nil
}

// fixedSizeValue is the trivial AbstractValue TisAllocWeakBuiltin
// projects to the tis-alloc-weak-size option, ignoring whatever the
// caller actually passed.
type fixedSizeValue struct{ bytes int64 }

func (v fixedSizeValue) Inject(base BaseId, ival IntInterval) AbstractValue { return v }
func (v fixedSizeValue) FoldTopsetOk(f func(base BaseId, offsets OffsetSet) bool) bool {
	return true
}
func (v fixedSizeValue) ProjectIval() (IntInterval, bool) {
	return IntInterval{Min: v.bytes, Max: v.bytes, Ok: true}, true
}
func (v fixedSizeValue) Join(AbstractValue) AbstractValue { return v }

// FreeBuiltin implements Frama_C_free: args = [ptr]. free(NULL) is a
// no-op returning an empty Values list (modelled as a bottom
// continuation, spec.md §8).
func (ctx *Context) FreeBuiltin(state Model, ptr AbstractValue) (Result, error) {
	fs := ctx.ResolveBasesToFree(ptr)
	if len(fs.Bases) == 0 {
		// free(NULL), or a pointer set with only wrong-free targets:
		// no-op, modelled as a bottom continuation (spec.md §8).
		return Result{Cacheable: Cacheable}, nil
	}
	newState, _ := ctx.Free(fs.Bases, state)
	clobbered := make(map[BaseId]struct{}, len(fs.Bases))
	for id := range fs.Bases {
		clobbered[id] = struct{}{}
	}
	return Result{
		Values:    []ValueState{{State: newState}},
		Clobbered: clobbered,
		Cacheable: Cacheable,
	}, nil
}

// ReallocBuiltin implements Frama_C_realloc / _multiple: args =
// [ptr, size].
func (ctx *Context) ReallocBuiltin(env Env, state Model, mode ReallocMode, args []AbstractValue) (Result, error) {
	if len(args) != 2 {
		return Result{}, argCountErr(2, len(args))
	}
	fs := ctx.ResolveBasesToFree(args[0])
	sources := make([]BaseId, 0, len(fs.Bases))
	for id := range fs.Bases {
		sources = append(sources, id)
	}
	outcome, _ := ctx.Realloc(mode, env.Stack, state, env.Ops, env.Oracle, ctx.Options.MLevel, "realloc", sources, args[1], env.Bottom, env.Uninitialized)

	var values []ValueState
	clobbered := make(map[BaseId]struct{}, len(outcome.Dests))
	for _, d := range outcome.Dests {
		values = append(values, ValueState{
			Value: env.Ops.WrapPtr(d, singletonZeroOffsets{}),
			State: outcome.State,
		})
		clobbered[d] = struct{}{}
	}
	return Result{Values: values, Clobbered: clobbered, Cacheable: NoCacheCallers}, nil
}

// TisReallocBuiltin implements tis_realloc: args = [ptr, size].
func (ctx *Context) TisReallocBuiltin(env Env, state Model, args []AbstractValue) (Result, error) {
	if len(args) != 2 {
		return Result{}, argCountErr(2, len(args))
	}
	fs := ctx.ResolveBasesToFree(args[0])
	dest, includeNull, newState, err := ctx.TisRealloc(env.Stack, state, env.Ops, env.Oracle, "realloc", fs, args[1], env.Bottom, env.Uninitialized)
	if err != nil {
		return Result{}, err
	}

	var values []ValueState
	clobbered := map[BaseId]struct{}{}
	if dest != nil {
		values = append(values, ValueState{Value: env.Ops.WrapPtr(*dest, singletonZeroOffsets{}), State: newState})
		clobbered[*dest] = struct{}{}
	}
	if includeNull || dest == nil {
		values = append(values, ValueState{Value: env.Null, State: newState})
	}
	for id := range fs.Bases {
		clobbered[id] = struct{}{}
	}
	return Result{Values: values, Clobbered: clobbered, Cacheable: NoCacheCallers}, nil
}

// CheckLeakBuiltin implements Frama_C_check_leak: args = [].
func (ctx *Context) CheckLeakBuiltin(state Model, scanner ReachabilityScanner) []LeakReport {
	return ctx.CheckLeaks(state, scanner)
}
