package heap

// CallstackRegistry maps each truncated callstack to the ordered list
// of bases previously coined at that site (spec.md §3): the reuse
// pool the Allocation Dispatcher walks. New bases are appended, never
// removed or reordered -- monotone growth, see spec.md §5.
type CallstackRegistry struct {
	pools map[string][]BaseId
	// elemGuess records the first-wins element-type guess per
	// callstack key (spec.md §9 open question): once a callstack has
	// produced an ElemType/ElemSize, later calls at the same site
	// reuse that pair instead of re-deriving it, so a site that
	// alternates destination lvalue types is pinned to whichever type
	// was seen first. Everything else about a TypedSize -- MinBytes,
	// MaxBytes, NbElems, HasElems -- is derived from each call's own
	// smin/smax (spec.md §4.1) and is never cached here.
	elemGuess map[string]elemGuess
}

type elemGuess struct {
	ElemType string
	ElemSize int64
}

// NewCallstackRegistry returns an empty registry.
func NewCallstackRegistry() *CallstackRegistry {
	return &CallstackRegistry{
		pools:     make(map[string][]BaseId),
		elemGuess: make(map[string]elemGuess),
	}
}

// Pool returns the reuse pool at stack; it is nil when no base has
// been coined there yet.
func (r *CallstackRegistry) Pool(stack Callstack) []BaseId {
	return r.pools[stack.Key()]
}

// Append adds id to the end of the pool at stack.
func (r *CallstackRegistry) Append(stack Callstack, id BaseId) {
	k := stack.Key()
	r.pools[k] = append(r.pools[k], id)
}

// Len reports how many bases have ever been coined at stack.
func (r *CallstackRegistry) Len(stack Callstack) int {
	return len(r.pools[stack.Key()])
}

// PinnedElemType returns the first-wins (ElemType, ElemSize) pair
// recorded for stack, if any (spec.md §9 open question).
func (r *CallstackRegistry) PinnedElemType(stack Callstack) (string, int64, bool) {
	g, ok := r.elemGuess[stack.Key()]
	return g.ElemType, g.ElemSize, ok
}

// PinTypedSize pins ts.ElemType/ts.ElemSize to whatever was first
// recorded for stack, recording them instead iff stack has not been
// seen before. It never touches ts.MinBytes/MaxBytes/NbElems/HasElems:
// those describe this specific call's own size and must be left to
// the caller to (re)derive from the (possibly now-pinned) element
// size, never inherited from an earlier call at the same site.
func (r *CallstackRegistry) PinTypedSize(stack Callstack, ts TypedSize) TypedSize {
	k := stack.Key()
	if g, ok := r.elemGuess[k]; ok {
		ts.ElemType, ts.ElemSize = g.ElemType, g.ElemSize
		return ts
	}
	r.elemGuess[k] = elemGuess{ElemType: ts.ElemType, ElemSize: ts.ElemSize}
	return ts
}
