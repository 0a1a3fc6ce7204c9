package heap

// This file declares the collaborator interfaces the engine consumes
// but does not implement (spec.md §1, §6): the abstract value
// lattice, the abstract memory Model, offset-maps, the small set of
// eval operations used to move bytes between bases, the callstack
// oracle and the C type oracle. Implementing the value domain itself
// is explicitly out of scope; these interfaces exist so the engine in
// this package can be built, tested and driven (see cmd/heapsim)
// without that implementation.

// AbstractValue is the opaque value lattice V of spec.md §6.
type AbstractValue interface {
	// Inject builds a value denoting "base + ival" for an arbitrary
	// integer interval ival.
	Inject(base BaseId, ival IntInterval) AbstractValue
	// FoldTopsetOk folds f over every (base, offset-set) summary the
	// value denotes, short-circuiting (returning false from f stops
	// the fold) the way the source's Not_found/Exit exceptions did.
	FoldTopsetOk(f func(base BaseId, offsets OffsetSet) bool) bool
	// ProjectIval projects the value to an integer interval, ok=false
	// if the value cannot be so projected.
	ProjectIval() (IntInterval, bool)
	Join(AbstractValue) AbstractValue
}

// IntInterval is a closed integer interval [Min, Max]. Ok is false
// when the abstract value could not be projected to any interval at
// all (see ExtractSize).
type IntInterval struct {
	Min, Max int64
	Ok       bool
}

// OffsetSet is the set of bit offsets a pointer value may carry
// relative to its base. Contains(0) decides whether a pointer value
// aims at the start of its base, which Free requires.
type OffsetSet interface {
	Contains(offset int64) bool
	IsSingletonZero() bool
}

// ModelLookup is the result of Model.FindBaseOrDefault: the queried
// base may be unbound (Bottom, e.g. on a dead path), Top (nothing is
// known), or bound to a concrete offset-map.
type ModelLookup int

const (
	LookupBottom ModelLookup = iota
	LookupTop
	LookupMap
)

// Model is the abstract memory state: spec.md §3's opaque AbstractState.
type Model interface {
	FindBase(BaseId) (OffsetMap, bool)
	FindBaseOrDefault(BaseId) (ModelLookup, OffsetMap)
	AddBase(BaseId, OffsetMap) Model
	RemoveBase(BaseId) Model
	Join(Model) Model
	// RewriteEscaping rewrites every location reference to freed into
	// the ESCAPINGADDR marker, across every base's offset-map.
	RewriteEscaping(freed map[BaseId]struct{}) Model
}

// OffsetMap is the per-base content map the engine paints and pastes.
type OffsetMap interface {
	Join(OffsetMap) OffsetMap
}

// RepeatSpec names how a single written value repeats across a
// range, and whether it denotes a relative (pointer-like) quantity;
// mirrors OffsetMap.add's (v, repeat, rel) triple of spec.md §6.
type RepeatSpec struct {
	Repeat int64
	Rel    bool
}

// EvalOp is the small set of evaluator-level operations the engine
// needs to move bytes between bases (spec.md §6).
type EvalOp interface {
	CreateIsotropic(sizeBits int64, v AbstractValue) OffsetMap
	AddRange(m OffsetMap, loBit, hiBit int64, v AbstractValue, spec RepeatSpec) OffsetMap
	CopyOffsetmap(src OffsetMap, loBit, hiBit int64) OffsetMap
	// PasteOffsetmap writes src into dst over [loBit, hiBit). reducing
	// selects a strong (overwrite) update; reducing=false is a weak
	// (join) update, the kind the Realloc Engine uses so that
	// multiple sources pasted into one destination all contribute.
	// exact additionally asserts the destination range was fully
	// defined before the paste.
	PasteOffsetmap(src OffsetMap, dst OffsetMap, loBit, hiBit int64, reducing, exact bool) OffsetMap
	WrapPtr(base BaseId, offsets OffsetSet) AbstractValue
}

// CallSite is one (function, call-site) pair of a Callstack.
type CallSite struct {
	Func string
	Line int
}

// CallstackOracle returns the chain of callsites the analyzer is
// currently evaluating, outermost first.
type CallstackOracle interface {
	CurrentCallstack() Callstack
}

// WrapperSet answers whether a function name is configured as a
// "malloc wrapper" whose frame is stripped during truncation
// (spec.md §4.4, the malloc-functions option).
type WrapperSet interface {
	IsWrapper(fn string) bool
}

// TypeOracle is the C type system the engine consults to guess an
// element type and compute sizes (spec.md §4.1, §6). See
// internal/typeoracle for a concrete (Go-hosted, demo-only) adapter.
type TypeOracle interface {
	// BytesSizeOf returns sizeof(elemType) in bytes.
	BytesSizeOf(elemType string) int64
	// PointeeTypeOfAssignment inspects the current call site; if it is
	// an assignment "lv = call(...)" whose lvalue has pointer type T*
	// with T non-void, returns (T, true).
	PointeeTypeOfAssignment(stack Callstack) (elemType string, ok bool)
	MaxByteSize() int64
}
