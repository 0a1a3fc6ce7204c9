// Package demomodel is a minimal, in-memory implementation of the
// heap package's consumed collaborator interfaces (AbstractValue,
// Model, OffsetMap, EvalOp) -- the abstract value lattice and memory
// state that spec.md §1 declares out of scope for the engine itself.
// It exists so cmd/heapsim has a small, real implementation to drive
// the engine against (the heap package's own tests use in-package
// fakes instead, since this package imports heap). It is not a sound
// abstract interpretation: values are either a concrete integer
// interval, a base+offset pointer (NULL included, as a pointer to the
// Context's NullBase), or a labelled sentinel marker such as BOTTOM,
// UNINITIALIZED or ESCAPINGADDR; joins of incompatible shapes widen
// to "unknown".
package demomodel

import (
	"fmt"

	"github.com/4144/tis-interpreter/heap"
)

func fmtRange(min, max int64) string { return fmt.Sprintf("[%d,%d]", min, max) }
func fmtPtr(base heap.BaseId) string  { return fmt.Sprintf("&base#%d", base) }

// Value is the demo AbstractValue: exactly one of an integer
// interval, a base pointer, or a sentinel tag.
type Value struct {
	tag   tag
	ival  heap.IntInterval
	base  heap.BaseId
	hasB  bool
	label string // sentinel label, for printing
}

type tag int

const (
	tagUnknown tag = iota
	tagInt
	tagPtr
	tagSentinel
)

func Int(min, max int64) Value    { return Value{tag: tagInt, ival: heap.IntInterval{Min: min, Max: max, Ok: true}} }
func Sentinel(label string) Value { return Value{tag: tagSentinel, label: label} }
func Unknown() Value              { return Value{tag: tagUnknown} }

// NullPtr wraps ctx.NullBase() as a zero-offset pointer value.
func NullPtr(nullBase heap.BaseId) Value {
	return Value{tag: tagPtr, base: nullBase, hasB: true, ival: heap.IntInterval{Min: 0, Max: 0, Ok: true}}
}

// Ptr wraps base as a zero-offset pointer value, the shape a freshly
// returned allocation pointer has.
func Ptr(base heap.BaseId) Value {
	return Value{tag: tagPtr, base: base, hasB: true, ival: heap.IntInterval{Min: 0, Max: 0, Ok: true}}
}

func (v Value) Inject(base heap.BaseId, ival heap.IntInterval) heap.AbstractValue {
	return Value{tag: tagPtr, base: base, hasB: true, ival: ival}
}

// FoldTopsetOk folds over this value's single (base, offsets)
// summary. A NULL pointer is represented as a tagPtr Value wrapping
// the Context's NullBase() (a Kind==Null arena entry), not as the
// tagSentinel "NULL" label -- that label is only used for
// UNINITIALIZED/ESCAPINGADDR markers written into offset-maps, which
// are never folded over as pointer values.
func (v Value) FoldTopsetOk(f func(base heap.BaseId, offsets heap.OffsetSet) bool) bool {
	if v.tag != tagPtr {
		return true
	}
	return f(v.base, offsetSet{lo: v.ival.Min, hi: v.ival.Max})
}

func (v Value) ProjectIval() (heap.IntInterval, bool) {
	if v.tag != tagInt {
		return heap.IntInterval{}, false
	}
	return v.ival, true
}

func (v Value) String() string {
	switch v.tag {
	case tagInt:
		return fmtRange(v.ival.Min, v.ival.Max)
	case tagPtr:
		return fmtPtr(v.base)
	case tagSentinel:
		return v.label
	default:
		return "UNKNOWN"
	}
}

func (v Value) Join(other heap.AbstractValue) heap.AbstractValue {
	o, ok := other.(Value)
	if !ok {
		return Unknown()
	}
	if v.tag != o.tag {
		return Unknown()
	}
	switch v.tag {
	case tagInt:
		return Int(min64(v.ival.Min, o.ival.Min), max64(v.ival.Max, o.ival.Max))
	case tagPtr:
		if v.base == o.base {
			return v
		}
		return Unknown()
	default:
		return v
	}
}

type offsetSet struct{ lo, hi int64 }

func (o offsetSet) Contains(offset int64) bool { return offset >= o.lo && offset <= o.hi }
func (o offsetSet) IsSingletonZero() bool       { return o.lo == 0 && o.hi == 0 }

// OffsetMap is the demo offset-map: a sparse list of (lo, hi, value)
// ranges, last-write-wins on overlap for strong pastes, first-match
// join for weak ones. Good enough to observe UNINITIALIZED vs. a
// concrete byte pattern across a resize or realloc in cmd/heapsim's
// output; not a production merge algorithm.
type OffsetMap struct {
	ranges []rng
}

type rng struct {
	lo, hi int64
	v      Value
}

func (m OffsetMap) Join(other heap.OffsetMap) heap.OffsetMap {
	o, ok := other.(OffsetMap)
	if !ok {
		return m
	}
	out := OffsetMap{ranges: append(append([]rng{}, m.ranges...), o.ranges...)}
	return out
}

// Ops is the demo EvalOp.
type Ops struct{}

func (Ops) CreateIsotropic(sizeBits int64, v heap.AbstractValue) heap.OffsetMap {
	val, _ := v.(Value)
	if sizeBits <= 0 {
		return OffsetMap{}
	}
	return OffsetMap{ranges: []rng{{lo: 0, hi: sizeBits - 1, v: val}}}
}

func (Ops) AddRange(m heap.OffsetMap, loBit, hiBit int64, v heap.AbstractValue, spec heap.RepeatSpec) heap.OffsetMap {
	om, _ := m.(OffsetMap)
	val, _ := v.(Value)
	om.ranges = append(om.ranges, rng{lo: loBit, hi: hiBit, v: val})
	return om
}

func (Ops) CopyOffsetmap(src heap.OffsetMap, loBit, hiBit int64) heap.OffsetMap {
	om, _ := src.(OffsetMap)
	var out OffsetMap
	for _, r := range om.ranges {
		lo, hi := r.lo, r.hi
		if lo < loBit {
			lo = loBit
		}
		if hi > hiBit-1 {
			hi = hiBit - 1
		}
		if lo <= hi {
			out.ranges = append(out.ranges, rng{lo: lo - loBit, hi: hi - loBit, v: r.v})
		}
	}
	return out
}

func (Ops) PasteOffsetmap(src, dst heap.OffsetMap, loBit, hiBit int64, reducing, exact bool) heap.OffsetMap {
	s, _ := src.(OffsetMap)
	d, _ := dst.(OffsetMap)
	if reducing {
		// strong: the pasted range replaces whatever was there.
		var kept []rng
		for _, r := range d.ranges {
			if r.hi < loBit || r.lo >= hiBit {
				kept = append(kept, r)
			}
		}
		d.ranges = kept
	}
	for _, r := range s.ranges {
		d.ranges = append(d.ranges, rng{lo: r.lo + loBit, hi: r.hi + loBit, v: r.v})
	}
	return d
}

func (Ops) WrapPtr(base heap.BaseId, offsets heap.OffsetSet) heap.AbstractValue {
	return Value{tag: tagPtr, base: base, hasB: true, ival: heap.IntInterval{Ok: true}}
}

// State is the demo Model: a plain map from BaseId to OffsetMap.
type State struct {
	m map[heap.BaseId]OffsetMap
}

func NewState() State { return State{m: make(map[heap.BaseId]OffsetMap)} }

func (s State) FindBase(id heap.BaseId) (heap.OffsetMap, bool) {
	om, ok := s.m[id]
	return om, ok
}

func (s State) FindBaseOrDefault(id heap.BaseId) (heap.ModelLookup, heap.OffsetMap) {
	if om, ok := s.m[id]; ok {
		return heap.LookupMap, om
	}
	return heap.LookupBottom, OffsetMap{}
}

func (s State) AddBase(id heap.BaseId, om heap.OffsetMap) heap.Model {
	out := cloneState(s)
	casted, _ := om.(OffsetMap)
	out.m[id] = casted
	return out
}

func (s State) RemoveBase(id heap.BaseId) heap.Model {
	out := cloneState(s)
	delete(out.m, id)
	return out
}

func (s State) Join(other heap.Model) heap.Model {
	o, ok := other.(State)
	if !ok {
		return s
	}
	out := cloneState(s)
	for id, om := range o.m {
		if existing, ok := out.m[id]; ok {
			out.m[id] = existing.Join(om).(OffsetMap)
		} else {
			out.m[id] = om
		}
	}
	return out
}

func (s State) RewriteEscaping(freed map[heap.BaseId]struct{}) heap.Model {
	out := cloneState(s)
	for id, om := range out.m {
		var changed []rng
		for _, r := range om.ranges {
			if r.v.tag == tagPtr && r.v.hasB {
				if _, isFreed := freed[r.v.base]; isFreed {
					r.v = Sentinel("ESCAPINGADDR")
				}
			}
			changed = append(changed, r)
		}
		om.ranges = changed
		out.m[id] = om
	}
	return out
}

func cloneState(s State) State {
	out := NewState()
	for id, om := range s.m {
		out.m[id] = om
	}
	return out
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Scanner implements heap.ReachabilityScanner over State: target is
// reachable from "from" if any range of from's offset-map holds a
// pointer value whose base is target.
type Scanner struct{}

func (Scanner) ReachesFromOtherBase(state heap.Model, target, from heap.BaseId) bool {
	s, ok := state.(State)
	if !ok {
		return false
	}
	om, ok := s.m[from]
	if !ok {
		return false
	}
	for _, r := range om.ranges {
		if r.v.tag == tagPtr && r.v.hasB && r.v.base == target {
			return true
		}
	}
	return false
}

var (
	_ heap.ReachabilityScanner = Scanner{}
	_ heap.AbstractValue       = Value{}
	_ heap.OffsetMap     = OffsetMap{}
	_ heap.EvalOp        = Ops{}
	_ heap.Model         = State{}
)
