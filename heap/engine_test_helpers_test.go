package heap

// Minimal fakes for the collaborator interfaces this package consumes
// (AbstractValue, Model, OffsetMap, EvalOp, TypeOracle), self-contained
// the way the teacher's all_test.go defines its own small test helpers
// (caller, dbg, TODO) rather than pulling in another package.

type fakeVal struct {
	isInt bool
	ival  IntInterval
	isPtr bool
	base  BaseId
	// label distinguishes otherwise-opaque sentinel values (BOTTOM,
	// UNINITIALIZED, NULL) in offset-map content so tests can tell them
	// apart without a real value domain.
	label string
}

func fakeInt(min, max int64) fakeVal { return fakeVal{isInt: true, ival: IntInterval{Min: min, Max: max, Ok: true}} }
func fakePtr(base BaseId) fakeVal    { return fakeVal{isPtr: true, base: base} }

func (v fakeVal) Inject(base BaseId, ival IntInterval) AbstractValue { return fakePtr(base) }

func (v fakeVal) FoldTopsetOk(f func(base BaseId, offsets OffsetSet) bool) bool {
	if !v.isPtr {
		return true
	}
	return f(v.base, fakeOffsets{zero: true})
}

func (v fakeVal) ProjectIval() (IntInterval, bool) {
	if !v.isInt {
		return IntInterval{}, false
	}
	return v.ival, true
}

func (v fakeVal) Join(other AbstractValue) AbstractValue {
	o, ok := other.(fakeVal)
	if !ok {
		return v
	}
	if v.isInt && o.isInt {
		lo, hi := v.ival.Min, v.ival.Max
		if o.ival.Min < lo {
			lo = o.ival.Min
		}
		if o.ival.Max > hi {
			hi = o.ival.Max
		}
		return fakeInt(lo, hi)
	}
	return v
}

type fakeOffsets struct{ zero bool }

func (o fakeOffsets) Contains(offset int64) bool { return offset == 0 && o.zero }
func (o fakeOffsets) IsSingletonZero() bool      { return o.zero }

type fakeOffsetMap struct {
	// label is a coarse marker of what was last written: a sentinel's
	// label (see fakeValLabel), "data", or a test-chosen source label;
	// joins and weak pastes concatenate labels. Good enough to assert
	// realloc copied something without modelling real bytes.
	label string
}

func (m fakeOffsetMap) Join(other OffsetMap) OffsetMap {
	o, ok := other.(fakeOffsetMap)
	if !ok || o.label == "" {
		return m
	}
	if m.label == "" {
		return o
	}
	return fakeOffsetMap{label: m.label + "+" + o.label}
}

type fakeOps struct{}

func (fakeOps) CreateIsotropic(sizeBits int64, v AbstractValue) OffsetMap {
	return fakeOffsetMap{label: fakeValLabel(v)}
}

func (fakeOps) AddRange(m OffsetMap, loBit, hiBit int64, v AbstractValue, spec RepeatSpec) OffsetMap {
	return fakeOffsetMap{label: fakeValLabel(v)}
}

// fakeValLabel renders v's identity into the coarse marker
// fakeOffsetMap carries, so tests can assert which sentinel (or data)
// a range was last painted with.
func fakeValLabel(v AbstractValue) string {
	fv, ok := v.(fakeVal)
	if !ok {
		return "data"
	}
	if fv.isInt || fv.isPtr {
		return "data"
	}
	if fv.label != "" {
		return fv.label
	}
	return "uninit"
}

func (fakeOps) CopyOffsetmap(src OffsetMap, loBit, hiBit int64) OffsetMap {
	s, _ := src.(fakeOffsetMap)
	return s
}

func (fakeOps) PasteOffsetmap(src, dst OffsetMap, loBit, hiBit int64, reducing, exact bool) OffsetMap {
	s, _ := src.(fakeOffsetMap)
	d, _ := dst.(fakeOffsetMap)
	if reducing || d.label == "" {
		return s
	}
	return fakeOffsetMap{label: d.label + "|" + s.label}
}

func (fakeOps) WrapPtr(base BaseId, offsets OffsetSet) AbstractValue { return fakePtr(base) }

type fakeState struct {
	m map[BaseId]fakeOffsetMap
}

func newFakeState() fakeState { return fakeState{m: make(map[BaseId]fakeOffsetMap)} }

func (s fakeState) FindBase(id BaseId) (OffsetMap, bool) {
	om, ok := s.m[id]
	return om, ok
}

func (s fakeState) FindBaseOrDefault(id BaseId) (ModelLookup, OffsetMap) {
	if om, ok := s.m[id]; ok {
		return LookupMap, om
	}
	return LookupBottom, fakeOffsetMap{}
}

func (s fakeState) clone() fakeState {
	out := newFakeState()
	for k, v := range s.m {
		out.m[k] = v
	}
	return out
}

func (s fakeState) AddBase(id BaseId, om OffsetMap) Model {
	out := s.clone()
	casted, _ := om.(fakeOffsetMap)
	out.m[id] = casted
	return out
}

func (s fakeState) RemoveBase(id BaseId) Model {
	out := s.clone()
	delete(out.m, id)
	return out
}

func (s fakeState) Join(other Model) Model {
	o, ok := other.(fakeState)
	if !ok {
		return s
	}
	out := s.clone()
	for id, om := range o.m {
		out.m[id] = om
	}
	return out
}

func (s fakeState) RewriteEscaping(freed map[BaseId]struct{}) Model {
	// the demo OffsetMap carries no pointer payload to rewrite; real
	// escaping rewrite is exercised via demomodel/integration tests.
	return s
}

type fakeOracle struct {
	elem     string
	elemSize int64
	hasElem  bool
	max      int64
}

func (o fakeOracle) BytesSizeOf(elemType string) int64 {
	if elemType == o.elem {
		return o.elemSize
	}
	return 1
}

func (o fakeOracle) PointeeTypeOfAssignment(stack Callstack) (string, bool) {
	return o.elem, o.hasElem
}

func (o fakeOracle) MaxByteSize() int64 { return o.max }

func testStack(fn string, line int) Callstack {
	return Callstack{{Func: fn, Line: line}}
}
