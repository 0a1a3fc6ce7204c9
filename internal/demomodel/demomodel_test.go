package demomodel

import (
	"testing"

	"github.com/4144/tis-interpreter/heap"
)

func TestNullPtrFoldsOverNullBase(t *testing.T) {
	nullBase := heap.BaseId(7)
	v := NullPtr(nullBase)
	var seen heap.BaseId
	var sawAny bool
	v.FoldTopsetOk(func(base heap.BaseId, offsets heap.OffsetSet) bool {
		seen = base
		sawAny = true
		if !offsets.IsSingletonZero() {
			t.Errorf("NullPtr's offsets are not a zero singleton")
		}
		return true
	})
	if !sawAny || seen != nullBase {
		t.Fatalf("FoldTopsetOk over NullPtr did not report base %v", nullBase)
	}
}

func TestIntValueDoesNotFold(t *testing.T) {
	v := Int(1, 10)
	called := false
	v.FoldTopsetOk(func(base heap.BaseId, offsets heap.OffsetSet) bool {
		called = true
		return true
	})
	if called {
		t.Fatalf("FoldTopsetOk invoked the callback for a non-pointer value")
	}
}

func TestJoinWidensIntInterval(t *testing.T) {
	a := Int(0, 4)
	b := Int(-2, 2)
	joined := a.Join(b).(Value)
	ival, ok := joined.ProjectIval()
	if !ok {
		t.Fatalf("joined value does not project to an interval")
	}
	if ival.Min != -2 || ival.Max != 4 {
		t.Fatalf("Join([0,4],[-2,2]) = [%d,%d], want [-2,4]", ival.Min, ival.Max)
	}
}

func TestJoinOfDifferentBasesGoesUnknown(t *testing.T) {
	a := Ptr(heap.BaseId(1))
	b := Ptr(heap.BaseId(2))
	joined := a.Join(b).(Value)
	if joined.String() != "UNKNOWN" {
		t.Fatalf("Join of distinct bases = %q, want UNKNOWN", joined.String())
	}
}

func TestStateAddFindRemoveRoundtrip(t *testing.T) {
	s := NewState()
	id := heap.BaseId(3)
	om := OffsetMap{}

	next := s.AddBase(id, om).(State)
	if _, ok := next.FindBase(id); !ok {
		t.Fatalf("FindBase after AddBase reported ok=false")
	}
	removed := next.RemoveBase(id).(State)
	if _, ok := removed.FindBase(id); ok {
		t.Fatalf("FindBase after RemoveBase reported ok=true")
	}
	// the original state must be untouched (AddBase/RemoveBase are
	// copy-on-write, not in-place mutation).
	if _, ok := s.FindBase(id); ok {
		t.Fatalf("AddBase mutated the receiver in place")
	}
}

func TestRewriteEscapingMarksPointersToFreedBases(t *testing.T) {
	freed := heap.BaseId(9)
	holder := heap.BaseId(1)

	ops := Ops{}
	var m heap.OffsetMap = OffsetMap{}
	m = ops.AddRange(m, 0, 63, Ptr(freed), heap.RepeatSpec{Repeat: 1})

	s := NewState().AddBase(holder, m).(State)
	rewritten := s.RewriteEscaping(map[heap.BaseId]struct{}{freed: {}}).(State)

	om, ok := rewritten.FindBase(holder)
	if !ok {
		t.Fatalf("RewriteEscaping dropped the holder base")
	}
	rm := om.(OffsetMap)
	if len(rm.ranges) != 1 || rm.ranges[0].v.tag != tagSentinel || rm.ranges[0].v.label != "ESCAPINGADDR" {
		t.Fatalf("RewriteEscaping did not mark the pointer to the freed base: %+v", rm.ranges)
	}
}

func TestScannerReachesFromOtherBase(t *testing.T) {
	target := heap.BaseId(5)
	from := heap.BaseId(1)

	ops := Ops{}
	var m heap.OffsetMap = OffsetMap{}
	m = ops.AddRange(m, 0, 63, Ptr(target), heap.RepeatSpec{Repeat: 1})
	s := NewState().AddBase(from, m).(State)

	var scanner Scanner
	if !scanner.ReachesFromOtherBase(s, target, from) {
		t.Fatalf("ReachesFromOtherBase did not find the pointer planted in %v", from)
	}
	if scanner.ReachesFromOtherBase(s, target, heap.BaseId(99)) {
		t.Fatalf("ReachesFromOtherBase reported reachability from an unbound base")
	}
}
