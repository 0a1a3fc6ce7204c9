package heap

// ReachabilityScanner is the minimal capability the Leak Check needs
// from the Model/OffsetMap collaborators: whether the offset-map that
// belongs to `from` in state contains a pointer into `target`. The
// real implementation lives alongside Model; this
// package only orchestrates the fold (spec.md §4.10).
type ReachabilityScanner interface {
	ReachesFromOtherBase(state Model, target BaseId, from BaseId) bool
}

// LeakReport names one base found unreachable.
type LeakReport struct {
	Base BaseId
	Name string
}

// CheckLeaks implements spec.md §4.10: for each currently registered
// "malloced" base b, decide whether b is reachable from any
// offset-map of any *other* base in state. A base reachable from none
// is reported as a leak.
//
// Only the offset-maps of the other bases in ctx.Malloced are
// scanned; a pointer held solely by a non-malloced base (a variable,
// for instance) does not count as reaching b.
//
// This is O(bases x state-size) and, like the source, does not detect
// cycles among malloced bases: two bases that only reference each
// other, and nothing else, are each "reachable from an other base"
// and so neither is reported, even though both are garbage. This
// limitation is inherited from spec.md §4.10 and is not fixed here.
func (ctx *Context) CheckLeaks(state Model, scanner ReachabilityScanner) []LeakReport {
	var leaks []LeakReport
	for b := range ctx.Malloced {
		reachable := false
		for other := range ctx.Malloced {
			if other == b {
				continue
			}
			if scanner.ReachesFromOtherBase(state, b, other) {
				reachable = true
				break
			}
		}
		if !reachable {
			leaks = append(leaks, LeakReport{Base: b, Name: ctx.Arena.Get(b).Name})
		}
	}
	return leaks
}
