package heap

import "strings"

// Callstack is an ordered list of (function, call-site) pairs,
// outermost first (spec.md §3).
type Callstack []CallSite

// Key renders the callstack into the stable string key the
// CallstackRegistry indexes by. Two callstacks with the same frames
// in the same order always produce the same key.
func (s Callstack) Key() string {
	var b strings.Builder
	for i, f := range s {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(f.Func)
		b.WriteByte(':')
		writeInt(&b, f.Line)
	}
	return b.String()
}

func writeInt(b *strings.Builder, n int) {
	if n < 0 {
		b.WriteByte('-')
		n = -n
	}
	if n == 0 {
		b.WriteByte('0')
		return
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	b.Write(digits[i:])
}

// Top returns the innermost (current) call site, ok=false if stack is
// empty.
func (s Callstack) Top() (CallSite, bool) {
	if len(s) == 0 {
		return CallSite{}, false
	}
	return s[len(s)-1], true
}

// CallStackNoWrappers implements spec.md §4.4: while the stack has at
// least two frames and both the top function and its immediate
// caller are configured malloc wrappers, drop the top frame. The
// stack is never reduced to empty.
func CallStackNoWrappers(stack Callstack, wrappers WrapperSet) Callstack {
	s := stack
	for len(s) >= 2 {
		top := s[len(s)-1]
		caller := s[len(s)-2]
		if !wrappers.IsWrapper(top.Func) || !wrappers.IsWrapper(caller.Func) {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// staticWrapperSet is the simplest WrapperSet: a fixed name set, the
// shape of the malloc-functions option (spec.md §6).
type staticWrapperSet map[string]struct{}

// NewWrapperSet builds a WrapperSet from the malloc-functions option.
func NewWrapperSet(names ...string) WrapperSet {
	s := make(staticWrapperSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s staticWrapperSet) IsWrapper(fn string) bool {
	_, ok := s[fn]
	return ok
}
