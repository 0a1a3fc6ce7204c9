package heap

import "fmt"

// ErrorKind enumerates the error kinds of spec.md §7.
type ErrorKind int

const (
	// InvalidArgCount: a builtin was called with the wrong arity; the
	// analysis path is aborted.
	InvalidArgCount ErrorKind = iota
	// InvalidFree: the pointer refers to a non-allocated, non-NULL
	// base or a non-zero offset. A diagnostic is emitted; valid
	// sub-bases in the same pointer set still get freed.
	InvalidFree
	// InvalidRealloc: a non-integer size, a negative minimum size, or
	// a read from an invalid source; tis_realloc aborts the current
	// analysis path.
	InvalidRealloc
	// WeakReallocUnsupported: tis_realloc was asked to copy from a
	// weak source, a "not yet implemented" fatal.
	WeakReallocUnsupported
	// InvariantViolation: the Validity Updater was called on a base
	// that is not Allocated with Variable validity; a fatal assertion.
	InvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgCount:
		return "InvalidArgCount"
	case InvalidFree:
		return "InvalidFree"
	case InvalidRealloc:
		return "InvalidRealloc"
	case WeakReallocUnsupported:
		return "WeakReallocUnsupported"
	case InvariantViolation:
		return "InvariantViolation"
	default:
		return "ErrorKind(?)"
	}
}

// HeapError is the error type every fallible engine operation
// returns, in the manner of the teacher returning a plain `error`
// from Malloc/Free/Realloc rather than a hierarchy of exported error
// types (see memory.go).
type HeapError struct {
	Kind ErrorKind
	Msg  string
	Base *BaseId
}

func (e *HeapError) Error() string {
	if e.Base != nil {
		return fmt.Sprintf("%s: %s (base %d)", e.Kind, e.Msg, *e.Base)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// fatalf panics with a HeapError, mirroring the teacher's own
// panic("invalid malloc size") for a caller-contract violation that
// is not a recoverable runtime condition (see Malloc in memory.go).
func fatalf(kind ErrorKind, format string, args ...interface{}) {
	panic(&HeapError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}
