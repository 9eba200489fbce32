package capsule

import "sync/atomic"

// strongRef is a manually-managed strong reference count, the Go
// realization of Rust's deterministic Arc strong-count used by
// Shared[T] (spec's ArcAutoFreePointer). WeakProviderHandle carries no
// count of its own (provider.go). Go has no
// deterministic destructor, so unlike Arc, nothing decrements this
// count automatically when a clone merely goes out of scope — callers
// that intentionally give up a handle call release(); the lifetime
// guard (lifetime.go) uses the count that remains after its own
// bookkeeping release to detect what a caller forgot to give up.
type strongRef struct {
	count *int32
}

func newStrongRef() strongRef {
	c := new(int32)
	*c = 1
	return strongRef{count: c}
}

func (r strongRef) clone() strongRef {
	atomic.AddInt32(r.count, 1)
	return r
}

// release decrements the count and returns the value remaining after
// the decrement.
func (r strongRef) release() int32 {
	return atomic.AddInt32(r.count, -1)
}

func (r strongRef) strong() int32 {
	return atomic.LoadInt32(r.count)
}
