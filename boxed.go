package capsule

import "runtime"

// boxedContext is the Go realization of AutoFreePointer: an
// ownership-erased heap cell carrying its own destructor. It erases a
// producer closure's captured context into the uniform slot an
// untypedFn stores alongside its trampoline. Go's garbage collector
// already reclaims the backing allocation, so destroy is not required
// for memory safety; it lets resources a context owns beyond raw memory
// (an open handle, a registered plugin callback) be released by an
// explicit Close rather than on GC timing. The container's own
// registrations create boxes without a destructor and never call Close
// on them.
type boxedContext struct {
	value   any
	destroy func()
}

func newBoxedContext(value any) *boxedContext {
	return &boxedContext{value: value}
}

func newBoxedContextWithDestructor(value any, destroy func()) *boxedContext {
	return &boxedContext{value: value, destroy: destroy}
}

func (b *boxedContext) Close() {
	if b == nil || b.destroy == nil {
		return
	}
	d := b.destroy
	b.destroy = nil
	d()
}

// Shared is the Go realization of ArcAutoFreePointer: a reference
// -counted handle to a single instance, used for producers registered
// via RegisterShared. Cloning increments the strong count; the
// provider's shared-instance slot holds exactly one strong reference of
// its own, released when the provider is closed (lifetime.go).
type Shared[T any] struct {
	ptr  *T
	ref  strongRef
	drop *byte
}

// NewShared allocates a new shared instance with strong count 1. This
// is the constructor user factories passed to RegisterShared call to
// produce their result, mirroring Rust's Arc::new.
func NewShared[T any](value T) Shared[T] {
	v := value
	return Shared[T]{ptr: &v, ref: newStrongRef()}
}

// Clone returns a handle to the same instance with the strong count
// incremented. Ordinary resolution through Get does not call this —
// only a caller that needs a handle able to outlive the call that
// produced it should.
func (s Shared[T]) Clone() Shared[T] {
	if s.ptr == nil {
		return s
	}
	return Shared[T]{ptr: s.ptr, ref: s.ref.clone()}
}

// Get dereferences the shared instance.
func (s Shared[T]) Get() T {
	return *s.ptr
}

// StrongCount returns the number of live strong handles to this
// instance, including this one.
func (s Shared[T]) StrongCount() int32 {
	if s.ptr == nil {
		return 0
	}
	return s.ref.strong()
}

// Downgrade returns a weak handle whose strong count can be queried
// without re-deriving T, matching the spec's requirement that
// ArcAutoFreePointer expose a downgrade trampoline usable by the
// lifetime guard without knowing the pointee type.
func (s Shared[T]) Downgrade() weakHandleChecker {
	ref := s.ref
	typeName := typeName[T]()
	return weakHandleChecker{
		typeName: typeName,
		strong:   func() int32 { return ref.strong() },
	}
}

// release decrements the strong count held by the provider's own slot.
// Called exactly once, by the lifetime guard, when the provider that
// owns this slot is closed.
func (s Shared[T]) release() int32 {
	if s.ptr == nil {
		return 0
	}
	return s.ref.release()
}

// finalizeOnGC attaches a best-effort finalizer that releases the
// strong reference this particular Go-level handle represents once it
// becomes unreachable. This is the approximation of Rust's deterministic
// Drop for clones the caller never explicitly lets go of: it lets long
// -running processes eventually see the count fall back to zero instead
// of growing without bound, at the cost of being GC-timing-dependent
// rather than exact. The lifetime audit (lifetime.go) never depends on
// this running before it reports a finding.
//
// The finalizer is attached to a token stored in the returned handle's
// own drop field, not to some unrelated allocation — it only fires once
// every copy of this particular handle has become unreachable, not the
// instant finalizeOnGC returns.
func finalizeOnGC[T any](s Shared[T]) Shared[T] {
	token := new(byte)
	ref := s.ref
	runtime.SetFinalizer(token, func(*byte) { ref.release() })
	s.drop = token
	return s
}

// weakHandleChecker is the type-erased view of a Shared[T]'s strong
// count, used by the lifetime guard so it can audit every shared slot
// without a type parameter.
type weakHandleChecker struct {
	typeName string
	strong   func() int32
}
