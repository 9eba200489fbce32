package capsule

import "sync/atomic"

// onceSlot is a lock-free single-assignment cell implementing the
// racing-initializer semantics spec §5 requires for shared producers:
// concurrent first resolutions may all run the factory, but only one
// result is ever installed and every caller observes that same result,
// including the callers whose own factory invocation lost the race.
type onceSlot struct {
	value atomic.Pointer[any]
}

func (s *onceSlot) peek() any {
	v := s.value.Load()
	if v == nil {
		return nil
	}
	return *v
}

func (s *onceSlot) getOrInit(init func() any) any {
	if v := s.value.Load(); v != nil {
		return *v
	}
	computed := init()
	if s.value.CompareAndSwap(nil, &computed) {
		return computed
	}
	return *s.value.Load()
}

// Provider is the Go realization of ServiceProvider: an immutable,
// sorted table of producers plus the mutable shared-instance slots they
// may lazily populate. Building a Provider (Collection.Build or
// ProviderFactory.Build) is the only place validation happens; every
// Get/GetAll call afterwards is infallible with respect to cycles and
// missing dependencies; it can only fail to find a type that was never
// registered at all.
type Provider struct {
	strategy    identityStrategy
	producers   []untypedFn
	ids         []TypeId
	sharedSlots []onceSlot
	parents     []*Provider
	baseValue   atomic.Pointer[any]
	closed      atomic.Bool
	auditors    []func(p *Provider) lifetimeFinding
}

// Get resolves the last-registered producer of T, or reports absence.
func Get[T any](p *Provider) (T, bool) {
	id := idOf[T](p.strategy)
	idx, ok := lastIndexOf(p.ids, id)
	if !ok {
		var zero T
		return zero, false
	}
	return execute[T](&p.producers[idx], p), true
}

// MustGet resolves T or panics with a PreconditionViolation. Intended
// for call sites where absence would itself be a programming error
// already supposed to have been caught by validation — e.g. resolving
// a type the caller registered moments ago.
func MustGet[T any](p *Provider) T {
	v, ok := Get[T](p)
	if !ok {
		panicPrecondition(typeName[T](), "no producer registered for this type")
	}
	return v
}

// GetAll returns an iterator over every producer registered for T, in
// registration order (parent entries first). Use with range-over-func:
//
//	for v := range capsule.GetAll[Plugin](provider) { ... }
func GetAll[T any](p *Provider) func(yield func(T) bool) {
	return func(yield func(T) bool) {
		positions := all[T](p.ids, p.strategy)
		for _, pos := range positions {
			if !yield(execute[T](&p.producers[pos], p)) {
				return
			}
		}
	}
}

// CountAll reports how many producers are registered for T, without
// resolving any of them.
func CountAll[T any](p *Provider) int {
	return len(all[T](p.ids, p.strategy))
}

// ResolveUnchecked resolves an arbitrary Resolvable shape against an
// already-built provider, outside of the normal producer-dependency
// path — used by call sites holding a Provider directly rather than
// building on top of RegisterDep, such as integration tests.
// Precondition violations here mean the shape's dependency was never
// registered at all.
func ResolveUnchecked[D Resolvable[Item, PreChecked], Item, PreChecked any](p *Provider) PreChecked {
	var dep D
	key, err := dep.precheck(p.ids, p.strategy)
	if err != nil {
		panicPrecondition("ResolveUnchecked", err.Error())
	}
	return dep.resolvePrechecked(p, key)
}

// WeakProviderHandle is the injectable shape behind the WeakHandle
// Resolvable: it lets a producer obtain a reference to the provider
// resolving it — typically to resolve something lazily, after its own
// construction has finished — without that reference itself becoming
// an edge in the dependency graph.
//
// Unlike the original's Weak<ServiceProvider>, this carries no
// reference count. Go's garbage collector already guarantees a
// *Provider is never reclaimed while anything still holds a pointer to
// it, so there is no ownership race for a weak handle to protect
// against; Upgrade exists for API symmetry with the original and to
// leave room for a future explicit-shutdown signal, not because Go
// needs it to stay memory-safe. Close marks a provider closed but does
// not and cannot invalidate outstanding pointers to it — see Provider.Closed.
type WeakProviderHandle struct {
	provider *Provider
}

func (p *Provider) weakSelf() WeakProviderHandle {
	return WeakProviderHandle{provider: p}
}

// Upgrade returns the provider this handle points to, and whether it
// is still open (false once Close has run, or for a zero handle).
func (w WeakProviderHandle) Upgrade() (*Provider, bool) {
	if w.provider == nil {
		return nil, false
	}
	return w.provider, !w.provider.Closed()
}

// Closed reports whether Close has already run on p.
func (p *Provider) Closed() bool {
	return p.closed.Load()
}
