package capsule

// Collection is the Go realization of ServiceCollection: an
// append-only list of stage-1 entries (factory-factories) plus,
// optionally, a parent provider whose own producers are merged in at
// Build time. Nothing registered into a Collection can fail or be
// observed until Build or BuildFactory runs the validator.
type Collection struct {
	strategy identityStrategy
	stage1   []stage1Entry
	parent   *Provider
}

// stage1Entry is one pending registration: the TypeId it will produce,
// used for sorting before any producer runs, and the build closure that
// performs precheck/edge-recording and yields the final untypedFn.
type stage1Entry struct {
	resultID TypeId
	typeName string
	build    func(ctx *buildContext) (untypedFn, error)
}

// New creates a Collection using in-process type identity: two
// registrations agree on a type if and only if they share the same
// reflect.Type within this process. This is the right choice unless
// producers are registered from plugins built as separate binaries.
func New() *Collection {
	return &Collection{strategy: inProcessIdentity{}}
}

// NewABIStable creates a Collection using structural type identity,
// safe across separately-compiled plugin binaries loaded with
// LoadPlugin, at the cost of only distinguishing types by field layout
// rather than by declaration site (spec §9, abi.go).
func NewABIStable(moduleVersion string) *Collection {
	return &Collection{strategy: abiStableIdentity{moduleVersion: moduleVersion}}
}

// WithParent arranges for Build/BuildFactory to merge parent's already
// -built producers into the resulting provider. Parent producers are
// rebound (untypedFn.bind) rather than re-run, so shared instances
// registered on the parent are shared with the parent itself, not
// duplicated.
func (c *Collection) WithParent(parent *Provider) *Collection {
	c.parent = parent
	return c
}

// Registration is returned by Register/RegisterShared/RegisterInstance
// so callers can derive an Alias from it. It records only the
// collection, not the particular entry: an Alias derived from it
// resolves the last-registered producer of T.
type Registration[T any] struct {
	collection *Collection
}

// Register adds a transient producer of T: fn runs once per
// resolution. This is the Unit-dependency base case; producers that
// need a dependency use RegisterDep.
func Register[T any](c *Collection, fn func() T) *Registration[T] {
	id := idOf[T](c.strategy)
	ctx := newBoxedContext(nil)
	c.stage1 = append(c.stage1, stage1Entry{
		resultID: id,
		typeName: typeName[T](),
		build: func(*buildContext) (untypedFn, error) {
			return newUntypedFn[T](c.strategy, ctx, func(*Provider, *boxedContext) any {
				return fn()
			}), nil
		},
	})
	return &Registration[T]{collection: c}
}

// RegisterInstance registers a single pre-built value of T, resolved by
// copy on every access (the zero-dependency, zero-computation case of
// Register).
func RegisterInstance[T any](c *Collection, value T) *Registration[T] {
	return Register[T](c, func() T { return value })
}

// RegisterShared adds a producer whose result is built at most once per
// provider and then shared: fn is called the first time T is resolved,
// and every caller — including resolutions through a rebound parent
// producer — receives the same Shared[T] handle borrowed from the
// slot. Ordinary resolution never increments the strong count; Go has
// no equivalent to a value going out of scope decrementing it
// automatically, so a resolution that cloned on every call would leave
// every discarded result's increment permanently unreleased. Callers
// that need a handle to genuinely outlive the call that produced it —
// the only case the lifetime audit in Close is meant to catch — must
// say so explicitly with Clone.
func RegisterShared[T any](c *Collection, fn func() Shared[T]) *Registration[Shared[T]] {
	id := idOf[Shared[T]](c.strategy)
	c.stage1 = append(c.stage1, stage1Entry{
		resultID: id,
		typeName: typeName[Shared[T]](),
		build: func(ctx *buildContext) (untypedFn, error) {
			slot := ctx.nextSharedSlot()
			ctx.registerAuditor(sharedSlotAuditor[T](slot))
			return newUntypedFn[Shared[T]](ctx.strategy, newBoxedContext(nil), func(p *Provider, _ *boxedContext) any {
				v := p.sharedSlots[slot].getOrInit(func() any { return fn() })
				return v.(Shared[T])
			}), nil
		},
	})
	return &Registration[Shared[T]]{collection: c}
}

// RegisterDep is the Go realization of with::<D>().register(fn): a
// producer of T whose single declared dependency is described by the
// Resolvable shape D. D's Item/PreChecked type parameters must be
// supplied explicitly since Go has no associated types to infer them
// from — e.g. RegisterDep[Single[Config], Option[Config], Config,
// Server](c, buildServer).
func RegisterDep[D Resolvable[Item, PreChecked], Item, PreChecked, T any](c *Collection, fn func(PreChecked) T) *Registration[T] {
	id := idOf[T](c.strategy)
	c.stage1 = append(c.stage1, stage1Entry{
		resultID: id,
		typeName: typeName[T](),
		build: func(ctx *buildContext) (untypedFn, error) {
			var dep D
			key, err := dep.precheck(ctx.ids, ctx.strategy)
			if err != nil {
				return untypedFn{}, err
			}
			ctx.recordEdges(dep.iterPositions(ctx.ids, ctx.strategy))
			return newUntypedFn[T](ctx.strategy, newBoxedContext(nil), func(p *Provider, _ *boxedContext) any {
				return fn(dep.resolvePrechecked(p, key))
			}), nil
		},
	})
	return &Registration[T]{collection: c}
}

// RegisterDepShared is RegisterShared with a dependency, the shape
// RegisterPluginFunc-style extension registrations most often need: a
// shared instance built once from something else already registered.
// Like RegisterShared, ordinary resolution borrows the slot's handle
// without incrementing the strong count.
func RegisterDepShared[D Resolvable[Item, PreChecked], Item, PreChecked, T any](c *Collection, fn func(PreChecked) Shared[T]) *Registration[Shared[T]] {
	id := idOf[Shared[T]](c.strategy)
	c.stage1 = append(c.stage1, stage1Entry{
		resultID: id,
		typeName: typeName[Shared[T]](),
		build: func(ctx *buildContext) (untypedFn, error) {
			var dep D
			key, err := dep.precheck(ctx.ids, ctx.strategy)
			if err != nil {
				return untypedFn{}, err
			}
			ctx.recordEdges(dep.iterPositions(ctx.ids, ctx.strategy))
			slot := ctx.nextSharedSlot()
			ctx.registerAuditor(sharedSlotAuditor[T](slot))
			return newUntypedFn[Shared[T]](ctx.strategy, newBoxedContext(nil), func(p *Provider, _ *boxedContext) any {
				v := p.sharedSlots[slot].getOrInit(func() any { return fn(dep.resolvePrechecked(p, key)) })
				return v.(Shared[T])
			}), nil
		},
	})
	return &Registration[Shared[T]]{collection: c}
}

// sharedSlotAuditor closes over T so the lifetime guard can release a
// shared slot's own strong reference without the provider itself
// needing to know what type each slot holds. Since ordinary resolution
// never clones, this release only ever finds remaining > 0 when a
// caller explicitly Cloned a handle and still holds it at Close time —
// exactly the leak the audit exists to catch.
func sharedSlotAuditor[T any](slot int) func(p *Provider) lifetimeFinding {
	return func(p *Provider) lifetimeFinding {
		raw := p.sharedSlots[slot].peek()
		if raw == nil {
			return lifetimeFinding{}
		}
		s, ok := raw.(Shared[T])
		if !ok {
			return lifetimeFinding{}
		}
		remaining := s.release()
		if remaining <= 0 {
			return lifetimeFinding{}
		}
		return lifetimeFinding{
			TypeName:           typeName[T](),
			RemainingRefs:      remaining,
			SharedInstanceLeak: true,
		}
	}
}

// Alias registers U as a producer derived from T by fn, without
// introducing a second way to build T itself — the Go realization of
// register_struct_as_dynamic's alias pattern (original_source lib.rs).
func Alias[T, U any](reg *Registration[T], fn func(T) U) *Registration[U] {
	return RegisterDep[Single[T], Option[T], T, U](reg.collection, fn)
}

// Build runs the validator and produces an immediately-usable
// Provider. Use BuildFactory instead when T needs a value supplied
// per-provider rather than at registration time.
func (c *Collection) Build() (*Provider, *BuildError) {
	producers, ids, slots, parents, auditors, err := runValidator(c)
	if err != nil {
		return nil, err
	}
	return &Provider{
		strategy:    c.strategy,
		producers:   producers,
		ids:         ids,
		sharedSlots: make([]onceSlot, slots),
		parents:     parents,
		auditors:    auditors,
	}, nil
}
