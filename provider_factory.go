package capsule

// ProviderFactory is the Go realization of the two-call build split the
// spec requires when a dependency graph needs a value only known at the
// point of use (a request, a connection, a per-job Base) rather than at
// registration time. BuildFactory runs the validator exactly once,
// including for the synthetic Base producer; Build then becomes a
// cheap allocation of fresh shared slots per call, safe to call
// concurrently from multiple goroutines since the frozen producer and
// id tables it reuses are never mutated after BuildFactory returns.
type ProviderFactory[Base any] struct {
	strategy    identityStrategy
	producers   []untypedFn
	ids         []TypeId
	sharedSlots int
	parents     []*Provider
	auditors    []func(p *Provider) lifetimeFinding
}

// BuildFactory reserves a producer for Base — resolved, at Build time,
// from the value passed to Build rather than from any registration —
// and runs the validator over the rest of the collection together with
// it, so a missing or cyclic dependency on Base is caught once here
// rather than on every subsequent Build call.
func BuildFactory[Base any](c *Collection) (*ProviderFactory[Base], *BuildError) {
	id := idOf[Base](c.strategy)
	c.stage1 = append(c.stage1, stage1Entry{
		resultID: id,
		typeName: typeName[Base](),
		build: func(ctx *buildContext) (untypedFn, error) {
			return newUntypedFn[Base](ctx.strategy, newBoxedContext(nil), func(p *Provider, _ *boxedContext) any {
				v := p.baseValue.Load()
				if v == nil {
					panicPrecondition(typeName[Base](), "provider built from a factory without its base value set")
				}
				return (*v).(Base)
			}), nil
		},
	})

	producers, ids, slots, parents, auditors, err := runValidator(c)
	if err != nil {
		return nil, err
	}
	return &ProviderFactory[Base]{
		strategy:    c.strategy,
		producers:   producers,
		ids:         ids,
		sharedSlots: slots,
		parents:     parents,
		auditors:    auditors,
	}, nil
}

// Build produces a fresh Provider bound to base. Each call gets its own
// shared-instance slots: two providers built from the same factory
// never share a RegisterShared instance, only the stateless producer
// table that builds them.
func (f *ProviderFactory[Base]) Build(base Base) *Provider {
	p := &Provider{
		strategy:    f.strategy,
		producers:   f.producers,
		ids:         f.ids,
		sharedSlots: make([]onceSlot, f.sharedSlots),
		parents:     f.parents,
		auditors:    f.auditors,
	}
	var boxed any = base
	p.baseValue.Store(&boxed)
	return p
}
