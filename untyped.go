package capsule

// untypedFn is the Go realization of UntypedFn: a type-erased producer.
// It carries the TypeId it was registered under and a trampoline that,
// given a provider and the producer's boxed context, yields an `any`
// holding a T. The public API never calls execute directly — only the
// package's internal resolution code (provider.go, resolvable.go) does,
// immediately after a
// binary-search lookup has already proven the stored id matches the
// type being requested.
type untypedFn struct {
	resultID   TypeId
	ctx        *boxedContext
	trampoline func(p *Provider, ctx *boxedContext) any
}

// newUntypedFn constructs an untypedFn for a producer of T. trampoline
// receives the provider it is resolved against and the boxed context
// captured at registration time.
func newUntypedFn[T any](strategy identityStrategy, ctx *boxedContext, trampoline func(p *Provider, ctx *boxedContext) any) untypedFn {
	return untypedFn{
		resultID:   idOf[T](strategy),
		ctx:        ctx,
		trampoline: trampoline,
	}
}

// execute runs the trampoline and type-asserts the result to T. Safety
// obligation: the caller must have already confirmed (via the sorted
// TypeId table) that this untypedFn was registered as a producer of T.
// A mismatch here can only happen if the registry itself was built
// incorrectly — it is never reachable through public-API misuse — so it
// is reported as a PreconditionViolation rather than a silent zero
// value.
func execute[T any](fn *untypedFn, p *Provider) T {
	result := fn.trampoline(p, fn.ctx)
	typed, ok := result.(T)
	if !ok {
		panicPrecondition(typeName[T](), "producer trampoline returned a value of the wrong type")
	}
	return typed
}

// bind returns a new untypedFn whose trampoline ignores whatever
// provider it is invoked with and instead always resolves against the
// bound provider. This is the only mechanism used for parent-provider
// inheritance (spec §4.2, §9): a child provider holds rebound copies of
// its parent's producers so that shared slots keep resolving against
// the parent's own slot storage rather than being duplicated into the
// child.
func (fn untypedFn) bind(bound *Provider) untypedFn {
	inner := fn
	return untypedFn{
		resultID: fn.resultID,
		ctx:      fn.ctx,
		trampoline: func(_ *Provider, ctx *boxedContext) any {
			return inner.trampoline(bound, ctx)
		},
	}
}
