package capsule

// Option is the Go stand-in for the zero-or-one result Single[T]
// resolution produces, mirroring the original's Option<T>.
type Option[T any] struct {
	Value   T
	Present bool
}

// Pair, Triple and Quad are the tuple item shapes produced by
// Tuple2..Tuple4. Go has no native tuple type, so these carry the
// composed result of resolving each member's dependency in turn.
type Pair[A, B any] struct {
	First  A
	Second B
}

type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// depKey is the opaque result of a precheck call, threaded back into
// resolvePrechecked so the second lookup a producer performs at every
// resolution never has to repeat the binary search the validator
// already did once at build time. Its concrete shape is owned entirely
// by the Resolvable implementation that produced it.
type depKey = any

// Resolvable is the Go realization of the original's Resolvable trait
// family: a zero-size marker type describing one shape a producer can
// depend on (a single instance, every registered instance, a weak
// handle to the resolving provider, or a tuple of other Resolvables).
// Go has no associated types, so Item and PreChecked — the optional and
// the already-proven-present result shapes — are explicit type
// parameters rather than trait-associated ones.
//
// precheck runs once per dependent producer, during validation, over
// the frozen sorted TypeId table; it both proves the dependency can be
// satisfied (for shapes that can fail, only Single) and computes the
// key resolvePrechecked will reuse at every later resolution.
// iterPositions reports every table position this dependency touches,
// which the validator uses to build cycle-detection edges.
type Resolvable[Item any, PreChecked any] interface {
	precheck(ids []TypeId, strategy identityStrategy) (depKey, error)
	iterPositions(ids []TypeId, strategy identityStrategy) []int
	resolve(p *Provider) Item
	resolvePrechecked(p *Provider, key depKey) PreChecked
}

// Single depends on the last-registered producer of T, spec's
// "single-value, last-wins" shape. Missing the dependency entirely is
// the one failure precheck can report.
type Single[T any] struct{}

func (Single[T]) precheck(ids []TypeId, strategy identityStrategy) (depKey, error) {
	id := idOf[T](strategy)
	idx, ok := lastIndexOf(ids, id)
	if !ok {
		return nil, MissingDependencyError(typeName[T](), id)
	}
	return idx, nil
}

func (Single[T]) iterPositions(ids []TypeId, strategy identityStrategy) []int {
	id := idOf[T](strategy)
	idx, ok := lastIndexOf(ids, id)
	if !ok {
		return nil
	}
	return []int{idx}
}

func (Single[T]) resolve(p *Provider) Option[T] {
	id := idOf[T](p.strategy)
	idx, ok := lastIndexOf(p.ids, id)
	if !ok {
		var zero T
		return Option[T]{Value: zero, Present: false}
	}
	return Option[T]{Value: execute[T](&p.producers[idx], p), Present: true}
}

func (Single[T]) resolvePrechecked(p *Provider, key depKey) T {
	idx, ok := key.(int)
	if !ok {
		panicPrecondition(typeName[T](), "resolvePrechecked called without a valid precheck key")
	}
	return execute[T](&p.producers[idx], p)
}

// All depends on every producer registered for T, in registration
// order (parent entries before child entries — spec §9). It never
// fails precheck: an empty set is a valid result.
type All[T any] struct{}

func (All[T]) precheck(ids []TypeId, strategy identityStrategy) (depKey, error) {
	return all[T](ids, strategy), nil
}

func (All[T]) iterPositions(ids []TypeId, strategy identityStrategy) []int {
	return all[T](ids, strategy)
}

func all[T any](ids []TypeId, strategy identityStrategy) []int {
	id := idOf[T](strategy)
	start, ok := firstIndexOf(ids, id)
	if !ok {
		return nil
	}
	end := upperBound(ids, start, id)
	positions := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		positions = append(positions, i)
	}
	return positions
}

func (All[T]) resolve(p *Provider) []T {
	positions := all[T](p.ids, p.strategy)
	out := make([]T, len(positions))
	for i, pos := range positions {
		out[i] = execute[T](&p.producers[pos], p)
	}
	return out
}

func (All[T]) resolvePrechecked(p *Provider, key depKey) []T {
	positions, ok := key.([]int)
	if !ok {
		panicPrecondition(typeName[T](), "resolvePrechecked called without a valid precheck key")
	}
	out := make([]T, len(positions))
	for i, pos := range positions {
		out[i] = execute[T](&p.producers[pos], p)
	}
	return out
}

// WeakHandle injects a weak handle to the provider currently resolving
// the dependent producer. It never fails precheck and touches no
// positions in the cycle graph — a provider can never depend on
// itself through this shape alone, only through what it then chooses
// to do with the handle at resolution time.
type WeakHandle struct{}

func (WeakHandle) precheck([]TypeId, identityStrategy) (depKey, error) { return nil, nil }
func (WeakHandle) iterPositions([]TypeId, identityStrategy) []int      { return nil }

func (WeakHandle) resolve(p *Provider) WeakProviderHandle {
	return p.weakSelf()
}

func (WeakHandle) resolvePrechecked(p *Provider, _ depKey) WeakProviderHandle {
	return p.weakSelf()
}

// Unit depends on nothing; it is the dependency shape equivalent to
// Register/RegisterShared, which take no dependency argument at all and
// do not go through a Resolvable.
type Unit struct{}

func (Unit) precheck([]TypeId, identityStrategy) (depKey, error) { return nil, nil }
func (Unit) iterPositions([]TypeId, identityStrategy) []int      { return nil }
func (Unit) resolve(*Provider) struct{}                          { return struct{}{} }
func (Unit) resolvePrechecked(*Provider, depKey) struct{}        { return struct{}{} }

// Tuple2 composes two Resolvables into one dependency that resolves
// both. precheck fails on the first sub-dependency that fails; a
// producer depending on a Tuple2 of (Single[A], Single[B]) is only
// satisfiable once both A and B are registered.
type Tuple2[IA, PA, IB, PB any, A Resolvable[IA, PA], B Resolvable[IB, PB]] struct{}

func (Tuple2[IA, PA, IB, PB, A, B]) precheck(ids []TypeId, strategy identityStrategy) (depKey, error) {
	var a A
	var b B
	ka, err := a.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	kb, err := b.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	return [2]depKey{ka, kb}, nil
}

func (Tuple2[IA, PA, IB, PB, A, B]) iterPositions(ids []TypeId, strategy identityStrategy) []int {
	var a A
	var b B
	return append(a.iterPositions(ids, strategy), b.iterPositions(ids, strategy)...)
}

func (Tuple2[IA, PA, IB, PB, A, B]) resolve(p *Provider) Pair[IA, IB] {
	var a A
	var b B
	return Pair[IA, IB]{First: a.resolve(p), Second: b.resolve(p)}
}

func (Tuple2[IA, PA, IB, PB, A, B]) resolvePrechecked(p *Provider, key depKey) Pair[PA, PB] {
	keys, ok := key.([2]depKey)
	if !ok {
		panicPrecondition("Tuple2", "resolvePrechecked called without a valid precheck key")
	}
	var a A
	var b B
	return Pair[PA, PB]{First: a.resolvePrechecked(p, keys[0]), Second: b.resolvePrechecked(p, keys[1])}
}

// Tuple3 composes three Resolvables, following the same pattern as
// Tuple2.
type Tuple3[IA, PA, IB, PB, IC, PC any, A Resolvable[IA, PA], B Resolvable[IB, PB], C Resolvable[IC, PC]] struct{}

func (Tuple3[IA, PA, IB, PB, IC, PC, A, B, C]) precheck(ids []TypeId, strategy identityStrategy) (depKey, error) {
	var a A
	var b B
	var c C
	ka, err := a.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	kb, err := b.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	kc, err := c.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	return [3]depKey{ka, kb, kc}, nil
}

func (Tuple3[IA, PA, IB, PB, IC, PC, A, B, C]) iterPositions(ids []TypeId, strategy identityStrategy) []int {
	var a A
	var b B
	var c C
	out := a.iterPositions(ids, strategy)
	out = append(out, b.iterPositions(ids, strategy)...)
	return append(out, c.iterPositions(ids, strategy)...)
}

func (Tuple3[IA, PA, IB, PB, IC, PC, A, B, C]) resolve(p *Provider) Triple[IA, IB, IC] {
	var a A
	var b B
	var c C
	return Triple[IA, IB, IC]{First: a.resolve(p), Second: b.resolve(p), Third: c.resolve(p)}
}

func (Tuple3[IA, PA, IB, PB, IC, PC, A, B, C]) resolvePrechecked(p *Provider, key depKey) Triple[PA, PB, PC] {
	keys, ok := key.([3]depKey)
	if !ok {
		panicPrecondition("Tuple3", "resolvePrechecked called without a valid precheck key")
	}
	var a A
	var b B
	var c C
	return Triple[PA, PB, PC]{
		First:  a.resolvePrechecked(p, keys[0]),
		Second: b.resolvePrechecked(p, keys[1]),
		Third:  c.resolvePrechecked(p, keys[2]),
	}
}

// Tuple4 composes four Resolvables, the largest tuple arity the spec
// calls for.
type Tuple4[IA, PA, IB, PB, IC, PC, ID, PD any, A Resolvable[IA, PA], B Resolvable[IB, PB], C Resolvable[IC, PC], D Resolvable[ID, PD]] struct {
}

func (Tuple4[IA, PA, IB, PB, IC, PC, ID, PD, A, B, C, D]) precheck(ids []TypeId, strategy identityStrategy) (depKey, error) {
	var a A
	var b B
	var c C
	var d D
	ka, err := a.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	kb, err := b.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	kc, err := c.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	kd, err := d.precheck(ids, strategy)
	if err != nil {
		return nil, err
	}
	return [4]depKey{ka, kb, kc, kd}, nil
}

func (Tuple4[IA, PA, IB, PB, IC, PC, ID, PD, A, B, C, D]) iterPositions(ids []TypeId, strategy identityStrategy) []int {
	var a A
	var b B
	var c C
	var d D
	out := a.iterPositions(ids, strategy)
	out = append(out, b.iterPositions(ids, strategy)...)
	out = append(out, c.iterPositions(ids, strategy)...)
	return append(out, d.iterPositions(ids, strategy)...)
}

func (Tuple4[IA, PA, IB, PB, IC, PC, ID, PD, A, B, C, D]) resolve(p *Provider) Quad[IA, IB, IC, ID] {
	var a A
	var b B
	var c C
	var d D
	return Quad[IA, IB, IC, ID]{First: a.resolve(p), Second: b.resolve(p), Third: c.resolve(p), Fourth: d.resolve(p)}
}

func (Tuple4[IA, PA, IB, PB, IC, PC, ID, PD, A, B, C, D]) resolvePrechecked(p *Provider, key depKey) Quad[PA, PB, PC, PD] {
	keys, ok := key.([4]depKey)
	if !ok {
		panicPrecondition("Tuple4", "resolvePrechecked called without a valid precheck key")
	}
	var a A
	var b B
	var c C
	var d D
	return Quad[PA, PB, PC, PD]{
		First:  a.resolvePrechecked(p, keys[0]),
		Second: b.resolvePrechecked(p, keys[1]),
		Third:  c.resolvePrechecked(p, keys[2]),
		Fourth: d.resolvePrechecked(p, keys[3]),
	}
}
