package capsule

import (
	"sort"
	"strings"
)

// buildContext is handed to every stage1Entry.build call, in sorted
// order, during validation. It exposes the frozen, fully-sorted TypeId
// table (available up front because sorting only needs each entry's
// declared resultID, not its built producer) and two pieces of mutable
// bookkeeping: a monotonic shared-slot counter and the dependency edges
// recorded so far, keyed by the producer index currently being built.
type buildContext struct {
	strategy     identityStrategy
	ids          []TypeId
	slotCounter  int
	edges        [][]int
	currentIndex int
	auditors     []func(p *Provider) lifetimeFinding
}

func (ctx *buildContext) registerAuditor(fn func(p *Provider) lifetimeFinding) {
	ctx.auditors = append(ctx.auditors, fn)
}

func (ctx *buildContext) nextSharedSlot() int {
	slot := ctx.slotCounter
	ctx.slotCounter++
	return slot
}

func (ctx *buildContext) recordEdges(positions []int) {
	if len(positions) == 0 {
		return
	}
	ctx.edges[ctx.currentIndex] = append(ctx.edges[ctx.currentIndex], positions...)
}

// mergeEntry is the common shape used to sort a collection's own
// pending registrations together with a parent provider's already
// -built producers before validation runs.
type mergeEntry struct {
	id         TypeId
	typeName   string
	fromParent bool
	build      func(ctx *buildContext) (untypedFn, error)
	bound      untypedFn
}

// runValidator merges, sorts, builds and cycle-checks a collection,
// returning the frozen producer/id tables a Provider or ProviderFactory
// is constructed from. Grounded on original_source/cycle_detection.rs
// (stack-based DFS with a per-node on-path flag) and the teacher's
// DependencyGraph.visit/TopologicalSort (graph.go).
func runValidator(c *Collection) (producers []untypedFn, ids []TypeId, sharedSlots int, parents []*Provider, auditors []func(p *Provider) lifetimeFinding, err *BuildError) {
	merged := make([]mergeEntry, 0, len(c.stage1))

	if c.parent != nil {
		parents = append(parents, c.parent)
		for i := range c.parent.producers {
			bound := c.parent.producers[i].bind(c.parent)
			merged = append(merged, mergeEntry{
				id:         c.parent.ids[i],
				typeName:   "<inherited>",
				fromParent: true,
				bound:      bound,
			})
		}
	}
	for _, entry := range c.stage1 {
		merged = append(merged, mergeEntry{
			id:       entry.resultID,
			typeName: entry.typeName,
			build:    entry.build,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].id.Less(merged[j].id)
	})

	n := len(merged)
	ctx := &buildContext{
		strategy: c.strategy,
		ids:      make([]TypeId, n),
		edges:    make([][]int, n),
	}
	for i, e := range merged {
		ctx.ids[i] = e.id
	}

	built := make([]untypedFn, n)
	names := make([]string, n)
	for i, e := range merged {
		names[i] = e.typeName
		if e.fromParent {
			built[i] = e.bound
			continue
		}
		ctx.currentIndex = i
		fn, buildErr := e.build(ctx)
		if buildErr != nil {
			if be, ok := buildErr.(*BuildError); ok {
				return nil, nil, 0, nil, nil, be
			}
			return nil, nil, 0, nil, nil, CyclicDependencyError(buildErr.Error())
		}
		built[i] = fn
	}

	if cycle := detectCycle(ctx.edges, names); cycle != "" {
		return nil, nil, 0, nil, nil, CyclicDependencyError(cycle)
	}

	return built, ctx.ids, ctx.slotCounter, parents, ctx.auditors, nil
}

// cycleState tracks, per node, whether it is fully resolved (done) or
// currently on the DFS stack (onPath), mirroring CycleChecker's
// BTreeMap<usize, CycleCheckerValue> from original_source.
type cycleState int

const (
	cycleUnvisited cycleState = iota
	cycleOnPath
	cycleDone
)

// detectCycle returns a human-readable "A -> B -> ... -> A" chain if
// the dependency graph described by edges contains a cycle, or "" if
// it is acyclic.
func detectCycle(edges [][]int, names []string) string {
	state := make([]cycleState, len(edges))
	var stack []int

	var visit func(node int) string
	visit = func(node int) string {
		switch state[node] {
		case cycleDone:
			return ""
		case cycleOnPath:
			return cycleMessage(stack, node, names)
		}
		state[node] = cycleOnPath
		stack = append(stack, node)
		for _, next := range edges[node] {
			if msg := visit(next); msg != "" {
				return msg
			}
		}
		stack = stack[:len(stack)-1]
		state[node] = cycleDone
		return ""
	}

	for i := range edges {
		if state[i] == cycleUnvisited {
			if msg := visit(i); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func cycleMessage(stack []int, repeated int, names []string) string {
	start := 0
	for i, n := range stack {
		if n == repeated {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(stack)-start+1)
	for _, n := range stack[start:] {
		parts = append(parts, names[n])
	}
	parts = append(parts, names[repeated])
	return strings.Join(parts, " -> ")
}
