package capsule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: last-wins transient resolution, plus full-history GetAll.
func TestScenario_LastWinsTransient(t *testing.T) {
	c := New()
	for _, v := range []int{0, 5, 1, 2} {
		v := v
		Register[int](c, func() int { return v })
	}

	p, err := c.Build()
	require.Nil(t, err)

	got, ok := Get[int](p)
	require.True(t, ok)
	assert.Equal(t, 2, got)

	var all []int
	for v := range GetAll[int](p) {
		all = append(all, v)
	}
	assert.Equal(t, []int{0, 5, 1, 2}, all)
}

// Scenario 2: a three-type cycle is rejected with every edge named.
func TestScenario_CycleAmongThree(t *testing.T) {
	c := New()
	RegisterDep[Single[int16], Option[int16], int16, int64](c, func(v int16) int64 { return int64(v) })
	RegisterDep[Single[int32], Option[int32], int32, int16](c, func(v int32) int16 { return int16(v) })
	RegisterDep[Single[int64], Option[int64], int64, int32](c, func(v int64) int32 { return int32(v) })

	_, buildErr := c.Build()
	require.NotNil(t, buildErr)
	msg := buildErr.Error()
	assert.Contains(t, msg, typeName[int16]())
	assert.Contains(t, msg, typeName[int32]())
	assert.Contains(t, msg, typeName[int64]())
}

// Scenario 3: a tuple dependency feeds an alias-style shared producer.
func TestScenario_AliasAndTupleDependency(t *testing.T) {
	c := New()
	RegisterInstance[int64](c, 64)

	RegisterDep[
		Tuple2[Option[int64], int64, Option[int64], int64, Single[int64], Single[int64]],
		Pair[Option[int64], Option[int64]],
		Pair[int64, int64],
		Shared[int32],
	](c, func(pair Pair[int64, int64]) Shared[int32] {
		return NewShared(int32(42))
	})

	p, err := c.Build()
	require.Nil(t, err)
	defer p.Close()

	got, ok := Get[Shared[int32]](p)
	require.True(t, ok)
	assert.Equal(t, int32(42), got.Get())
}

type baseConfig struct {
	Value uint8
}

// Scenario 4 (adapted): parent/child merge preserves parent-before
// -child registration order for GetAll, shares the parent's Shared
// instance rather than duplicating it, and keeps a factory's per-build
// base value distinct from ordinary registrations.
func TestScenario_ParentChildMergeWithBaseValue(t *testing.T) {
	parentColl := New()
	Register[uint8](parentColl, func() uint8 { return 1 })
	RegisterShared[uint16](parentColl, func() Shared[uint16] { return NewShared(uint16(10)) })

	parent, err := parentColl.Build()
	require.Nil(t, err)
	defer parent.Close()

	child := New().WithParent(parent)
	Register[uint8](child, func() uint8 { return 3 })
	RegisterDep[Single[Shared[uint16]], Option[Shared[uint16]], Shared[uint16], int](child, func(v Shared[uint16]) int {
		return int(v.Get()) * 2
	})

	factory, buildErr := BuildFactory[baseConfig](child)
	require.Nil(t, buildErr)

	cp := factory.Build(baseConfig{Value: 4})
	defer cp.Close()

	var u8s []uint8
	for v := range GetAll[uint8](cp) {
		u8s = append(u8s, v)
	}
	assert.Equal(t, []uint8{1, 3}, u8s, "parent registrations precede child registrations")

	doubled, ok := Get[int](cp)
	require.True(t, ok)
	assert.Equal(t, 20, doubled, "child sees the parent's shared uint16 through the rebound producer")

	base, ok := Get[baseConfig](cp)
	require.True(t, ok)
	assert.Equal(t, uint8(4), base.Value, "the factory's base value is a distinct registration from ordinary uint8 producers")
}

// Scenario 5: an AllRegistered-shaped dependency can itself be part of
// the cycle it pulls in.
func TestScenario_AllRegisteredInducedCycle(t *testing.T) {
	c := New()
	RegisterInstance[int32](c, 1)
	RegisterInstance[int32](c, 2)
	RegisterInstance[int32](c, 3)

	RegisterDep[All[int32], []int32, []int32, int64](c, func(values []int32) int64 {
		return 42
	})
	RegisterDep[Single[int64], Option[int64], int64, int32](c, func(v int64) int32 {
		return int32(v)
	})

	_, buildErr := c.Build()
	require.NotNil(t, buildErr)
	assert.Contains(t, buildErr.Error(), "cyclic dependency")
}

// Scenario 6: a shared instance resolved out of a provider and held
// past the provider's Close triggers the lifetime guard. Rust's
// original scenario relies on Arc's automatic Drop: an Arc clone that
// goes out of scope before the provider is dropped never shows up as a
// leak, only one a binding keeps alive past that point does. Go has no
// equivalent scope-exit hook, so the same distinction is made explicit:
// plain resolution borrows the slot's handle, and only an explicit
// Clone — kept alive here in `kept` — represents the extra reference
// the audit is meant to catch.
func TestScenario_SharedOutlivesProvider(t *testing.T) {
	c := New()
	RegisterShared[int32](c, func() Shared[int32] { return NewShared(int32(7)) })

	p, err := c.Build()
	require.Nil(t, err)

	held, ok := Get[Shared[int32]](p)
	require.True(t, ok)
	kept := held.Clone()

	var captured []lifetimeFinding
	SetErrorHandler(func(findings []lifetimeFinding) {
		captured = append(captured, findings...)
	})
	defer SetErrorHandler(nil)

	p.Close()

	require.Len(t, captured, 1)
	assert.Equal(t, typeName[int32](), captured[0].TypeName)
	assert.Equal(t, int32(1), captured[0].RemainingRefs)
	assert.Equal(t, int32(7), kept.Get())
}
