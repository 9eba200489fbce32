package capsule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_RegisterInstanceResolvesTheSameValueEveryTime(t *testing.T) {
	c := New()
	RegisterInstance[string](c, "config-value")

	p, err := c.Build()
	require.Nil(t, err)
	defer p.Close()

	a, _ := Get[string](p)
	b, _ := Get[string](p)
	assert.Equal(t, "config-value", a)
	assert.Equal(t, a, b)
}

func TestCollection_RegisterSharedReturnsTheSameInstanceOnEveryResolution(t *testing.T) {
	c := New()
	calls := 0
	RegisterShared[int](c, func() Shared[int] {
		calls++
		return NewShared(calls)
	})

	p, err := c.Build()
	require.Nil(t, err)
	defer p.Close()

	a, _ := Get[Shared[int]](p)
	b, _ := Get[Shared[int]](p)

	assert.Equal(t, 1, calls, "the factory only runs once")
	assert.Equal(t, a.Get(), b.Get())
	assert.Equal(t, int32(1), a.StrongCount(), "ordinary resolution borrows the slot's handle, it does not clone it")
}

func TestCollection_WithABIStableIdentityInheritsThroughParent(t *testing.T) {
	a := NewABIStable("v1")
	RegisterInstance[widget](a, widget{Count: 1, Label: "x"})
	pa, err := a.Build()
	require.Nil(t, err)
	defer pa.Close()

	b := NewABIStable("v1").WithParent(pa)
	pb, err := b.Build()
	require.Nil(t, err)
	defer pb.Close()

	v, ok := Get[widget](pb)
	require.True(t, ok)
	assert.Equal(t, widget{Count: 1, Label: "x"}, v)
}

func TestCollection_ChildOverridesParentForSameType(t *testing.T) {
	parentColl := New()
	RegisterInstance[string](parentColl, "from-parent")
	parent, err := parentColl.Build()
	require.Nil(t, err)
	defer parent.Close()

	child := New().WithParent(parent)
	RegisterInstance[string](child, "from-child")

	p, err := child.Build()
	require.Nil(t, err)
	defer p.Close()

	v, ok := Get[string](p)
	require.True(t, ok)
	assert.Equal(t, "from-child", v, "last registered wins even across the parent boundary")
}
