package capsule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingle_ResolvesLastRegisteredProducer(t *testing.T) {
	c := New()
	Register[int](c, func() int { return 1 })
	Register[int](c, func() int { return 2 })

	p, err := c.Build()
	require.Nil(t, err)

	v, ok := Get[int](p)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSingle_AbsentProducerIsNotFound(t *testing.T) {
	c := New()
	p, err := c.Build()
	require.Nil(t, err)

	_, ok := Get[string](p)
	assert.False(t, ok)
}

func TestAll_ResolvesEveryProducerInRegistrationOrder(t *testing.T) {
	c := New()
	Register[int](c, func() int { return 10 })
	Register[int](c, func() int { return 20 })
	Register[int](c, func() int { return 30 })

	p, err := c.Build()
	require.Nil(t, err)

	var values []int
	for v := range GetAll[int](p) {
		values = append(values, v)
	}
	assert.Equal(t, []int{10, 20, 30}, values)
	assert.Equal(t, 3, CountAll[int](p))
}

func TestAll_EmptySetIsValidNotAnError(t *testing.T) {
	c := New()
	p, err := c.Build()
	require.Nil(t, err)

	assert.Equal(t, 0, CountAll[float64](p))
}

type wiring struct {
	Port int
}

func TestRegisterDep_InjectsSingleDependency(t *testing.T) {
	c := New()
	RegisterInstance[wiring](c, wiring{Port: 8080})
	RegisterDep[Single[wiring], Option[wiring], wiring, string](c, func(w wiring) string {
		return "listening"
	})

	p, err := c.Build()
	require.Nil(t, err)

	v, ok := Get[string](p)
	require.True(t, ok)
	assert.Equal(t, "listening", v)
}

func TestAlias_DerivesFromAnExistingRegistration(t *testing.T) {
	c := New()
	reg := Register[int](c, func() int { return 42 })
	Alias[int, string](reg, func(i int) string {
		if i == 42 {
			return "answer"
		}
		return "unknown"
	})

	p, err := c.Build()
	require.Nil(t, err)

	v, ok := Get[string](p)
	require.True(t, ok)
	assert.Equal(t, "answer", v)

	// Aliasing does not remove the original registration.
	orig, ok := Get[int](p)
	require.True(t, ok)
	assert.Equal(t, 42, orig)
}

func TestTuple2_ComposesTwoDependencies(t *testing.T) {
	c := New()
	RegisterInstance[int](c, 3)
	RegisterInstance[string](c, "x")
	RegisterDep[
		Tuple2[Option[int], int, Option[string], string, Single[int], Single[string]],
		Pair[Option[int], Option[string]],
		Pair[int, string],
		string,
	](c, func(pair Pair[int, string]) string {
		out := ""
		for i := 0; i < pair.First; i++ {
			out += pair.Second
		}
		return out
	})

	p, err := c.Build()
	require.Nil(t, err)

	v, ok := Get[string](p)
	require.True(t, ok)
	assert.Equal(t, "xxx", v)
}

func TestWeakHandle_InjectsHandleToResolvingProvider(t *testing.T) {
	c := New()
	RegisterDep[WeakHandle, WeakProviderHandle, WeakProviderHandle, string](c, func(h WeakProviderHandle) string {
		_, ok := h.Upgrade()
		if ok {
			return "has-provider"
		}
		return "no-provider"
	})

	p, err := c.Build()
	require.Nil(t, err)
	defer p.Close()

	v, ok := Get[string](p)
	require.True(t, ok)
	assert.Equal(t, "has-provider", v)
}
