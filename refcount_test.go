package capsule

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrongRef_CloneAndReleaseAreConsistentUnderConcurrency(t *testing.T) {
	ref := newStrongRef()

	const n = 100
	clones := make([]strongRef, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			clones[i] = ref.clone()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(n+1), ref.strong())

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			clones[i].release()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ref.strong())
}
