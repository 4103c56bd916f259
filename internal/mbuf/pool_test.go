package mbuf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochrecore/flowcore/internal/rerr"
)

func TestAllocateResetsState(t *testing.T) {
	p := NewPool(4, 256)
	b, err := p.Allocate()
	require.NoError(t, err)
	assert.EqualValues(t, 1, b.RefCount())
	assert.Equal(t, 0, b.DataLen())
	assert.Equal(t, 256, b.Tailroom())
}

func TestAllocateExhaustion(t *testing.T) {
	p := NewPool(2, 64)
	b1, err := p.Allocate()
	require.NoError(t, err)
	b2, err := p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	require.Error(t, err)
	assert.True(t, rerr.Is(err, rerr.CodeFailedAllocation))

	b1.Dereference()
	b3, err := p.Allocate()
	require.NoError(t, err)
	assert.NotNil(t, b3)
	b2.Dereference()
	b3.Dereference()
}

func TestDereferenceReturnsToPool(t *testing.T) {
	p := NewPool(1, 64)
	b, err := p.Allocate()
	require.NoError(t, err)
	b.Reference()
	assert.EqualValues(t, 2, b.RefCount())

	freed := b.Dereference()
	assert.False(t, freed)
	assert.EqualValues(t, 1, b.RefCount())

	freed = b.Dereference()
	assert.True(t, freed)
	assert.Equal(t, 1, p.Available())
}

func TestAllocateBulkRollsBackOnFailure(t *testing.T) {
	p := NewPool(3, 64)
	_, err := p.AllocateBulk(4)
	require.Error(t, err)
	assert.Equal(t, 3, p.Available())
}

func TestConcurrentAllocateFree(t *testing.T) {
	p := NewPool(64, 128)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b, err := p.Allocate()
				if err != nil {
					continue
				}
				b.Dereference()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 64, p.Available())
}
