package cache

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekha/core"
)

// countingLoader builds loaders that record how often each id is parsed.
type countingLoader struct {
	calls map[string]int
}

func newCountingLoader() *countingLoader {
	return &countingLoader{calls: make(map[string]int)}
}

func (l *countingLoader) load(id string) func() (*core.SessionDetail, error) {
	return func() (*core.SessionDetail, error) {
		l.calls[id]++
		return &core.SessionDetail{ID: id}, nil
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New(10)
	loader := newCountingLoader()

	d, err := c.GetOrLoad("s1", loader.load("s1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", d.ID)

	// Second read must come from the cache.
	d2, err := c.GetOrLoad("s1", loader.load("s1"))
	require.NoError(t, err)
	assert.Same(t, d, d2)
	assert.Equal(t, 1, loader.calls["s1"])
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	c := New(10)
	boom := errors.New("disk unhappy")
	attempts := 0

	_, err := c.GetOrLoad("s1", func() (*core.SessionDetail, error) {
		attempts++
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len())

	// The failure must not stick: the next read tries the loader again.
	d, err := c.GetOrLoad("s1", func() (*core.SessionDetail, error) {
		attempts++
		return &core.SessionDetail{ID: "s1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", d.ID)
	assert.Equal(t, 2, attempts)
}

func TestEviction(t *testing.T) {
	c := New(2)
	loader := newCountingLoader()

	for _, id := range []string{"a", "b", "c"} {
		_, err := c.GetOrLoad(id, loader.load(id))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	// "a" was least recently used and must have been evicted.
	_, err := c.GetOrLoad("a", loader.load("a"))
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls["a"])
	assert.Equal(t, 1, loader.calls["b"])
}

func TestGetMarksRecent(t *testing.T) {
	c := New(2)
	loader := newCountingLoader()

	_, err := c.GetOrLoad("a", loader.load("a"))
	require.NoError(t, err)
	_, err = c.GetOrLoad("b", loader.load("b"))
	require.NoError(t, err)

	// Touch "a" so "b" becomes the eviction candidate.
	_, err = c.GetOrLoad("a", loader.load("a"))
	require.NoError(t, err)

	_, err = c.GetOrLoad("c", loader.load("c"))
	require.NoError(t, err)

	_, err = c.GetOrLoad("a", loader.load("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls["a"], "a should have survived the eviction")
}

func TestInvalidate(t *testing.T) {
	c := New(10)
	loader := newCountingLoader()

	_, err := c.GetOrLoad("s1", loader.load("s1"))
	require.NoError(t, err)

	c.Invalidate("s1")
	assert.Zero(t, c.Len())

	_, err = c.GetOrLoad("s1", loader.load("s1"))
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls["s1"])
}

func TestNewDefaultCapacity(t *testing.T) {
	c := New(0)
	loader := newCountingLoader()

	for i := 0; i < DefaultCapacity+10; i++ {
		id := fmt.Sprintf("s%d", i)
		_, err := c.GetOrLoad(id, loader.load(id))
		require.NoError(t, err)
	}
	assert.Equal(t, DefaultCapacity, c.Len())
}
