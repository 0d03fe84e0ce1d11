//go:build !pooldebug

package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	n int
}

// isBorrowed reports whether v is owned by p and currently borrowed.
func isBorrowed[T any](p *Pool[T], v *T) bool {
	s, ok := p.slots[v]
	return ok && s.borrowed
}

func TestNewPrealloc(t *testing.T) {
	p := New[widget](3)
	require.Equal(t, 3, p.Len())
	require.Equal(t, 3, p.Available())

	for i := 0; i < 3; i++ {
		require.NotNil(t, p.Get())
	}
	require.Equal(t, 3, p.Len(), "pre-allocated instances are reused before growing")
	require.Equal(t, 0, p.Available())
}

func TestGetGrowsWhenEmpty(t *testing.T) {
	p := New[widget](0)

	a := p.Get()
	b := p.Get()
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotSame(t, a, b)
	require.Equal(t, 2, p.Len())
	require.True(t, isBorrowed(p, a))
	require.True(t, isBorrowed(p, b))
}

func TestReturnIsLIFOAndKeepsState(t *testing.T) {
	p := New[widget](0)
	a := p.Get()
	b := p.Get()
	a.n = 7
	b.n = 9

	require.NoError(t, p.Return(a))
	require.NoError(t, p.Return(b))
	require.False(t, isBorrowed(p, a))

	got := p.Get()
	require.Same(t, b, got)
	assert.Equal(t, 9, got.n, "Return must not reset fields")

	got = p.Get()
	require.Same(t, a, got)
	assert.Equal(t, 7, got.n)
	assert.Equal(t, 2, p.Len())
}

func TestReturnViolations(t *testing.T) {
	p := New[widget](0)
	a := p.Get()
	require.NoError(t, p.Return(a))

	t.Run("double return", func(t *testing.T) {
		err := p.Return(a)
		require.ErrorIs(t, err, ErrNotBorrowed)
		require.Equal(t, 1, p.Available(), "rejected return must not change the pool")
	})

	t.Run("foreign instance", func(t *testing.T) {
		err := p.Return(&widget{})
		require.ErrorIs(t, err, ErrForeign)
		require.Equal(t, 1, p.Available())
		require.Equal(t, 1, p.Len())
	})

	t.Run("never borrowed after prealloc", func(t *testing.T) {
		q := New[widget](1)
		var first *widget
		for v := range q.All() {
			first = v
		}
		require.ErrorIs(t, q.Return(first), ErrNotBorrowed)
	})
}

func TestResetReusesWithoutConstruction(t *testing.T) {
	p := New[widget](0)
	seen := make(map[*widget]bool)
	for i := 0; i < 5; i++ {
		seen[p.Get()] = true
	}
	require.Equal(t, 5, p.Len())

	p.Reset()
	require.Equal(t, 5, p.Available())

	for i := 0; i < 5; i++ {
		v := p.Get()
		require.True(t, seen[v], "Get after Reset must hand out a previously constructed instance")
	}
	require.Equal(t, 5, p.Len())

	// One more than was ever constructed grows the pool.
	p.Get()
	require.Equal(t, 6, p.Len())
}

func TestAllConstructionOrder(t *testing.T) {
	p := New[widget](0)
	var want []*widget
	for i := 0; i < 4; i++ {
		want = append(want, p.Get())
	}
	require.NoError(t, p.Return(want[1]))

	var got []*widget
	for v := range p.All() {
		got = append(got, v)
	}
	require.Equal(t, want, got)

	count := 0
	for range p.All() {
		count++
		break
	}
	require.Equal(t, 1, count)
}
