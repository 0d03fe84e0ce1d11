package systems

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
)

const testMaxSpeed = 80

func newAgent(x, y, vx, vy, r float64) *components.Agent {
	a := &components.Agent{}
	a.Init(r2.Vec{X: x, Y: y}, r2.Vec{X: vx, Y: vy}, r, "critter")
	return a
}

func buildTree(t *testing.T, agents []*components.Agent) *QuadTree[*components.Agent] {
	t.Helper()
	q, err := NewQuadTree[*components.Agent](arena.Region(), DefaultCapacity, DefaultMaxDepth)
	require.NoError(t, err)
	for _, a := range agents {
		if a.Active() {
			require.True(t, q.Insert(a, a.Pos))
		}
	}
	return q
}

func TestEliminate(t *testing.T) {
	destroyer := newAgent(400, 225, 80, 0, 20)
	near := newAgent(405, 225, 0, 0, 12)
	edge := newAgent(432, 225, 0, 0, 12) // distance 32 == sum of radii
	far := newAgent(100, 100, 0, 0, 12)
	agents := []*components.Agent{near, edge, far, destroyer}

	var released []*components.Agent
	killed := Eliminate(destroyer, slices.Values(agents), func(a *components.Agent) {
		released = append(released, a)
	})

	assert.Equal(t, 1, killed)
	assert.Equal(t, []*components.Agent{near}, released)
	assert.Equal(t, components.Inactive, near.State())
	assert.True(t, edge.Active(), "touching exactly is not a kill")
	assert.True(t, far.Active())
	assert.True(t, destroyer.Active(), "the destroyer never eliminates itself")
}

func TestEliminateInactiveDestroyer(t *testing.T) {
	destroyer := newAgent(400, 225, 0, 0, 20)
	destroyer.Destroy()
	victim := newAgent(400, 225, 0, 0, 12)

	killed := Eliminate(destroyer, slices.Values([]*components.Agent{victim}), func(*components.Agent) {
		t.Fatal("release must not be called")
	})
	assert.Zero(t, killed)
	assert.True(t, victim.Active())
}

func TestResolveHeadOn(t *testing.T) {
	a := newAgent(100, 100, 10, 0, 5)
	b := newAgent(108, 100, -10, 0, 5)
	a.Update(0.5)
	b.Update(0.5)
	require.InDelta(t, 105, a.Pos.X, 1e-9)
	require.InDelta(t, 103, b.Pos.X, 1e-9)

	agents := []*components.Agent{a, b}
	sys := NewCollisionSystem(testMaxSpeed)
	n := sys.Resolve(slices.Values(agents), buildTree(t, agents))

	assert.Equal(t, 1, n)
	assert.True(t, a.Dirty())
	assert.True(t, b.Dirty())
	// The a→b normal points along -x after the agents crossed.
	assert.InDelta(t, testMaxSpeed, a.Vel.X, 1e-9)
	assert.InDelta(t, 0, a.Vel.Y, 1e-9)
	assert.InDelta(t, -testMaxSpeed, b.Vel.X, 1e-9)
	assert.InDelta(t, 0, b.Vel.Y, 1e-9)
}

func TestResolveSeparatesAlongNormal(t *testing.T) {
	a := newAgent(200, 200, 0, 0, 10)
	b := newAgent(206, 208, 0, 0, 10) // distance 10, normal (0.6, 0.8)
	agents := []*components.Agent{a, b}

	NewCollisionSystem(testMaxSpeed).Resolve(slices.Values(agents), buildTree(t, agents))

	assert.InDelta(t, -0.6*testMaxSpeed, a.Vel.X, 1e-9)
	assert.InDelta(t, -0.8*testMaxSpeed, a.Vel.Y, 1e-9)
	assert.InDelta(t, 0.6*testMaxSpeed, b.Vel.X, 1e-9)
	assert.InDelta(t, 0.8*testMaxSpeed, b.Vel.Y, 1e-9)
}

func TestResolveOneResponsePerAgent(t *testing.T) {
	// Three mutually overlapping agents: the first pair wins, the third is
	// left alone because both its neighbours are already dirty.
	a := newAgent(300, 300, 1, 1, 10)
	b := newAgent(305, 300, 2, 2, 10)
	c := newAgent(302, 304, 3, 3, 10)
	agents := []*components.Agent{a, b, c}

	n := NewCollisionSystem(testMaxSpeed).Resolve(slices.Values(agents), buildTree(t, agents))

	assert.Equal(t, 1, n)
	assert.True(t, a.Dirty())
	assert.True(t, b.Dirty())
	assert.False(t, c.Dirty())
	assert.Equal(t, r2.Vec{X: 3, Y: 3}, c.Vel)
}

func TestResolveDirtyFlagLimitsChanges(t *testing.T) {
	// A dense cluster: count velocity assignments per agent.
	var agents []*components.Agent
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			agents = append(agents, newAgent(100+float64(i)*5, 100+float64(j)*5, 0, 0, 6))
		}
	}
	before := make(map[*components.Agent]r2.Vec, len(agents))
	for _, a := range agents {
		before[a] = a.Vel
	}

	n := NewCollisionSystem(testMaxSpeed).Resolve(slices.Values(agents), buildTree(t, agents))
	require.Positive(t, n)

	dirty := 0
	for _, a := range agents {
		if a.Dirty() {
			dirty++
			assert.InDelta(t, testMaxSpeed, r2.Norm(a.Vel), 1e-9)
		} else {
			assert.Equal(t, before[a], a.Vel, "a clean agent keeps its velocity")
		}
	}
	assert.Equal(t, 2*n, dirty, "each response touches exactly two fresh agents")
}

func TestResolveSkipsInactiveAndDirty(t *testing.T) {
	a := newAgent(100, 100, 0, 0, 10)
	b := newAgent(105, 100, 0, 0, 10)
	b.MarkDirty()
	agents := []*components.Agent{a, b}
	tree := buildTree(t, agents)

	assert.Zero(t, NewCollisionSystem(testMaxSpeed).Resolve(slices.Values(agents), tree))
	assert.False(t, a.Dirty())
}

func TestResolveZeroRadius(t *testing.T) {
	a := newAgent(50, 50, 0, 0, 0)
	b := newAgent(50, 50, 0, 0, 0)
	c := newAgent(50.5, 50, 0, 0, 0)
	agents := []*components.Agent{a, b, c}

	n := NewCollisionSystem(testMaxSpeed).Resolve(slices.Values(agents), buildTree(t, agents))

	assert.Equal(t, 1, n, "coincident zero-radius agents collide")
	assert.True(t, a.Dirty())
	assert.True(t, b.Dirty())
	assert.False(t, c.Dirty())
	// Coincident centres fall back to the x-axis normal.
	assert.Equal(t, r2.Vec{X: -testMaxSpeed}, a.Vel)
	assert.Equal(t, r2.Vec{X: testMaxSpeed}, b.Vel)
}
