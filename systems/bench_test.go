package systems

import (
	"math/rand"
	"slices"
	"strconv"
	"testing"

	"github.com/pthm-cable/critters/components"
)

func benchAgents(n int) []*components.Agent {
	rng := rand.New(rand.NewSource(1))
	agents := make([]*components.Agent, n)
	for i := range agents {
		agents[i] = newAgent(rng.Float64()*arena.Width, rng.Float64()*arena.Height,
			rng.Float64()*160-80, rng.Float64()*160-80, 12)
	}
	return agents
}

func benchTree(b *testing.B) *QuadTree[*components.Agent] {
	b.Helper()
	q, err := NewQuadTree[*components.Agent](arena.Region(), DefaultCapacity, DefaultMaxDepth)
	if err != nil {
		b.Fatal(err)
	}
	return q
}

func BenchmarkQuadTreeRebuild(b *testing.B) {
	for _, n := range []int{50, 500, 5000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			agents := benchAgents(n)
			q := benchTree(b)

			b.ResetTimer()
			for range b.N {
				q.Clear()
				for _, a := range agents {
					q.Insert(a, a.Pos)
				}
			}
		})
	}
}

func BenchmarkQuadTreeQuery(b *testing.B) {
	agents := benchAgents(500)
	q := benchTree(b)
	for _, a := range agents {
		q.Insert(a, a.Pos)
	}
	out := make([]*components.Agent, 0, 64)

	b.ResetTimer()
	for i := range b.N {
		a := agents[i%len(agents)]
		out = q.Query(RegionAround(a.Pos, 4*a.Radius), out[:0])
	}
}

func BenchmarkResolve(b *testing.B) {
	agents := benchAgents(500)
	q := benchTree(b)
	s := NewCollisionSystem(testMaxSpeed)

	b.ResetTimer()
	for range b.N {
		q.Clear()
		for _, a := range agents {
			a.Update(0)
			q.Insert(a, a.Pos)
		}
		s.Resolve(slices.Values(agents), q)
	}
}

func BenchmarkIntegrate(b *testing.B) {
	agents := benchAgents(5000)

	b.ResetTimer()
	for range b.N {
		for _, a := range agents {
			Integrate(a, 1.0/60, arena)
		}
	}
}
