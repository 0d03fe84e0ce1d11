package systems

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
)

// coincidentNormal is used when two colliding agents share a position and
// the contact normal is undefined.
var coincidentNormal = r2.Vec{X: 1, Y: 0}

// touching reports whether two circles overlap. Coincident centres always
// count, so zero-radius agents collide only when exactly on top of each
// other.
func touching(a, b r2.Vec, ra, rb float64) bool {
	d := distance(a, b)
	return d < ra+rb || d == 0
}

// Eliminate destroys every active agent that overlaps the destroyer and
// passes it to release. It returns the number of agents destroyed. The
// destroyer itself is skipped if it appears in agents.
func Eliminate(destroyer *components.Agent, agents iter.Seq[*components.Agent], release func(*components.Agent)) int {
	if !destroyer.Active() {
		return 0
	}

	killed := 0
	for a := range agents {
		if a == destroyer || !a.Active() {
			continue
		}
		if distance(a.Pos, destroyer.Pos) < a.Radius+destroyer.Radius {
			a.Destroy()
			release(a)
			killed++
		}
	}
	return killed
}

// CollisionSystem resolves agent-vs-agent contacts using the spatial index.
// Each agent gets at most one collision response per tick.
type CollisionSystem struct {
	MaxSpeed float64

	neighbours []*components.Agent // reused query buffer
}

// NewCollisionSystem creates a collision system that sets colliding agents
// to maxSpeed along the contact normal.
func NewCollisionSystem(maxSpeed float64) *CollisionSystem {
	return &CollisionSystem{
		MaxSpeed:   maxSpeed,
		neighbours: make([]*components.Agent, 0, 16),
	}
}

// Resolve runs the pairwise pass over agents. For each active, non-dirty
// agent a, the first non-dirty neighbour b it overlaps gets pushed away
// along the a→b normal while a is pushed the opposite way; both are marked
// dirty and a stops scanning. Returns the number of responses applied.
func (s *CollisionSystem) Resolve(agents iter.Seq[*components.Agent], tree *QuadTree[*components.Agent]) int {
	responses := 0
	for a := range agents {
		if !a.Active() || a.Dirty() {
			continue
		}

		s.neighbours = tree.Query(RegionAround(a.Pos, 2*a.Radius), s.neighbours[:0])
		for _, b := range s.neighbours {
			if b == a || b.Dirty() {
				continue
			}
			if !touching(a.Pos, b.Pos, a.Radius, b.Radius) {
				continue
			}

			normal := unitOr(r2.Sub(b.Pos, a.Pos), coincidentNormal)
			a.Vel = r2.Scale(-s.MaxSpeed, normal)
			b.Vel = r2.Scale(s.MaxSpeed, normal)
			a.MarkDirty()
			b.MarkDirty()
			responses++
			break
		}
	}
	clear(s.neighbours)
	return responses
}
