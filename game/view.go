package game

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
)

// AgentView is the read-only state a viewer needs to draw one agent.
type AgentView struct {
	Pos       r2.Vec
	Radius    float64
	Resource  components.ResourceKey
	Destroyer bool
}

func viewOf(a *components.Agent, destroyer bool) AgentView {
	return AgentView{
		Pos:       a.Pos,
		Radius:    a.Radius,
		Resource:  a.Resource,
		Destroyer: destroyer,
	}
}

// ActiveAgents yields every active agent, pooled agents first in pool
// order and the destroyer last. The sequence is lazy and must not be held
// across a Tick.
func (g *Game) ActiveAgents() iter.Seq[AgentView] {
	return func(yield func(AgentView) bool) {
		for a := range g.pool.All() {
			if !a.Active() {
				continue
			}
			if !yield(viewOf(a, false)) {
				return
			}
		}
		if g.destroyer.Active() {
			yield(viewOf(&g.destroyer, true))
		}
	}
}
