package components

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestAgentLifecycle(t *testing.T) {
	var a Agent
	require.Equal(t, Uninitialized, a.State())
	require.True(t, a.Dead())

	a.Init(r2.Vec{X: 10, Y: 20}, r2.Vec{X: 1, Y: -1}, 12, "critter")
	require.Equal(t, Active, a.State())
	require.True(t, a.Active())
	require.False(t, a.Dirty())

	a.MarkDirty()
	a.Destroy()
	require.Equal(t, Inactive, a.State())
	require.Equal(t, r2.Vec{X: 10, Y: 20}, a.Pos, "Destroy keeps position")
	require.Equal(t, ResourceKey("critter"), a.Resource, "Destroy keeps resource")

	a.Reset(r2.Vec{X: 1, Y: 2}, r2.Vec{}, 5, "other")
	require.Equal(t, Active, a.State())
	require.False(t, a.Dirty(), "Reset clears the dirty flag")
	require.Equal(t, 5.0, a.Radius)
	require.Equal(t, ResourceKey("other"), a.Resource)
}

func TestAgentUpdate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(a *Agent)
		dt      float64
		wantPos r2.Vec
		dirty   bool
	}{
		{
			name: "active integrates and clears dirty",
			setup: func(a *Agent) {
				a.Init(r2.Vec{X: 100, Y: 100}, r2.Vec{X: 10, Y: -4}, 5, "")
				a.MarkDirty()
			},
			dt:      0.5,
			wantPos: r2.Vec{X: 105, Y: 98},
			dirty:   false,
		},
		{
			name: "inactive is untouched",
			setup: func(a *Agent) {
				a.Init(r2.Vec{X: 100, Y: 100}, r2.Vec{X: 10, Y: 0}, 5, "")
				a.MarkDirty()
				a.Destroy()
			},
			dt:      1,
			wantPos: r2.Vec{X: 100, Y: 100},
			dirty:   true,
		},
		{
			name:    "uninitialized is untouched",
			setup:   func(a *Agent) {},
			dt:      1,
			wantPos: r2.Vec{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var a Agent
			tc.setup(&a)
			a.Update(tc.dt)
			require.InDelta(t, tc.wantPos.X, a.Pos.X, 1e-9)
			require.InDelta(t, tc.wantPos.Y, a.Pos.Y, 1e-9)
			require.Equal(t, tc.dirty, a.Dirty())
		})
	}
}
