package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/telemetry"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name   string
		pos    float64
		extent float64
		n      int
		want   int
	}{
		{"origin", 0, 800, 80, 0},
		{"middle", 400, 800, 80, 40},
		{"far edge clamps", 800, 800, 80, 79},
		{"negative clamps", -5, 800, 80, 0},
		{"zero extent", 10, 0, 80, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cell(tt.pos, tt.extent, tt.n))
		})
	}
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name     string
		active   int
		free     int
		paused   bool
		contains []string
		excludes []string
	}{
		{
			name:     "running",
			active:   51,
			free:     14,
			contains: []string{"tick 120", "t=2.0s", "pool 51 (14 free)", "speed 3x"},
			excludes: []string{"PAUSED"},
		},
		{
			name:     "paused with empty pool",
			active:   65,
			free:     0,
			paused:   true,
			contains: []string{"pool 65 (0 free)", "PAUSED"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statusLine(120, 2.0, tt.active, tt.free, 3, tt.paused)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestRunFailsBeforeOpeningScreen(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg, err := config.Default()
		require.NoError(t, err)
		cfg.Arena.Width = math.NaN()

		assert.ErrorIs(t, run(cfg, game.Options{Seed: 1}, ""), config.ErrInvalid)
	})

	t.Run("missing snapshot", func(t *testing.T) {
		cfg, err := config.Default()
		require.NoError(t, err)

		err = run(cfg, game.Options{Seed: 1}, filepath.Join(t.TempDir(), "snapshot_1.json"))
		assert.ErrorContains(t, err, "failed to restore snapshot")
	})

	t.Run("snapshot from another arena", func(t *testing.T) {
		cfg, err := config.Default()
		require.NoError(t, err)
		snap := &telemetry.Snapshot{
			Version:     telemetry.SnapshotVersion,
			ArenaWidth:  cfg.Arena.Width + 1,
			ArenaHeight: cfg.Arena.Height,
		}
		path, err := telemetry.SaveSnapshot(snap, t.TempDir())
		require.NoError(t, err)

		assert.ErrorIs(t, run(cfg, game.Options{Seed: 1}, path), game.ErrSnapshotMismatch)
	})
}
