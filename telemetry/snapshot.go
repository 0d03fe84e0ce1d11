package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the arena state at one tick.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`

	ArenaWidth  float64 `json:"arena_width"`
	ArenaHeight float64 `json:"arena_height"`

	Tick    int64   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	PoolSize      int `json:"pool_size"`
	PoolAvailable int `json:"pool_available"`

	Agents []AgentState `json:"agents"`
}

// AgentState holds one active agent.
type AgentState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelX      float64 `json:"vel_x"`
	VelY      float64 `json:"vel_y"`
	Radius    float64 `json:"radius"`
	Resource  string  `json:"resource,omitempty"`
	Destroyer bool    `json:"destroyer,omitempty"`
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
