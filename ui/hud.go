package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      int64
	SimTime   float64
	Active    int
	PoolSize  int
	Available int
	Drawn     int
	Speed     int
	MaxSpeed  int
	FPS       int32
	Paused    bool
	Stats     telemetry.WindowStats
}

// HUDActions reports what the user did with the HUD controls this frame.
type HUDActions struct {
	TogglePause bool
	Restart     bool
	Speed       int
}

// HUD renders the main heads-up display and its raygui controls.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a new HUD renderer anchored at the top-left corner.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        10,
		y:        10,
		width:    260,
	}
}

// Draw renders the HUD and returns the control actions taken this frame.
func (h *HUD) Draw(data HUDData) HUDActions {
	r := h.renderer
	pad := r.Theme.Padding
	lh := r.Theme.LineHeight

	height := 11*lh + 3*pad + 64
	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + pad
	y := r.DrawSectionHeader(x, h.y+pad, data.Title)

	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d (%.1fs)", data.Tick, data.SimTime))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawBar(x, y, "Active", float32(data.Active), float32(data.PoolSize), h.width-2*pad)
	y = r.DrawLabelValue(x, y, "Pool", fmt.Sprintf("%d owned, %d free", data.PoolSize, data.Available))
	y = r.DrawLabelValue(x, y, "Drawn", fmt.Sprintf("%d", data.Drawn))

	s := data.Stats
	y = r.DrawLabelValue(x, y, "Eliminated", fmt.Sprintf("%d", s.Eliminations))
	y = r.DrawLabelValue(x, y, "Collisions", fmt.Sprintf("%d", s.Collisions))
	y = r.DrawLabelValue(x, y, "Respawned", fmt.Sprintf("%d", s.Respawns))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.1f +/- %.1f", s.SpeedMean, s.SpeedStd))
	y = r.DrawLabelValue(x, y, "Quadtree", fmt.Sprintf("%d nodes, depth %d", s.TreeNodes, s.TreeDepth))
	y += pad

	actions := HUDActions{Speed: data.Speed}

	pauseText := "Pause"
	if data.Paused {
		pauseText = "Resume"
	}
	fx, fy := float32(x), float32(y)
	if gui.Button(rl.Rectangle{X: fx, Y: fy, Width: 110, Height: 24}, pauseText) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: fx + 120, Y: fy, Width: 110, Height: 24}, "Restart") {
		actions.Restart = true
	}

	fy += 34
	speed := gui.SliderBar(
		rl.Rectangle{X: fx + 40, Y: fy, Width: 150, Height: 20},
		"1x", fmt.Sprintf("%dx", data.MaxSpeed),
		float32(data.Speed), 1, float32(data.MaxSpeed),
	)
	actions.Speed = int(speed + 0.5)

	if data.Paused {
		rl.DrawText("PAUSED", h.x+h.width+10, h.y, 20, r.Theme.WarnColor)
	}
	return actions
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the tick phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	visible  bool
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Toggle switches panel visibility.
func (p *PerfPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	if !p.visible {
		return
	}
	x, y := p.x, p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.DarkGray)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.DarkBlue)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]

		color := rl.Gray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
