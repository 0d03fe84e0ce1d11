package ui

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/camera"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/renderer"
)

const controlsLegend = "SPACE pause | R restart | S snapshot | , . speed | arrows pan | wheel/+/- zoom | HOME reset view | P perf | F11 fullscreen"

// Viewer drives a game from the raylib window loop. The window must be open
// before NewViewer is called.
type Viewer struct {
	game     *game.Game
	camera   *camera.Camera
	textures *renderer.TextureCache
	agents   *renderer.AgentRenderer
	hud      *HUD
	perf     *PerfPanel

	screenWidth, screenHeight float32
}

// NewViewer creates a viewer for g, loading textures from assetDir.
func NewViewer(g *game.Game, assetDir string) *Viewer {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	b := g.Bounds()
	textures := renderer.NewTextureCache(assetDir)

	return &Viewer{
		game:         g,
		camera:       camera.New(w, h, float32(b.Width), float32(b.Height)),
		textures:     textures,
		agents:       renderer.NewAgentRenderer(textures),
		hud:          NewHUD(),
		perf:         NewPerfPanel(int32(w)-300, 10),
		screenWidth:  w,
		screenHeight: h,
	}
}

// Run updates and draws frames until the window closes or maxTicks ticks
// have run (0 = unlimited).
func (v *Viewer) Run(maxTicks int64) {
	for !rl.WindowShouldClose() {
		v.handleInput()
		v.game.Update(float64(rl.GetFrameTime()))
		v.Draw()

		if maxTicks > 0 && v.game.Ticks() >= maxTicks {
			break
		}
	}
}

// Unload releases GPU resources.
func (v *Viewer) Unload() {
	v.textures.Unload()
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(rl.DarkGray)
	v.agents.DrawArena(v.camera)
	drawn := v.agents.Draw(v.camera, v.game.ActiveAgents())

	size, available := v.game.PoolStats()

	actions := v.hud.Draw(HUDData{
		Title:     "Critter Arena",
		Tick:      v.game.Ticks(),
		SimTime:   v.game.SimTime(),
		Active:    size - available,
		PoolSize:  size,
		Available: available,
		Drawn:     drawn,
		Speed:     v.game.Speed(),
		MaxSpeed:  game.MaxSpeed,
		FPS:       rl.GetFPS(),
		Paused:    v.game.Paused(),
		Stats:     v.game.LastStats(),
	})
	v.perf.Draw(v.game.PerfStats())
	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)

	v.apply(actions)
}

// apply carries out HUD control actions.
func (v *Viewer) apply(a HUDActions) {
	if a.TogglePause {
		v.game.TogglePause()
	}
	if a.Restart {
		v.game.Restart()
	}
	if a.Speed != v.game.Speed() {
		v.game.SetSpeed(a.Speed)
	}
}

// handleInput processes keyboard input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.game.Restart()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		if _, err := v.game.SaveSnapshot(); err != nil {
			slog.Warn("snapshot_failed", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.perf.Toggle()
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.game.SetSpeed(v.game.Speed() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.game.SetSpeed(v.game.Speed() + 1)
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.camera.Resize(w, h)
	v.perf.SetPosition(int32(w)-300, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	cam := v.camera

	// Pan speed is in screen pixels, so it feels the same at every zoom
	const panSpeed = float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}
}
