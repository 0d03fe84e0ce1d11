package renderer

import (
	"iter"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/camera"
	"github.com/pthm-cable/critters/game"
)

// Fallback colors when an agent's texture is unavailable.
var (
	CritterColor   = rl.Color{R: 70, G: 130, B: 180, A: 255}
	DestroyerColor = rl.Color{R: 200, G: 60, B: 60, A: 255}
	ArenaColor     = rl.Color{R: 245, G: 245, B: 245, A: 255}
	BorderColor    = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// AgentRenderer draws agents as textured quads, or circles when a texture
// is missing.
type AgentRenderer struct {
	textures *TextureCache
}

// NewAgentRenderer creates an agent renderer backed by the given cache.
func NewAgentRenderer(textures *TextureCache) *AgentRenderer {
	return &AgentRenderer{textures: textures}
}

// DrawArena fills the arena rectangle and outlines its walls.
func (r *AgentRenderer) DrawArena(cam *camera.Camera) {
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(cam.WorldW, cam.WorldH)
	rect := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawRectangleRec(rect, ArenaColor)
	rl.DrawRectangleLinesEx(rect, 2, BorderColor)
}

// Draw renders every visible agent and returns how many were drawn.
func (r *AgentRenderer) Draw(cam *camera.Camera, agents iter.Seq[game.AgentView]) int {
	drawn := 0
	for a := range agents {
		x, y, radius := float32(a.Pos.X), float32(a.Pos.Y), float32(a.Radius)
		if !cam.IsVisible(x, y, radius) {
			continue
		}

		sx, sy := cam.WorldToScreen(x, y)
		sr := radius * cam.Zoom

		if tex, ok := r.textures.Get(a.Resource); ok {
			src := rl.Rectangle{Width: float32(tex.Width), Height: float32(tex.Height)}
			dst := rl.Rectangle{X: sx - sr, Y: sy - sr, Width: 2 * sr, Height: 2 * sr}
			rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
		} else {
			color := CritterColor
			if a.Destroyer {
				color = DestroyerColor
			}
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, max(sr, 1), color)
		}
		drawn++
	}
	return drawn
}
