// Package renderer draws the arena with raylib.
package renderer

import (
	"log/slog"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/components"
)

// textureEntry caches one lookup, including failed ones so a missing file
// is only reported once.
type textureEntry struct {
	tex rl.Texture2D
	ok  bool
}

// TextureCache resolves resource keys to GPU textures. Keys are paths
// relative to the asset directory. Must be used on the raylib thread after
// the window is open.
type TextureCache struct {
	dir      string
	textures map[components.ResourceKey]textureEntry
}

// NewTextureCache creates a cache that loads textures from dir.
func NewTextureCache(dir string) *TextureCache {
	return &TextureCache{
		dir:      dir,
		textures: make(map[components.ResourceKey]textureEntry),
	}
}

// Get returns the texture for key, loading it on first use. ok is false when
// the key is empty or the file could not be loaded.
func (c *TextureCache) Get(key components.ResourceKey) (rl.Texture2D, bool) {
	if key == "" {
		return rl.Texture2D{}, false
	}
	if e, found := c.textures[key]; found {
		return e.tex, e.ok
	}

	e := c.load(key)
	c.textures[key] = e
	return e.tex, e.ok
}

func (c *TextureCache) load(key components.ResourceKey) textureEntry {
	path := filepath.Join(c.dir, filepath.FromSlash(string(key)))
	if _, err := os.Stat(path); err != nil {
		slog.Warn("texture_missing", "key", key, "path", path, "error", err)
		return textureEntry{}
	}

	tex := rl.LoadTexture(path)
	if tex.ID == 0 {
		slog.Warn("texture_load_failed", "key", key, "path", path)
		return textureEntry{}
	}
	return textureEntry{tex: tex, ok: true}
}

// Len returns the number of cached keys, loaded or not.
func (c *TextureCache) Len() int {
	return len(c.textures)
}

// Unload releases every loaded texture.
func (c *TextureCache) Unload() {
	for key, e := range c.textures {
		if e.ok {
			rl.UnloadTexture(e.tex)
		}
		delete(c.textures, key)
	}
}
