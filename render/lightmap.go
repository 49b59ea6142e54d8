package render

import (
	"fmt"

	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/gfxstate"
)

// LightmapSize is the fixed edge length of the host-supplied lightmap:
// a 16x16 RGB grid indexed by (blockLight, skyLight).
const LightmapSize = 16

// lightmapUnit is the texture unit the lightmap occupies during a lit
// draw, the last unit so material textures filling units 0..6 never
// collide with it.
const lightmapUnit = MaxTextures - 1

// Lightmap owns the GL texture behind the host's per-frame lightmap
// upload. Lit shader keys sample it under the "lightmap" uniform; unlit
// shaders simply have no such uniform and skip the binding cost.
type Lightmap struct {
	gl  gfx.Provider
	tex gfx.Texture
}

// NewLightmap allocates the 16x16 texture with nearest filtering: light
// cells are discrete levels, not an image to smooth.
func NewLightmap(gl gfx.Provider) *Lightmap {
	tex := gl.GenTexture()
	gl.BindTexture(gfx.TEXTURE_2D, tex)
	gl.TexImage2D(gfx.TEXTURE_2D, 0, int32(gfx.RGB), LightmapSize, LightmapSize, 0, gfx.RGB, gfx.UNSIGNED_BYTE, nil, 0)
	gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MIN_FILTER, int32(gfx.NEAREST))
	gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MAG_FILTER, int32(gfx.NEAREST))
	gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_S, int32(gfx.CLAMP_TO_EDGE))
	gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_T, int32(gfx.CLAMP_TO_EDGE))
	return &Lightmap{gl: gl, tex: tex}
}

// Update re-uploads the full 16x16 RGB grid. pixels must hold exactly
// 16*16*3 bytes, row-major.
func (l *Lightmap) Update(pixels []byte) error {
	want := LightmapSize * LightmapSize * 3
	if len(pixels) != want {
		return fmt.Errorf("render: lightmap upload needs %d bytes, got %d", want, len(pixels))
	}
	l.gl.BindTexture(gfx.TEXTURE_2D, l.tex)
	l.gl.TexImage2D(gfx.TEXTURE_2D, 0, int32(gfx.RGB), LightmapSize, LightmapSize, 0, gfx.RGB, gfx.UNSIGNED_BYTE, l.gl.Ptr(pixels), len(pixels))
	return nil
}

// Bind attaches the lightmap to its reserved unit and points shader's
// "lightmap" sampler at it, through state so the scope restores whatever
// the host had on that unit. No-op when the shader has no lightmap
// uniform. Must be called inside an open state scope.
func (l *Lightmap) Bind(gl gfx.Provider, state *gfxstate.StateContext, shader *Shader) {
	loc := shader.UniformLocation("lightmap")
	if loc < 0 {
		return
	}
	state.SetActiveTexture(gfx.TEXTURE0 + gfx.Enum(lightmapUnit))
	state.SetBoundTexture2D(l.tex)
	gl.Uniform1i(loc, int32(lightmapUnit))
}

// Dispose frees the GL texture.
func (l *Lightmap) Dispose() {
	l.gl.DeleteTexture(l.tex)
}
