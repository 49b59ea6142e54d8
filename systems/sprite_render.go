package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tbogdala/groggy"

	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/gfxstate"
	"github.com/embergrove/forgecs/render"
	"github.com/embergrove/forgecs/resource"
)

// spriteVertex is the layout the accumulated quad batch uses: screen-space
// xy, uv, rgba. 9 floats, 36 bytes/vertex.
type spriteVertex struct {
	pos   mgl32.Vec2
	uv    mgl32.Vec2
	color mgl32.Vec4
}

const spriteVertexStride = 9 * 4

// SpriteRender accumulates screen-space quads submitted during UPDATE per
// layer and draws them in that layer's RENDER pass, projected with an
// orthographic matrix built from the current viewport size rather than the
// active camera. Each queued sprite is its own draw call; sprites are not
// merged into one batched draw. Grounded
// in fizzle's ui_manager.go sprite batching, generalized to a per-layer
// immediate-mode queue instead of a fixed widget tree. Resource key
// "core/sprite" names the textured quad shader this pass uses.
type SpriteRender struct {
	GL       gfx.Provider
	State    *gfxstate.StateContext
	Shaders  *resource.Manager[*render.Shader]
	Textures *resource.Manager[gfx.Texture]

	vao     gfx.VertexArray
	vbo     gfx.Buffer
	cap     int32
	pending map[ecs.Layer][]spriteBatchEntry
}

type spriteBatchEntry struct {
	texKey string
	verts  [6]spriteVertex
}

func NewSpriteRender(gl gfx.Provider, state *gfxstate.StateContext, shaders *resource.Manager[*render.Shader], textures *resource.Manager[gfx.Texture]) *SpriteRender {
	return &SpriteRender{
		GL:       gl,
		State:    state,
		Shaders:  shaders,
		Textures: textures,
		pending:  make(map[ecs.Layer][]spriteBatchEntry),
	}
}

func (*SpriteRender) Name() string     { return "sprite_render" }
func (*SpriteRender) Phase() ecs.Phase { return ecs.PhaseRender }
func (*SpriteRender) Priority() int    { return 200 }

// AddSprite queues a screen-space quad: center position (pixels, origin
// top-left), half-extent, texture resource key, and tint color.
func (s *SpriteRender) AddSprite(layer ecs.Layer, center, halfExtent mgl32.Vec2, texKey string, color mgl32.Vec4) {
	tl := mgl32.Vec2{center[0] - halfExtent[0], center[1] - halfExtent[1]}
	tr := mgl32.Vec2{center[0] + halfExtent[0], center[1] - halfExtent[1]}
	bl := mgl32.Vec2{center[0] - halfExtent[0], center[1] + halfExtent[1]}
	br := mgl32.Vec2{center[0] + halfExtent[0], center[1] + halfExtent[1]}

	entry := spriteBatchEntry{texKey: texKey, verts: [6]spriteVertex{
		{tl, mgl32.Vec2{0, 0}, color},
		{bl, mgl32.Vec2{0, 1}, color},
		{tr, mgl32.Vec2{1, 0}, color},
		{tr, mgl32.Vec2{1, 0}, color},
		{bl, mgl32.Vec2{0, 1}, color},
		{br, mgl32.Vec2{1, 1}, color},
	}}
	s.pending[layer] = append(s.pending[layer], entry)
}

func (s *SpriteRender) ensureBuffers() {
	if s.vao != 0 {
		return
	}
	s.vao = s.GL.GenVertexArray()
	s.vbo = s.GL.GenBuffer()
	s.GL.BindVertexArray(s.vao)
	s.GL.BindBuffer(gfx.ARRAY_BUFFER, s.vbo)
	s.GL.EnableVertexAttribArray(0)
	s.GL.VertexAttribPointer(0, 2, gfx.FLOAT, false, spriteVertexStride, s.GL.PtrOffset(0))
	s.GL.EnableVertexAttribArray(1)
	s.GL.VertexAttribPointer(1, 2, gfx.FLOAT, false, spriteVertexStride, s.GL.PtrOffset(2*4))
	s.GL.EnableVertexAttribArray(2)
	s.GL.VertexAttribPointer(2, 4, gfx.FLOAT, false, spriteVertexStride, s.GL.PtrOffset(4*4))
	s.GL.BindVertexArray(0)
}

func (s *SpriteRender) Run(w *ecs.World, ctx ecs.FrameContext) error {
	entries := s.pending[ctx.Layer]
	delete(s.pending, ctx.Layer)
	if len(entries) == 0 {
		return nil
	}
	vw, vh, ok := w.Scene.ViewportSize()
	if !ok || vw == 0 || vh == 0 {
		return nil
	}
	ortho := mgl32.Ortho2D(0, float32(vw), float32(vh), 0)

	shaderHandle, err := s.Shaders.Get("core/sprite")
	if err != nil {
		groggy.Logsf("WARN", "sprite_render: shader unavailable: %v", err)
		return nil
	}
	defer shaderHandle.Release()
	shader, err := shaderHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "sprite_render: shader invalid: %v", err)
		return nil
	}

	s.ensureBuffers()

	s.State.Push()
	s.State.SetDepthTestEnable(false)
	s.State.SetBlendEnable(true)
	s.State.SetBlendFunc(gfx.SRC_ALPHA, gfx.ONE_MINUS_SRC_ALPHA)
	shader.Use()
	if loc := shader.UniformLocation("projection"); loc >= 0 {
		s.GL.UniformMatrix4fv(loc, 1, false, ortho)
	}

	// Each sprite is drawn with its own texture bound, and the texture is
	// bound again for every sprite even when consecutive sprites share a
	// texture key; batching across the whole frame — texture atlasing — is
	// left to the host.
	for _, e := range entries {
		if err := s.bindTexture(e.texKey, shader); err != nil {
			groggy.Logsf("WARN", "sprite_render: texture %q unavailable: %v", e.texKey, err)
			continue
		}
		flat := make([]float32, 0, 6*9)
		for _, v := range e.verts {
			flat = append(flat, v.pos[0], v.pos[1], v.uv[0], v.uv[1], v.color[0], v.color[1], v.color[2], v.color[3])
		}
		s.GL.BindBuffer(gfx.ARRAY_BUFFER, s.vbo)
		size := int32(len(flat) * 4)
		if size > s.cap {
			s.GL.BufferData(gfx.ARRAY_BUFFER, len(flat)*4, s.GL.Ptr(flat), gfx.STREAM_DRAW)
			s.cap = size
		} else {
			s.GL.BufferSubData(gfx.ARRAY_BUFFER, 0, len(flat)*4, s.GL.Ptr(flat))
		}
		s.GL.BindVertexArray(s.vao)
		s.GL.DrawArrays(gfx.TRIANGLES, 0, 6)
	}
	s.State.Pop()
	return nil
}

func (s *SpriteRender) bindTexture(key string, shader *render.Shader) error {
	if key == "" {
		return nil
	}
	h, err := s.Textures.Get(key)
	if err != nil {
		return err
	}
	defer h.Release()
	tex, err := h.Get()
	if err != nil {
		return err
	}
	s.State.SetActiveTexture(gfx.TEXTURE0)
	s.State.SetBoundTexture2D(tex)
	if loc := shader.UniformLocation("tex"); loc >= 0 {
		s.GL.Uniform1i(loc, 0)
	}
	return nil
}
