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

// lineVertex is the position+color layout the line and debug-draw batches
// share: 3 floats position, 4 floats color, 28 bytes/vertex.
type lineVertex struct {
	pos   mgl32.Vec3
	color mgl32.Vec4
}

const lineVertexStride = 7 * 4

// LineRender accumulates line segments submitted during UPDATE (by, e.g.,
// host debug calls or other systems) into one GL_LINES draw per layer per
// frame, then clears for the next frame. Grounded in fizzle's
// NewLineRenderer, generalized from a single buffer to per-layer batches
// drawn through a scoped StateContext. Resource key "core/line" names the
// flat vertex-color shader this pass uses.
type LineRender struct {
	GL      gfx.Provider
	State   *gfxstate.StateContext
	Shaders *resource.Manager[*render.Shader]

	vao     gfx.VertexArray
	vbo     gfx.Buffer
	cap     int32
	pending map[ecs.Layer][]lineVertex
}

func NewLineRender(gl gfx.Provider, state *gfxstate.StateContext, shaders *resource.Manager[*render.Shader]) *LineRender {
	return &LineRender{
		GL:      gl,
		State:   state,
		Shaders: shaders,
		pending: make(map[ecs.Layer][]lineVertex),
	}
}

func (*LineRender) Name() string     { return "line_render" }
func (*LineRender) Phase() ecs.Phase { return ecs.PhaseRender }
func (*LineRender) Priority() int    { return 100 }

// AddLine queues one segment from..to, in the given color, for the next
// time Run processes layer. Safe to call during UPDATE, before this
// system's RENDER pass flushes the batch.
func (s *LineRender) AddLine(layer ecs.Layer, from, to mgl32.Vec3, color mgl32.Vec4) {
	s.pending[layer] = append(s.pending[layer], lineVertex{from, color}, lineVertex{to, color})
}

func (s *LineRender) ensureBuffers() {
	if s.vao != 0 {
		return
	}
	s.vao = s.GL.GenVertexArray()
	s.vbo = s.GL.GenBuffer()
	s.GL.BindVertexArray(s.vao)
	s.GL.BindBuffer(gfx.ARRAY_BUFFER, s.vbo)
	s.GL.EnableVertexAttribArray(0)
	s.GL.VertexAttribPointer(0, 3, gfx.FLOAT, false, lineVertexStride, s.GL.PtrOffset(0))
	s.GL.EnableVertexAttribArray(1)
	s.GL.VertexAttribPointer(1, 4, gfx.FLOAT, false, lineVertexStride, s.GL.PtrOffset(3*4))
	s.GL.BindVertexArray(0)
}

func (s *LineRender) upload(verts []lineVertex) {
	flat := make([]float32, 0, len(verts)*7)
	for _, v := range verts {
		flat = append(flat, v.pos[0], v.pos[1], v.pos[2], v.color[0], v.color[1], v.color[2], v.color[3])
	}
	s.GL.BindBuffer(gfx.ARRAY_BUFFER, s.vbo)
	size := int32(len(flat) * 4)
	if size > s.cap {
		s.GL.BufferData(gfx.ARRAY_BUFFER, len(flat)*4, s.GL.Ptr(flat), gfx.STREAM_DRAW)
		s.cap = size
	} else {
		s.GL.BufferSubData(gfx.ARRAY_BUFFER, 0, len(flat)*4, s.GL.Ptr(flat))
	}
}

func (s *LineRender) Run(w *ecs.World, ctx ecs.FrameContext) error {
	return s.flushLayer(w, ctx.Layer)
}

// flushLayer draws and clears whatever has been queued for layer so far.
// Shared by Run (priority 100) and DebugRender (priority 1000), which
// flushes its own box wireframes immediately rather than leaving them
// queued for next frame's Run.
func (s *LineRender) flushLayer(w *ecs.World, layer ecs.Layer) error {
	verts := s.pending[layer]
	delete(s.pending, layer)
	if len(verts) == 0 {
		return nil
	}
	camID, hasCam := w.Scene.ActiveCamera()
	if !hasCam {
		return nil
	}
	vp := cameraViewProjection(w, camID)

	shaderHandle, err := s.Shaders.Get("core/line")
	if err != nil {
		groggy.Logsf("WARN", "line_render: shader unavailable: %v", err)
		return nil
	}
	defer shaderHandle.Release()
	shader, err := shaderHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "line_render: shader invalid: %v", err)
		return nil
	}

	s.ensureBuffers()
	s.upload(verts)

	s.State.Push()
	s.State.SetDepthTestEnable(false)
	shader.Use()
	if loc := shader.UniformLocation("viewProjection"); loc >= 0 {
		s.GL.UniformMatrix4fv(loc, 1, false, vp)
	}
	s.GL.BindVertexArray(s.vao)
	s.GL.DrawArrays(gfx.LINES, 0, int32(len(verts)))
	s.State.Pop()
	return nil
}
