package particlesys

import (
	"github.com/tbogdala/groggy"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/gfxstate"
	"github.com/embergrove/forgecs/render"
	"github.com/embergrove/forgecs/resource"
)

// quadRecordStride is one particle's instance-attribute footprint: the
// 16-float record laid out as four vec4 columns at locations 2-5, matching
// the wire layout shared across the GPU SSBO, the CPU array, and this
// binding.
const quadRecordStride = RecordFloats * 4

const (
	attribQuadPos = 0
	attribQuadUV  = 1
	attribRecord0 = 2
	attribRecord1 = 3
	attribRecord2 = 4
	attribRecord3 = 5
)

// RenderSystem draws every ParticleBuffer (RENDER priority 500). On the
// CPU path it re-uploads the live-particle slice into a dynamic VBO each
// frame; on the GPU path it binds the SSBO directly as instanced vertex
// attributes. Grounded in fizzle's particles rendering (particles/particles.go
// draw loop), generalized to a blend-mode/render-mode matrix and the dual
// CPU/GPU backing split.
type RenderSystem struct {
	GL      gfx.Provider
	State   *gfxstate.StateContext
	Shaders *resource.Manager[*render.Shader]
	Meshes  *resource.Manager[*render.Mesh]

	quadVAO                  gfx.VertexArray
	quadVBO, quadInstanceVBO gfx.Buffer
	quadInstanceCap          int32

	// scratch holds the live-particle floats re-packed for upload, reused
	// across frames to avoid per-frame allocation growth.
	scratch []float32
}

func NewRenderSystem(gl gfx.Provider, state *gfxstate.StateContext, shaders *resource.Manager[*render.Shader], meshes *resource.Manager[*render.Mesh]) *RenderSystem {
	return &RenderSystem{GL: gl, State: state, Shaders: shaders, Meshes: meshes}
}

func (*RenderSystem) Name() string     { return "particle_render" }
func (*RenderSystem) Phase() ecs.Phase { return ecs.PhaseRender }
func (*RenderSystem) Priority() int    { return 500 }

func (s *RenderSystem) Run(w *ecs.World, ctx ecs.FrameContext) error {
	ids := w.EntitiesWith(ecs.TypeOf[components.ParticleBuffer](), ecs.TypeOf[components.ParticleRender]())
	for _, id := range ids {
		s.drawOne(w, id)
	}
	return nil
}

func (s *RenderSystem) drawOne(w *ecs.World, id ecs.EntityId) {
	buf := ecs.MustGet[components.ParticleBuffer](w, id)
	rc := ecs.MustGet[components.ParticleRender](w, id)
	if !buf.Initialized || buf.Backing == nil {
		return
	}
	emitter, _ := ecs.Get[components.ParticleEmitter](w, id)

	shaderKey := "particle/particle"
	if rc.Mode == components.RenderMesh {
		shaderKey = "particle/particle_mesh"
	}
	shaderHandle, err := s.Shaders.Get(shaderKey)
	if err != nil {
		groggy.Logsf("WARN", "particle_render: shader %q unavailable for entity %d: %v", shaderKey, id, err)
		return
	}
	defer shaderHandle.Release()
	shader, err := shaderHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "particle_render: shader %q invalid: %v", shaderKey, err)
		return
	}

	s.State.Push()
	defer s.State.Pop()
	s.State.SetDepthTestEnable(true)
	s.State.SetDepthMask(false) // depth write off by default, depth test on
	s.applyBlend(rc.Blend)

	shader.Use()
	if loc := shader.UniformLocation("emissive"); loc >= 0 {
		v := float32(0)
		if rc.Emissive {
			v = 1
		}
		s.GL.Uniform1f(loc, v)
	}

	switch backing := buf.Backing.(type) {
	case *cpuBacking:
		s.drawCPU(backing, rc, emitter)
	case *gpuBacking:
		s.drawGPU(backing, rc)
	}
}

func (s *RenderSystem) applyBlend(mode components.BlendMode) {
	switch mode {
	case components.BlendAlpha:
		s.State.SetBlendEnable(true)
		s.State.SetBlendFunc(gfx.SRC_ALPHA, gfx.ONE_MINUS_SRC_ALPHA)
	case components.BlendAdditive:
		s.State.SetBlendEnable(true)
		s.State.SetBlendFunc(gfx.SRC_ALPHA, gfx.ONE)
	case components.BlendSoftAdditive:
		s.State.SetBlendEnable(true)
		s.State.SetBlendFunc(gfx.ONE_MINUS_SRC_COLOR, gfx.ONE)
	case components.BlendMultiply:
		s.State.SetBlendEnable(true)
		s.State.SetBlendFunc(gfx.DST_COLOR, gfx.ZERO)
	case components.BlendPremultiplied:
		s.State.SetBlendEnable(true)
		s.State.SetBlendFunc(gfx.ONE, gfx.ONE_MINUS_SRC_ALPHA)
	case components.BlendOpaque:
		s.State.SetBlendEnable(false)
	}
}

// ensureQuad lazily builds the unit billboard quad (6 verts, pos+uv) every
// non-mesh render mode instances, plus its per-instance record buffer
// attached at locations 2-5.
func (s *RenderSystem) ensureQuad() {
	if s.quadVAO != 0 {
		return
	}
	// Centered unit quad in local space. The particle vertex shader
	// camera-faces it and picks the render-mode variant per instance from
	// the record's type slot (attribRecord3.z): plain billboards face the
	// camera fully, stretched billboards align the quad's long axis to the
	// record's velocity column, horizontal/vertical billboards lock the
	// quad to the XZ plane or the world Y axis.
	quad := []float32{
		-0.5, -0.5, 0, 0,
		0.5, -0.5, 1, 0,
		0.5, 0.5, 1, 1,
		-0.5, -0.5, 0, 0,
		0.5, 0.5, 1, 1,
		-0.5, 0.5, 0, 1,
	}
	s.quadVAO = s.GL.GenVertexArray()
	s.quadVBO = s.GL.GenBuffer()
	s.GL.BindVertexArray(s.quadVAO)
	s.GL.BindBuffer(gfx.ARRAY_BUFFER, s.quadVBO)
	s.GL.BufferData(gfx.ARRAY_BUFFER, len(quad)*4, s.GL.Ptr(quad), gfx.STATIC_DRAW)
	s.GL.EnableVertexAttribArray(attribQuadPos)
	s.GL.VertexAttribPointer(attribQuadPos, 2, gfx.FLOAT, false, 4*4, nil)
	s.GL.EnableVertexAttribArray(attribQuadUV)
	s.GL.VertexAttribPointer(attribQuadUV, 2, gfx.FLOAT, false, 4*4, s.GL.PtrOffset(2*4))
	s.GL.BindVertexArray(0)
}

func (s *RenderSystem) bindInstanceAttribs(vbo gfx.Buffer) {
	s.GL.BindBuffer(gfx.ARRAY_BUFFER, vbo)
	for i, loc := range []uint32{attribRecord0, attribRecord1, attribRecord2, attribRecord3} {
		s.GL.EnableVertexAttribArray(loc)
		s.GL.VertexAttribPointer(loc, 4, gfx.FLOAT, false, quadRecordStride, s.GL.PtrOffset(i*16))
		s.GL.VertexAttribDivisor(loc, 1)
	}
}

func (s *RenderSystem) drawCPU(b *cpuBacking, rc components.ParticleRender, e *components.ParticleEmitter) {
	live := s.packLive(b, e)
	if len(live) == 0 {
		return
	}
	instances := int32(len(live) / RecordFloats)

	if rc.Mode == components.RenderMesh && rc.MeshKey != "" {
		s.drawCPUMesh(rc.MeshKey, live, instances)
		return
	}

	s.ensureQuad()
	if s.quadInstanceVBO == 0 {
		s.quadInstanceVBO = s.GL.GenBuffer()
		s.GL.BindVertexArray(s.quadVAO)
		s.bindInstanceAttribs(s.quadInstanceVBO)
		s.GL.BindVertexArray(0)
	}
	s.GL.BindBuffer(gfx.ARRAY_BUFFER, s.quadInstanceVBO)
	size := int32(len(live) * 4)
	if size > s.quadInstanceCap {
		s.GL.BufferData(gfx.ARRAY_BUFFER, len(live)*4, s.GL.Ptr(live), gfx.STREAM_DRAW)
		s.quadInstanceCap = size
	} else {
		s.GL.BufferSubData(gfx.ARRAY_BUFFER, 0, len(live)*4, s.GL.Ptr(live))
	}
	s.GL.BindVertexArray(s.quadVAO)
	s.GL.DrawArraysInstanced(gfx.TRIANGLES, 0, 6, instances)
	s.GL.BindVertexArray(0)
}

func (s *RenderSystem) drawCPUMesh(meshKey string, live []float32, instances int32) {
	meshHandle, err := s.Meshes.Get(meshKey)
	if err != nil {
		groggy.Logsf("WARN", "particle_render: mesh %q unavailable: %v", meshKey, err)
		return
	}
	defer meshHandle.Release()
	mesh, err := meshHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "particle_render: mesh %q invalid: %v", meshKey, err)
		return
	}
	mesh.UploadParticleInstances(live)
	mesh.DrawInstanced(gfx.TRIANGLES, instances)
}

// packLive copies every live record (life > 0) out of the CPU backing
// array into s.scratch, compacting out dead slots so the instanced draw
// only covers live particles. The size-over-lifetime curve is applied to
// the upload copy only; the backing record keeps its spawn size so the
// multiplier never compounds. The GPU path's shader samples the same
// curve per invocation.
func (s *RenderSystem) packLive(b *cpuBacking, e *components.ParticleEmitter) []float32 {
	s.scratch = s.scratch[:0]
	for i := 0; i < b.capacity(); i++ {
		r := b.at(i)
		if !r.alive() {
			continue
		}
		base := len(s.scratch)
		s.scratch = append(s.scratch, r...)
		if e != nil && r[offMaxLife] > 0 {
			lifePct := 1 - r[offLife]/r[offMaxLife]
			s.scratch[base+offSize] = r[offSize] * e.SizeOverLifetime.Sample(lifePct)
		}
	}
	return s.scratch
}

// drawGPU binds the SSBO directly as the instanced vertex buffer. The
// compute-shader physics/emit pass already wrote the same 16-float layout
// in place, so no host-side repacking is needed; the full capacity is
// drawn and the shader discards records with life <= 0.
func (s *RenderSystem) drawGPU(b *gpuBacking, rc components.ParticleRender) {
	if rc.Mode == components.RenderMesh && rc.MeshKey != "" {
		s.drawGPUMesh(b, rc)
		return
	}
	s.ensureQuad()
	s.GL.BindVertexArray(s.quadVAO)
	s.bindInstanceAttribs(b.ssbo)
	s.GL.DrawArraysInstanced(gfx.TRIANGLES, 0, 6, int32(b.cap))
	s.GL.BindVertexArray(0)
}

func (s *RenderSystem) drawGPUMesh(b *gpuBacking, rc components.ParticleRender) {
	meshHandle, err := s.Meshes.Get(rc.MeshKey)
	if err != nil {
		groggy.Logsf("WARN", "particle_render: mesh %q unavailable: %v", rc.MeshKey, err)
		return
	}
	defer meshHandle.Release()
	mesh, err := meshHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "particle_render: mesh %q invalid: %v", rc.MeshKey, err)
		return
	}
	mesh.BindParticleInstanceBuffer(b.ssbo)
	mesh.DrawInstanced(gfx.TRIANGLES, int32(b.cap))
}

// Dispose frees the quad VAO/VBOs owned by the render system itself (not
// per-buffer state, which ParticleBuffer.Dispose already owns).
func (s *RenderSystem) Dispose() {
	if s.quadVAO != 0 {
		s.GL.DeleteVertexArray(s.quadVAO)
	}
	if s.quadVBO != 0 {
		s.GL.DeleteBuffer(s.quadVBO)
	}
	if s.quadInstanceVBO != 0 {
		s.GL.DeleteBuffer(s.quadInstanceVBO)
	}
}
