package particlesys

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
)

// nullGL is a gfx.Provider that touches no real GL context and never
// satisfies gfx.Compute, forcing every ParticleBuffer under test onto the
// CPU backing path. The emit system's CPU path never calls any of these
// during Run, so every method is an unreachable no-op; they exist only to
// satisfy the interface.
type nullGL struct{}

func (nullGL) ActiveTexture(gfx.Enum)                                                   {}
func (nullGL) BindBuffer(gfx.Enum, gfx.Buffer)                                          {}
func (nullGL) BindTexture(gfx.Enum, gfx.Texture)                                        {}
func (nullGL) BindVertexArray(gfx.VertexArray)                                          {}
func (nullGL) BindFramebuffer(gfx.Enum, gfx.Buffer)                                     {}
func (nullGL) BlendFunc(gfx.Enum, gfx.Enum)                                             {}
func (nullGL) BlendEquation(gfx.Enum)                                                   {}
func (nullGL) Clear(gfx.Enum)                                                           {}
func (nullGL) ClearColor(float32, float32, float32, float32)                            {}
func (nullGL) CreateProgram() gfx.Program                                               { return 0 }
func (nullGL) CreateShader(gfx.Enum) gfx.Shader                                         { return 0 }
func (nullGL) CompileShader(gfx.Shader)                                                 {}
func (nullGL) AttachShader(gfx.Program, gfx.Shader)                                     {}
func (nullGL) LinkProgram(gfx.Program)                                                  {}
func (nullGL) UseProgram(gfx.Program)                                                   {}
func (nullGL) ShaderSource(gfx.Shader, string)                                          {}
func (nullGL) DeleteShader(gfx.Shader)                                                  {}
func (nullGL) DeleteProgram(gfx.Program)                                                {}
func (nullGL) GetShaderiv(gfx.Shader, gfx.Enum, *int32)                                 {}
func (nullGL) GetShaderInfoLog(gfx.Shader) string                                       { return "" }
func (nullGL) GetProgramiv(gfx.Program, gfx.Enum, *int32)                               {}
func (nullGL) GetProgramInfoLog(gfx.Program) string                                     { return "" }
func (nullGL) GetAttribLocation(gfx.Program, string) int32                              { return -1 }
func (nullGL) GetUniformLocation(gfx.Program, string) int32                             { return -1 }
func (nullGL) EnableVertexAttribArray(uint32)                                           {}
func (nullGL) VertexAttribPointer(uint32, int32, gfx.Enum, bool, int32, unsafe.Pointer) {}
func (nullGL) VertexAttribDivisor(uint32, uint32)                                       {}
func (nullGL) Uniform1i(int32, int32)                                                   {}
func (nullGL) Uniform1f(int32, float32)                                                 {}
func (nullGL) Uniform3f(int32, float32, float32, float32)                               {}
func (nullGL) Uniform4f(int32, float32, float32, float32, float32)                      {}
func (nullGL) UniformMatrix4fv(int32, int32, bool, interface{})                         {}
func (nullGL) GenBuffer() gfx.Buffer                                                    { return 0 }
func (nullGL) DeleteBuffer(gfx.Buffer)                                                  {}
func (nullGL) BufferData(gfx.Enum, int, unsafe.Pointer, gfx.Enum)                       {}
func (nullGL) BufferSubData(gfx.Enum, int, int, unsafe.Pointer)                         {}
func (nullGL) GenVertexArray() gfx.VertexArray                                          { return 0 }
func (nullGL) DeleteVertexArray(gfx.VertexArray)                                        {}
func (nullGL) GenTexture() gfx.Texture                                                  { return 0 }
func (nullGL) DeleteTexture(gfx.Texture)                                                {}
func (nullGL) TexImage2D(gfx.Enum, int32, int32, int32, int32, int32, gfx.Enum, gfx.Enum, unsafe.Pointer, int) {
}
func (nullGL) TexParameteri(gfx.Enum, gfx.Enum, int32) {}
func (nullGL) GenerateMipmap(gfx.Enum)                 {}
func (nullGL) GenFramebuffer() gfx.Buffer              { return 0 }
func (nullGL) DeleteFramebuffer(gfx.Buffer)            {}
func (nullGL) FramebufferTexture2D(gfx.Enum, gfx.Enum, gfx.Enum, gfx.Texture, int32) {
}
func (nullGL) CheckFramebufferStatus(gfx.Enum) gfx.Enum               { return gfx.FRAMEBUFFER_COMPLETE }
func (nullGL) Enable(gfx.Enum)                                        {}
func (nullGL) Disable(gfx.Enum)                                       {}
func (nullGL) DepthMask(bool)                                         {}
func (nullGL) CullFace(gfx.Enum)                                      {}
func (nullGL) Viewport(int32, int32, int32, int32)                    {}
func (nullGL) Scissor(int32, int32, int32, int32)                     {}
func (nullGL) ColorMask(bool, bool, bool, bool)                       {}
func (nullGL) LineWidth(float32)                                      {}
func (nullGL) PolygonMode(gfx.Enum, gfx.Enum)                         {}
func (nullGL) DrawArrays(gfx.Enum, int32, int32)                      {}
func (nullGL) DrawElements(gfx.Enum, int32, gfx.Enum, unsafe.Pointer) {}
func (nullGL) DrawArraysInstanced(gfx.Enum, int32, int32, int32)      {}
func (nullGL) DrawElementsInstanced(gfx.Enum, int32, gfx.Enum, unsafe.Pointer, int32) {
}
func (nullGL) GetError() uint32               { return 0 }
func (nullGL) Ptr(interface{}) unsafe.Pointer { return nil }
func (nullGL) PtrOffset(int) unsafe.Pointer   { return nil }
func (nullGL) IsEnabled(gfx.Enum) bool        { return false }
func (nullGL) GetBooleanv(gfx.Enum, []bool)   {}
func (nullGL) GetIntegerv(gfx.Enum, []int32)  {}
func (nullGL) GetFloatv(gfx.Enum, []float32)  {}

var _ gfx.Provider = nullGL{}

func newEmitWorld(t *testing.T) (*ecs.World, ecs.EntityId) {
	t.Helper()
	w := ecs.NewWorld()
	id := w.CreateEntity()
	ecs.AddComponent(w, id, components.NewTransform())

	emitter := components.NewParticleEmitter()
	emitter.Rate = 10
	emitter.BurstCount = 3
	emitter.LifetimeMin, emitter.LifetimeMax = 1, 2
	emitter.SizeMin, emitter.SizeMax = 0.5, 1.5
	ecs.AddComponent(w, id, emitter)
	ecs.AddComponent(w, id, components.NewParticleState(0, true))
	ecs.AddComponent(w, id, components.NewParticleBuffer(64))
	return w, id
}

func snapshotRecords(t *testing.T, w *ecs.World, id ecs.EntityId) []float32 {
	t.Helper()
	buf := ecs.MustGet[components.ParticleBuffer](w, id)
	cpu, ok := buf.Backing.(*cpuBacking)
	require.True(t, ok, "a nullGL Provider must select the CPU backing path")
	out := make([]float32, len(cpu.records))
	copy(out, cpu.records)
	return out
}

// TestEmissionIsDeterministicUnderFixedSeed checks that two emit systems
// constructed the same way (NewEmitSystem always seeds its rng with the
// same constant) and driven with the same dt sequence produce identical
// particle records, since nothing else perturbs the emitter.
func TestEmissionIsDeterministicUnderFixedSeed(t *testing.T) {
	wa, ida := newEmitWorld(t)
	sa := NewEmitSystem(nullGL{})

	wb, idb := newEmitWorld(t)
	sb := NewEmitSystem(nullGL{})

	dts := []float32{0.016, 0.016, 0.033, 0.016, 0.1}
	for _, dt := range dts {
		require.NoError(t, sa.Run(wa, ecs.FrameContext{Dt: dt}))
		require.NoError(t, sb.Run(wb, ecs.FrameContext{Dt: dt}))
	}

	assert.Equal(t, snapshotRecords(t, wa, ida), snapshotRecords(t, wb, idb))
}

func TestInitialBurstFiresExactlyOnce(t *testing.T) {
	w, id := newEmitWorld(t)
	s := NewEmitSystem(nullGL{})

	require.NoError(t, s.Run(w, ecs.FrameContext{Dt: 0}))
	assert.Equal(t, 3, countLive(t, w, id), "the initial burst count")

	require.NoError(t, s.Run(w, ecs.FrameContext{Dt: 0}))
	assert.Equal(t, 3, countLive(t, w, id), "a second zero-dt frame must not re-fire the initial burst")
}

// TestSpawnWritesRenderModeIntoRecordType checks that each spawned
// record's type slot carries the entity's ParticleRender mode, which the
// billboard shader branches on per instance, and that a missing
// ParticleRender defaults to the plain billboard.
func TestSpawnWritesRenderModeIntoRecordType(t *testing.T) {
	w, id := newEmitWorld(t)
	ecs.AddComponent(w, id, components.ParticleRender{Mode: components.RenderStretchedBillboard})
	s := NewEmitSystem(nullGL{})

	require.NoError(t, s.Run(w, ecs.FrameContext{Dt: 0}))

	buf := ecs.MustGet[components.ParticleBuffer](w, id)
	cpu := buf.Backing.(*cpuBacking)
	found := 0
	for i := 0; i < cpu.capacity(); i++ {
		r := cpu.at(i)
		if r.alive() {
			assert.Equal(t, float32(components.RenderStretchedBillboard), r[offType])
			found++
		}
	}
	assert.Equal(t, 3, found, "every initial-burst record carries the mode")

	wPlain, idPlain := newEmitWorld(t)
	require.NoError(t, NewEmitSystem(nullGL{}).Run(wPlain, ecs.FrameContext{Dt: 0}))
	bufPlain := ecs.MustGet[components.ParticleBuffer](wPlain, idPlain)
	cpuPlain := bufPlain.Backing.(*cpuBacking)
	for i := 0; i < cpuPlain.capacity(); i++ {
		r := cpuPlain.at(i)
		if r.alive() {
			assert.Equal(t, float32(components.RenderBillboard), r[offType])
		}
	}
}

func countLive(t *testing.T, w *ecs.World, id ecs.EntityId) int {
	t.Helper()
	buf := ecs.MustGet[components.ParticleBuffer](w, id)
	cpu := buf.Backing.(*cpuBacking)
	n := 0
	for i := 0; i < cpu.capacity(); i++ {
		if cpu.at(i).alive() {
			n++
		}
	}
	return n
}
