package gfx

import "unsafe"

// Provider is the subset of OpenGL 3.3 Core entry points the render
// systems, particle systems, and post-process pipeline call through.
// Mirrors fizzle's graphicsprovider.GraphicsProvider in shape: every
// method wraps one or two raw gl calls and takes the wrapped Enum/Buffer/
// Texture/Program types instead of bare uint32s.
type Provider interface {
	ActiveTexture(t Enum)
	BindBuffer(target Enum, b Buffer)
	BindTexture(target Enum, t Texture)
	BindVertexArray(a VertexArray)
	BindFramebuffer(target Enum, fb Buffer)

	BlendFunc(sfactor, dfactor Enum)
	BlendEquation(mode Enum)

	Clear(mask Enum)
	ClearColor(r, g, b, a float32)

	CreateProgram() Program
	CreateShader(ty Enum) Shader
	CompileShader(s Shader)
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	UseProgram(p Program)
	ShaderSource(s Shader, source string)
	DeleteShader(s Shader)
	DeleteProgram(p Program)
	GetShaderiv(s Shader, pname Enum, params *int32)
	GetShaderInfoLog(s Shader) string
	GetProgramiv(p Program, pname Enum, params *int32)
	GetProgramInfoLog(p Program) string

	GetAttribLocation(p Program, name string) int32
	GetUniformLocation(p Program, name string) int32
	EnableVertexAttribArray(a uint32)
	VertexAttribPointer(dst uint32, size int32, ty Enum, normalized bool, stride int32, ptr unsafe.Pointer)
	VertexAttribDivisor(dst uint32, divisor uint32)

	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, v0, v1, v2 float32)
	Uniform4f(location int32, v0, v1, v2, v3 float32)
	UniformMatrix4fv(location, count int32, transpose bool, value interface{})

	GenBuffer() Buffer
	DeleteBuffer(b Buffer)
	BufferData(target Enum, size int, data unsafe.Pointer, usage Enum)
	BufferSubData(target Enum, offset int, size int, data unsafe.Pointer)

	GenVertexArray() VertexArray
	DeleteVertexArray(a VertexArray)

	GenTexture() Texture
	DeleteTexture(t Texture)
	TexImage2D(target Enum, level, intfmt, width, height, border int32, format, ty Enum, ptr unsafe.Pointer, dataLength int)
	TexParameteri(target, pname Enum, param int32)
	GenerateMipmap(t Enum)

	GenFramebuffer() Buffer
	DeleteFramebuffer(fb Buffer)
	FramebufferTexture2D(target, attachment, textarget Enum, texture Texture, level int32)
	CheckFramebufferStatus(target Enum) Enum

	Enable(e Enum)
	Disable(e Enum)
	DepthMask(flag bool)
	CullFace(mode Enum)
	Viewport(x, y, width, height int32)
	Scissor(x, y, width, height int32)
	ColorMask(r, g, b, a bool)
	LineWidth(width float32)
	PolygonMode(face, mode Enum)

	// IsEnabled and the GetXv family read back live pipeline state. gfxstate
	// uses these to capture what a scope is about to change before changing
	// it, rather than trusting a caller-supplied guess.
	IsEnabled(cap Enum) bool
	GetBooleanv(pname Enum, data []bool)
	GetIntegerv(pname Enum, data []int32)
	GetFloatv(pname Enum, data []float32)

	DrawArrays(mode Enum, first, count int32)
	DrawElements(mode Enum, count int32, ty Enum, indices unsafe.Pointer)
	DrawArraysInstanced(mode Enum, first, count, instanceCount int32)
	DrawElementsInstanced(mode Enum, count int32, ty Enum, indices unsafe.Pointer, instanceCount int32)

	GetError() uint32
	Ptr(data interface{}) unsafe.Pointer
	PtrOffset(offset int) unsafe.Pointer
}

// Compute is the 4.3-core extension a Provider may additionally satisfy.
// Probed once at first particle-buffer emission; a Provider that doesn't
// implement it forces every emitter onto the CPU physics path for the
// process lifetime.
type Compute interface {
	Provider

	DispatchCompute(groupsX, groupsY, groupsZ uint32)
	MemoryBarrier(barriers Enum)
	BindBufferBase(target Enum, index uint32, b Buffer)
}

// GL 4.3 enum additions Compute callers need.
const (
	COMPUTE_SHADER             Enum = 0x91B9
	SHADER_STORAGE_BARRIER_BIT Enum = 0x2000
	ALL_BARRIER_BITS           Enum = 0xFFFFFFFF
)
