package gfx

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v3.3-core/gl"
	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/tbogdala/groggy"
)

// GL33 is the desktop OpenGL 3.3 Core implementation of Provider, adapted
// from fizzle's graphicsprovider/opengl.GraphicsImpl.
type GL33 struct{}

// InitGL33 initializes the GL function pointers and returns a ready
// Provider. Must be called on the thread holding the current GL context.
func InitGL33() (*GL33, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gfx: failed to initialize OpenGL: %w", err)
	}
	return &GL33{}, nil
}

func (g *GL33) ActiveTexture(t Enum)               { gl.ActiveTexture(uint32(t)) }
func (g *GL33) BindBuffer(target Enum, b Buffer)   { gl.BindBuffer(uint32(target), uint32(b)) }
func (g *GL33) BindTexture(target Enum, t Texture) { gl.BindTexture(uint32(target), uint32(t)) }
func (g *GL33) BindVertexArray(a VertexArray)      { gl.BindVertexArray(uint32(a)) }
func (g *GL33) BindFramebuffer(target Enum, fb Buffer) {
	gl.BindFramebuffer(uint32(target), uint32(fb))
}

func (g *GL33) BlendFunc(sfactor, dfactor Enum) { gl.BlendFunc(uint32(sfactor), uint32(dfactor)) }
func (g *GL33) BlendEquation(mode Enum)         { gl.BlendEquation(uint32(mode)) }

func (g *GL33) Clear(mask Enum)                { gl.Clear(uint32(mask)) }
func (g *GL33) ClearColor(r, gr, b, a float32) { gl.ClearColor(r, gr, b, a) }

func (g *GL33) CreateProgram() Program           { return Program(gl.CreateProgram()) }
func (g *GL33) CreateShader(ty Enum) Shader      { return Shader(gl.CreateShader(uint32(ty))) }
func (g *GL33) CompileShader(s Shader)           { gl.CompileShader(uint32(s)) }
func (g *GL33) AttachShader(p Program, s Shader) { gl.AttachShader(uint32(p), uint32(s)) }
func (g *GL33) LinkProgram(p Program)            { gl.LinkProgram(uint32(p)) }
func (g *GL33) UseProgram(p Program)             { gl.UseProgram(uint32(p)) }
func (g *GL33) DeleteShader(s Shader)            { gl.DeleteShader(uint32(s)) }
func (g *GL33) DeleteProgram(p Program)          { gl.DeleteProgram(uint32(p)) }

func (g *GL33) ShaderSource(s Shader, source string) {
	glSource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(s), 1, glSource, nil)
	free()
}

func (g *GL33) GetShaderiv(s Shader, pname Enum, params *int32) {
	gl.GetShaderiv(uint32(s), uint32(pname), params)
}

func (g *GL33) GetShaderInfoLog(s Shader) string {
	const infoLogLength Enum = 0x8B84
	var length int32
	g.GetShaderiv(s, infoLogLength, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length))
	gl.GetShaderInfoLog(uint32(s), length, nil, gl.Str(log))
	return log
}

func (g *GL33) GetProgramiv(p Program, pname Enum, params *int32) {
	gl.GetProgramiv(uint32(p), uint32(pname), params)
}

func (g *GL33) GetProgramInfoLog(p Program) string {
	const infoLogLength Enum = 0x8B84
	var length int32
	g.GetProgramiv(p, infoLogLength, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length))
	gl.GetProgramInfoLog(uint32(p), length, nil, gl.Str(log))
	return log
}

func (g *GL33) GetAttribLocation(p Program, name string) int32 {
	return gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
}

func (g *GL33) GetUniformLocation(p Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (g *GL33) EnableVertexAttribArray(a uint32) { gl.EnableVertexAttribArray(a) }

func (g *GL33) VertexAttribPointer(dst uint32, size int32, ty Enum, normalized bool, stride int32, ptr unsafe.Pointer) {
	gl.VertexAttribPointerWithOffset(dst, size, uint32(ty), normalized, stride, uintptr(ptr))
}

func (g *GL33) VertexAttribDivisor(dst uint32, divisor uint32) { gl.VertexAttribDivisor(dst, divisor) }

func (g *GL33) Uniform1i(location int32, v int32)            { gl.Uniform1i(location, v) }
func (g *GL33) Uniform1f(location int32, v float32)          { gl.Uniform1f(location, v) }
func (g *GL33) Uniform3f(location int32, v0, v1, v2 float32) { gl.Uniform3f(location, v0, v1, v2) }
func (g *GL33) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	gl.Uniform4f(location, v0, v1, v2, v3)
}

func (g *GL33) UniformMatrix4fv(location, count int32, transpose bool, value interface{}) {
	switch t := value.(type) {
	case mgl.Mat4:
		gl.UniformMatrix4fv(location, count, transpose, &t[0])
	case []mgl.Mat4:
		if len(t) == 0 {
			return
		}
		gl.UniformMatrix4fv(location, count, transpose, &t[0][0])
	default:
		panic(fmt.Sprintf("gfx: unhandled type %T in UniformMatrix4fv", value))
	}
}

func (g *GL33) GenBuffer() Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return Buffer(b)
}

func (g *GL33) DeleteBuffer(b Buffer) {
	v := uint32(b)
	gl.DeleteBuffers(1, &v)
}

func (g *GL33) BufferData(target Enum, size int, data unsafe.Pointer, usage Enum) {
	gl.BufferData(uint32(target), size, data, uint32(usage))
}

func (g *GL33) BufferSubData(target Enum, offset int, size int, data unsafe.Pointer) {
	gl.BufferSubData(uint32(target), offset, size, data)
}

func (g *GL33) GenVertexArray() VertexArray {
	var a uint32
	gl.GenVertexArrays(1, &a)
	return VertexArray(a)
}

func (g *GL33) DeleteVertexArray(a VertexArray) {
	v := uint32(a)
	gl.DeleteVertexArrays(1, &v)
}

func (g *GL33) GenTexture() Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return Texture(t)
}

func (g *GL33) DeleteTexture(t Texture) {
	v := uint32(t)
	gl.DeleteTextures(1, &v)
}

func (g *GL33) TexImage2D(target Enum, level, intfmt, width, height, border int32, format, ty Enum, ptr unsafe.Pointer, dataLength int) {
	gl.TexImage2D(uint32(target), level, intfmt, width, height, border, uint32(format), uint32(ty), ptr)
}

func (g *GL33) TexParameteri(target, pname Enum, param int32) {
	gl.TexParameteri(uint32(target), uint32(pname), param)
}

func (g *GL33) GenerateMipmap(t Enum) { gl.GenerateMipmap(uint32(t)) }

func (g *GL33) GenFramebuffer() Buffer {
	var b uint32
	gl.GenFramebuffers(1, &b)
	return Buffer(b)
}

func (g *GL33) DeleteFramebuffer(fb Buffer) {
	v := uint32(fb)
	gl.DeleteFramebuffers(1, &v)
}

func (g *GL33) FramebufferTexture2D(target, attachment, textarget Enum, texture Texture, level int32) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(textarget), uint32(texture), level)
}

func (g *GL33) CheckFramebufferStatus(target Enum) Enum {
	return Enum(gl.CheckFramebufferStatus(uint32(target)))
}

func (g *GL33) Enable(e Enum)                      { gl.Enable(uint32(e)) }
func (g *GL33) Disable(e Enum)                     { gl.Disable(uint32(e)) }
func (g *GL33) DepthMask(flag bool)                { gl.DepthMask(flag) }
func (g *GL33) CullFace(mode Enum)                 { gl.CullFace(uint32(mode)) }
func (g *GL33) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (g *GL33) Scissor(x, y, width, height int32)  { gl.Scissor(x, y, width, height) }
func (g *GL33) ColorMask(r, gr, b, a bool)         { gl.ColorMask(r, gr, b, a) }
func (g *GL33) LineWidth(width float32)            { gl.LineWidth(width) }
func (g *GL33) PolygonMode(face, mode Enum)        { gl.PolygonMode(uint32(face), uint32(mode)) }

func (g *GL33) IsEnabled(cap Enum) bool { return gl.IsEnabled(uint32(cap)) }

func (g *GL33) GetBooleanv(pname Enum, data []bool) {
	if len(data) == 0 {
		return
	}
	gl.GetBooleanv(uint32(pname), &data[0])
}

func (g *GL33) GetIntegerv(pname Enum, data []int32) {
	if len(data) == 0 {
		return
	}
	gl.GetIntegerv(uint32(pname), &data[0])
}

func (g *GL33) GetFloatv(pname Enum, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.GetFloatv(uint32(pname), &data[0])
}

func (g *GL33) DrawArrays(mode Enum, first, count int32) { gl.DrawArrays(uint32(mode), first, count) }

func (g *GL33) DrawElements(mode Enum, count int32, ty Enum, indices unsafe.Pointer) {
	gl.DrawElements(uint32(mode), count, uint32(ty), indices)
}

func (g *GL33) DrawArraysInstanced(mode Enum, first, count, instanceCount int32) {
	gl.DrawArraysInstanced(uint32(mode), first, count, instanceCount)
}

func (g *GL33) DrawElementsInstanced(mode Enum, count int32, ty Enum, indices unsafe.Pointer, instanceCount int32) {
	gl.DrawElementsInstanced(uint32(mode), count, uint32(ty), indices, instanceCount)
}

func (g *GL33) GetError() uint32 { return gl.GetError() }

func (g *GL33) Ptr(data interface{}) unsafe.Pointer { return gl.Ptr(data) }
func (g *GL33) PtrOffset(offset int) unsafe.Pointer { return gl.PtrOffset(offset) }

var _ Provider = (*GL33)(nil)

// GL error codes DebugCheckForError decodes, mirrored from fizzle.go.
const (
	errInvalidEnum      = 0x0500
	errInvalidValue     = 0x0501
	errInvalidOperation = 0x0502
	errOutOfMemory      = 0x0505
)

// DebugCheckForError drains GetError and logs every pending GL error
// against msg, the way fizzle.go's DebugCheckForError did for fizzle's
// single global GraphicsProvider. Intended for debug builds only: calling
// it every frame in release costs a driver round-trip per invocation.
func DebugCheckForError(gl Provider, msg string) {
	for err := gl.GetError(); err != 0; err = gl.GetError() {
		var kind string
		switch err {
		case errInvalidEnum:
			kind = "INVALID_ENUM"
		case errInvalidValue:
			kind = "INVALID_VALUE"
		case errInvalidOperation:
			kind = "INVALID_OPERATION"
		case errOutOfMemory:
			kind = "OUT_OF_MEMORY"
		default:
			kind = "UNKNOWN"
		}
		groggy.Logsf("DEBUG", "OpenGL error %d(0x%x) detected (%s): %s", err, err, msg, kind)
	}
}
