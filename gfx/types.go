// Package gfx is the OpenGL 3.3 Core abstraction the render systems draw
// through: a small GraphicsProvider interface wrapping go-gl/gl, plus a
// capability-gated extension for 4.3-core compute shaders.
//
// Grounded in fizzle's graphicsprovider/opengl package: that package ships
// only the opengl/opengles2/opengles31 *implementations*, with the
// interface they all satisfy defined in the sibling package fizzle itself
// depended on but that the retrieval pack did not carry over. gfx restates
// that interface, trimmed to what the render and particle systems in this
// module actually call, in the same wrapped-enum style.
package gfx

// Enum is an opaque OpenGL enum value (GL_TRIANGLES, GL_DEPTH_TEST, ...).
type Enum uint32

// Buffer names an OpenGL buffer, framebuffer, or renderbuffer object.
type Buffer uint32

// Texture names an OpenGL texture object.
type Texture uint32

// Program names an OpenGL shader program object.
type Program uint32

// Shader names an OpenGL shader object.
type Shader uint32

// VertexArray names an OpenGL vertex array object.
type VertexArray uint32

// Query names an OpenGL query object (occlusion/timer queries).
type Query uint32

// NoBuffer, NoTexture, NoProgram are the zero/unbound sentinel values.
const (
	NoBuffer  Buffer  = 0
	NoTexture Texture = 0
	NoProgram Program = 0
)

// Subset of GL enum values the render and particle systems reference
// directly, named the way fizzle's graphicsprovider constants are.
const (
	DEPTH_TEST   Enum = 0x0B71
	CULL_FACE    Enum = 0x0B44
	BLEND        Enum = 0x0BE2
	SCISSOR_TEST Enum = 0x0C11

	FRONT Enum = 0x0404
	BACK  Enum = 0x0405

	ZERO                Enum = 0
	ONE                 Enum = 1
	SRC_ALPHA           Enum = 0x0302
	ONE_MINUS_SRC_ALPHA Enum = 0x0303
	SRC_COLOR           Enum = 0x0300
	ONE_MINUS_SRC_COLOR Enum = 0x0301
	DST_COLOR           Enum = 0x0306

	TRIANGLES      Enum = 0x0004
	LINES          Enum = 0x0001
	POINTS         Enum = 0x0000
	TRIANGLE_STRIP Enum = 0x0005

	ARRAY_BUFFER          Enum = 0x8892
	ELEMENT_ARRAY_BUFFER  Enum = 0x8893
	SHADER_STORAGE_BUFFER Enum = 0x90D2
	UNIFORM_BUFFER        Enum = 0x8A11

	STATIC_DRAW  Enum = 0x88E4
	DYNAMIC_DRAW Enum = 0x88E8
	STREAM_DRAW  Enum = 0x88E0

	FLOAT        Enum = 0x1406
	UNSIGNED_INT Enum = 0x1405

	COLOR_BUFFER_BIT Enum = 0x4000
	DEPTH_BUFFER_BIT Enum = 0x0100

	TEXTURE0   Enum = 0x84C0
	TEXTURE_2D Enum = 0x0DE1

	FRAMEBUFFER          Enum = 0x8D40
	COLOR_ATTACHMENT0    Enum = 0x8CE0
	DEPTH_ATTACHMENT     Enum = 0x8D00
	FRAMEBUFFER_COMPLETE Enum = 0x8CD5

	VERTEX_SHADER   Enum = 0x8B31
	FRAGMENT_SHADER Enum = 0x8B30
	COMPILE_STATUS  Enum = 0x8B81
	LINK_STATUS     Enum = 0x8B82

	RGBA          Enum = 0x1908
	RGB           Enum = 0x1907
	UNSIGNED_BYTE Enum = 0x1401

	NEAREST            Enum = 0x2600
	LINEAR             Enum = 0x2601
	TEXTURE_MIN_FILTER Enum = 0x2801
	TEXTURE_MAG_FILTER Enum = 0x2800
	TEXTURE_WRAP_S     Enum = 0x2802
	TEXTURE_WRAP_T     Enum = 0x2803
	REPEAT             Enum = 0x2901
	CLAMP_TO_EDGE      Enum = 0x812F

	FILL           Enum = 0x1B02
	LINE           Enum = 0x1B01
	FRONT_AND_BACK Enum = 0x0408
)

// glGet pnames gfxstate queries to capture live driver state before it
// mutates a slot, named the way fizzle's graphicsprovider constants are.
const (
	VIEWPORT                     Enum = 0x0BA2
	SCISSOR_BOX                  Enum = 0x0C10
	DEPTH_WRITEMASK              Enum = 0x0B72
	COLOR_WRITEMASK              Enum = 0x0C23
	CULL_FACE_MODE               Enum = 0x0B45
	BLEND_SRC                    Enum = 0x0BE1
	BLEND_DST                    Enum = 0x0BE0
	BLEND_EQUATION_RGB           Enum = 0x8009
	LINE_WIDTH                   Enum = 0x0B21
	POLYGON_MODE                 Enum = 0x0B40
	ACTIVE_TEXTURE               Enum = 0x84E0
	TEXTURE_BINDING_2D           Enum = 0x8069
	CURRENT_PROGRAM              Enum = 0x8B8D
	VERTEX_ARRAY_BINDING         Enum = 0x85B5
	ARRAY_BUFFER_BINDING         Enum = 0x8894
	ELEMENT_ARRAY_BUFFER_BINDING Enum = 0x8895
)
