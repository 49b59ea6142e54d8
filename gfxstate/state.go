// Package gfxstate implements a scoped GL state stack: render systems
// push a scope, mutate state through the StateContext
// instead of calling gfx.Provider directly, and on scope exit every
// mutated slot is restored to what it held on entry — LIFO, independent
// of nesting depth. Every mutator queries the driver for the live value of
// the slot it's about to touch, on first touch within the innermost scope,
// so a scope restores whatever an enclosing host actually had set rather
// than a caller's guess.
//
// Calling a mutator or Pop with no scope open is a programmer error, not a
// runtime condition: it panics with *ScopeViolationError at the call site
// rather than returning an error a render loop would be tempted to
// swallow.
//
// Grounded in fizzle's renderer packages (forward/deferred), which hand-
// roll "set blend mode, draw, restore blend mode" around every draw call;
// gfxstate centralizes that pattern into one capture/restore primitive so
// render systems stop hand-pairing Enable/Disable calls.
package gfxstate

import (
	"fmt"

	"github.com/embergrove/forgecs/gfx"
)

// StateKey names one slot of GL state a scope can capture and restore.
type StateKey int

const (
	KeyBlendEnable StateKey = iota
	KeyBlendFunc            // src+dst factors restored together
	KeyBlendEquation
	KeyDepthTestEnable
	KeyDepthMask
	KeyCullFaceEnable
	KeyCullFaceMode
	KeyScissorEnable
	KeyScissorBox
	KeyColorMask // r,g,b,a restored together
	KeyViewport
	KeyLineWidth
	KeyPolygonMode
	KeyActiveTextureUnit
	KeyBoundTexture2D
	KeyBoundProgram
	KeyBoundVertexArray
	KeyBoundArrayBuffer
	KeyBoundElementArrayBuffer
	keyCount
)

// value is a small tagged union big enough for every StateKey's payload: a
// bool, one or two Enums, a float, a 4-int32 box (viewport/scissor), or a
// 4-bool mask (color mask channels).
type value struct {
	b    bool
	e    gfx.Enum
	e2   gfx.Enum
	f    float32
	box  [4]int32
	mask [4]bool
	kind valueKind
}

type valueKind int

const (
	kindBool valueKind = iota
	kindEnum
	kindEnumPair
	kindFloat
	kindBox
	kindMask
)

// StateContext wraps a gfx.Provider and tracks what the currently open
// scopes have touched, so Pop can restore exactly what Push saw.
type StateContext struct {
	gl     gfx.Provider
	scopes []scope
}

type scope struct {
	saved map[StateKey]value
	order []StateKey // insertion order of first touches, for LIFO restore
}

// New wraps gl in a StateContext with no scopes open.
func New(gl gfx.Provider) *StateContext {
	return &StateContext{gl: gl}
}

// Depth returns the number of currently open scopes.
func (c *StateContext) Depth() int { return len(c.scopes) }

// Push opens a new scope. Every mutator called while it is the innermost
// scope captures the pre-mutation value on first touch within this scope
// only; Pop restores those captured values.
func (c *StateContext) Push() {
	c.scopes = append(c.scopes, scope{saved: make(map[StateKey]value)})
}

// Pop closes the innermost scope, restoring every slot it touched to the
// value captured when Push opened it, then discards the scope. Calling
// Pop with no open scope panics with *ScopeViolationError.
func (c *StateContext) Pop() {
	n := len(c.scopes)
	if n == 0 {
		panic(&ScopeViolationError{Op: "Pop", Reason: "no open scope"})
	}
	top := c.scopes[n-1]
	c.scopes = c.scopes[:n-1]

	// Restore strictly in reverse insertion order. Most slots are
	// independent, but the active-texture-unit / bound-texture pair is
	// not: the texture binding must be restored while the unit it was
	// captured under is still active.
	for i := len(top.order) - 1; i >= 0; i-- {
		key := top.order[i]
		c.restore(key, top.saved[key])
	}
}

// ScopeViolationError is the panic payload when a mutator or Pop runs with
// no open scope: a programmer error in the render system's Push/Pop
// pairing, fatal by design.
type ScopeViolationError struct {
	Op     string
	Reason string
}

func (e *ScopeViolationError) Error() string {
	return fmt.Sprintf("gfxstate: %s: %s", e.Op, e.Reason)
}

func (c *StateContext) capture(key StateKey, v value) {
	top := &c.scopes[len(c.scopes)-1]
	if _, exists := top.saved[key]; !exists {
		top.saved[key] = v
		top.order = append(top.order, key)
	}
}

func (c *StateContext) restore(key StateKey, v value) {
	switch key {
	case KeyBlendEnable:
		setEnable(c.gl, gfx.BLEND, v.b)
	case KeyDepthTestEnable:
		setEnable(c.gl, gfx.DEPTH_TEST, v.b)
	case KeyCullFaceEnable:
		setEnable(c.gl, gfx.CULL_FACE, v.b)
	case KeyScissorEnable:
		setEnable(c.gl, gfx.SCISSOR_TEST, v.b)
	case KeyDepthMask:
		c.gl.DepthMask(v.b)
	case KeyCullFaceMode:
		c.gl.CullFace(v.e)
	case KeyBlendFunc:
		c.gl.BlendFunc(v.e, v.e2)
	case KeyBlendEquation:
		c.gl.BlendEquation(v.e)
	case KeyColorMask:
		c.gl.ColorMask(v.mask[0], v.mask[1], v.mask[2], v.mask[3])
	case KeyViewport:
		c.gl.Viewport(v.box[0], v.box[1], v.box[2], v.box[3])
	case KeyScissorBox:
		c.gl.Scissor(v.box[0], v.box[1], v.box[2], v.box[3])
	case KeyLineWidth:
		c.gl.LineWidth(v.f)
	case KeyPolygonMode:
		c.gl.PolygonMode(gfx.FRONT_AND_BACK, v.e)
	case KeyActiveTextureUnit:
		c.gl.ActiveTexture(v.e)
	case KeyBoundTexture2D:
		c.gl.BindTexture(gfx.TEXTURE_2D, gfx.Texture(v.e))
	case KeyBoundProgram:
		c.gl.UseProgram(gfx.Program(v.e))
	case KeyBoundVertexArray:
		c.gl.BindVertexArray(gfx.VertexArray(v.e))
	case KeyBoundArrayBuffer:
		c.gl.BindBuffer(gfx.ARRAY_BUFFER, gfx.Buffer(v.e))
	case KeyBoundElementArrayBuffer:
		c.gl.BindBuffer(gfx.ELEMENT_ARRAY_BUFFER, gfx.Buffer(v.e))
	}
}

func setEnable(gl gfx.Provider, e gfx.Enum, enabled bool) {
	if enabled {
		gl.Enable(e)
	} else {
		gl.Disable(e)
	}
}

// mustScope panics with *ScopeViolationError if no scope is open.
func (c *StateContext) mustScope(op string) {
	if len(c.scopes) == 0 {
		panic(&ScopeViolationError{Op: op, Reason: "called outside any Push/Pop scope"})
	}
}

// queryBool reads back a single IsEnabled capability.
func (c *StateContext) queryBool(cap gfx.Enum) bool {
	return c.gl.IsEnabled(cap)
}

// queryBoolState reads back a single non-capability boolean state value
// (depth/color write masks), which live under GetBooleanv, not IsEnabled.
func (c *StateContext) queryBoolState(pname gfx.Enum) bool {
	var v [1]bool
	c.gl.GetBooleanv(pname, v[:])
	return v[0]
}

func (c *StateContext) queryBoolState4(pname gfx.Enum) [4]bool {
	var v [4]bool
	c.gl.GetBooleanv(pname, v[:])
	return v
}

func (c *StateContext) queryEnum(pname gfx.Enum) gfx.Enum {
	var v [1]int32
	c.gl.GetIntegerv(pname, v[:])
	return gfx.Enum(v[0])
}

func (c *StateContext) queryInt4(pname gfx.Enum) [4]int32 {
	var v [4]int32
	c.gl.GetIntegerv(pname, v[:])
	return v
}

func (c *StateContext) queryFloat(pname gfx.Enum) float32 {
	var v [1]float32
	c.gl.GetFloatv(pname, v[:])
	return v[0]
}

// SetBlendEnable enables or disables GL_BLEND, capturing the live driver
// state on first touch within the innermost scope.
func (c *StateContext) SetBlendEnable(enabled bool) {
	c.mustScope("SetBlendEnable")
	c.capture(KeyBlendEnable, value{b: c.queryBool(gfx.BLEND), kind: kindBool})
	setEnable(c.gl, gfx.BLEND, enabled)
}

// SetDepthTestEnable enables or disables GL_DEPTH_TEST.
func (c *StateContext) SetDepthTestEnable(enabled bool) {
	c.mustScope("SetDepthTestEnable")
	c.capture(KeyDepthTestEnable, value{b: c.queryBool(gfx.DEPTH_TEST), kind: kindBool})
	setEnable(c.gl, gfx.DEPTH_TEST, enabled)
}

// SetDepthMask toggles depth-buffer writes.
func (c *StateContext) SetDepthMask(flag bool) {
	c.mustScope("SetDepthMask")
	c.capture(KeyDepthMask, value{b: c.queryBoolState(gfx.DEPTH_WRITEMASK), kind: kindBool})
	c.gl.DepthMask(flag)
}

// SetCullFace enables/disables culling and sets the cull mode in one call.
func (c *StateContext) SetCullFace(enabled bool, mode gfx.Enum) {
	c.mustScope("SetCullFace")
	c.capture(KeyCullFaceEnable, value{b: c.queryBool(gfx.CULL_FACE), kind: kindBool})
	c.capture(KeyCullFaceMode, value{e: c.queryEnum(gfx.CULL_FACE_MODE), kind: kindEnum})
	setEnable(c.gl, gfx.CULL_FACE, enabled)
	c.gl.CullFace(mode)
}

// SetViewport sets the viewport box.
func (c *StateContext) SetViewport(x, y, w, h int32) {
	c.mustScope("SetViewport")
	c.capture(KeyViewport, value{box: c.queryInt4(gfx.VIEWPORT), kind: kindBox})
	c.gl.Viewport(x, y, w, h)
}

// SetScissor enables scissor testing and sets the scissor box.
func (c *StateContext) SetScissor(x, y, w, h int32) {
	c.mustScope("SetScissor")
	c.capture(KeyScissorEnable, value{b: c.queryBool(gfx.SCISSOR_TEST), kind: kindBool})
	c.capture(KeyScissorBox, value{box: c.queryInt4(gfx.SCISSOR_BOX), kind: kindBox})
	setEnable(c.gl, gfx.SCISSOR_TEST, true)
	c.gl.Scissor(x, y, w, h)
}

// SetBlendFunc sets the blend src/dst factors, capturing both as one
// restorable unit since the driver only exposes them as a pair.
func (c *StateContext) SetBlendFunc(src, dst gfx.Enum) {
	c.mustScope("SetBlendFunc")
	c.capture(KeyBlendFunc, value{e: c.queryEnum(gfx.BLEND_SRC), e2: c.queryEnum(gfx.BLEND_DST), kind: kindEnumPair})
	c.gl.BlendFunc(src, dst)
}

// SetBlendEquation sets the blend equation (e.g. GL_FUNC_ADD, GL_MAX).
func (c *StateContext) SetBlendEquation(mode gfx.Enum) {
	c.mustScope("SetBlendEquation")
	c.capture(KeyBlendEquation, value{e: c.queryEnum(gfx.BLEND_EQUATION_RGB), kind: kindEnum})
	c.gl.BlendEquation(mode)
}

// SetColorMask toggles which color channels are written.
func (c *StateContext) SetColorMask(r, g, b, a bool) {
	c.mustScope("SetColorMask")
	c.capture(KeyColorMask, value{mask: c.queryBoolState4(gfx.COLOR_WRITEMASK), kind: kindMask})
	c.gl.ColorMask(r, g, b, a)
}

// SetLineWidth sets the rasterized line width.
func (c *StateContext) SetLineWidth(width float32) {
	c.mustScope("SetLineWidth")
	c.capture(KeyLineWidth, value{f: c.queryFloat(gfx.LINE_WIDTH), kind: kindFloat})
	c.gl.LineWidth(width)
}

// SetPolygonMode sets the front-and-back polygon rasterization mode (fill
// vs. line).
func (c *StateContext) SetPolygonMode(mode gfx.Enum) {
	c.mustScope("SetPolygonMode")
	c.capture(KeyPolygonMode, value{e: c.queryEnum(gfx.POLYGON_MODE), kind: kindEnum})
	c.gl.PolygonMode(gfx.FRONT_AND_BACK, mode)
}

// SetActiveTexture selects the active texture unit before a subsequent
// BindTexture, used by material binding to fill multiple texture slots.
func (c *StateContext) SetActiveTexture(unit gfx.Enum) {
	c.mustScope("SetActiveTexture")
	c.capture(KeyActiveTextureUnit, value{e: c.queryEnum(gfx.ACTIVE_TEXTURE), kind: kindEnum})
	c.gl.ActiveTexture(unit)
}

// SetBoundTexture2D binds a 2D texture to the currently active unit.
func (c *StateContext) SetBoundTexture2D(tex gfx.Texture) {
	c.mustScope("SetBoundTexture2D")
	c.capture(KeyBoundTexture2D, value{e: c.queryEnum(gfx.TEXTURE_BINDING_2D), kind: kindEnum})
	c.gl.BindTexture(gfx.TEXTURE_2D, tex)
}

// SetBoundProgram installs a shader program.
func (c *StateContext) SetBoundProgram(prog gfx.Program) {
	c.mustScope("SetBoundProgram")
	c.capture(KeyBoundProgram, value{e: c.queryEnum(gfx.CURRENT_PROGRAM), kind: kindEnum})
	c.gl.UseProgram(prog)
}

// SetBoundVertexArray binds a vertex array object.
func (c *StateContext) SetBoundVertexArray(vao gfx.VertexArray) {
	c.mustScope("SetBoundVertexArray")
	c.capture(KeyBoundVertexArray, value{e: c.queryEnum(gfx.VERTEX_ARRAY_BINDING), kind: kindEnum})
	c.gl.BindVertexArray(vao)
}

// SetBoundArrayBuffer binds a GL_ARRAY_BUFFER.
func (c *StateContext) SetBoundArrayBuffer(buf gfx.Buffer) {
	c.mustScope("SetBoundArrayBuffer")
	c.capture(KeyBoundArrayBuffer, value{e: c.queryEnum(gfx.ARRAY_BUFFER_BINDING), kind: kindEnum})
	c.gl.BindBuffer(gfx.ARRAY_BUFFER, buf)
}

// SetBoundElementArrayBuffer binds a GL_ELEMENT_ARRAY_BUFFER.
func (c *StateContext) SetBoundElementArrayBuffer(buf gfx.Buffer) {
	c.mustScope("SetBoundElementArrayBuffer")
	c.capture(KeyBoundElementArrayBuffer, value{e: c.queryEnum(gfx.ELEMENT_ARRAY_BUFFER_BINDING), kind: kindEnum})
	c.gl.BindBuffer(gfx.ELEMENT_ARRAY_BUFFER, buf)
}
