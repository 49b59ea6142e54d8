package gfxstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embergrove/forgecs/gfx"
)

// fakeGL records Enable/Disable/DepthMask/Viewport calls without touching
// a real context, in the style of fizzle's test doubles for GraphicsImpl.
// It also answers the IsEnabled/GetXv driver queries StateContext issues on
// first touch, from the same fields Enable/DepthMask/etc. mutate, so a test
// can drive "the host already had this set" scenarios just by seeding a
// field before calling New.
type fakeGL struct {
	gfx.Provider
	enabled      map[gfx.Enum]bool
	depthMask    bool
	viewport     [4]int32
	blendSrc     gfx.Enum
	blendDst     gfx.Enum
	boundProgram gfx.Program
	boundTexture gfx.Texture
}

func newFakeGL() *fakeGL {
	return &fakeGL{enabled: make(map[gfx.Enum]bool)}
}

func (f *fakeGL) Enable(e gfx.Enum)                          { f.enabled[e] = true }
func (f *fakeGL) Disable(e gfx.Enum)                         { f.enabled[e] = false }
func (f *fakeGL) DepthMask(flag bool)                        { f.depthMask = flag }
func (f *fakeGL) Viewport(x, y, w, h int32)                  { f.viewport = [4]int32{x, y, w, h} }
func (f *fakeGL) BlendFunc(src, dst gfx.Enum)                { f.blendSrc, f.blendDst = src, dst }
func (f *fakeGL) UseProgram(p gfx.Program)                   { f.boundProgram = p }
func (f *fakeGL) BindTexture(target gfx.Enum, t gfx.Texture) { f.boundTexture = t }

func (f *fakeGL) IsEnabled(cap gfx.Enum) bool { return f.enabled[cap] }

func (f *fakeGL) GetBooleanv(pname gfx.Enum, data []bool) {
	if pname == gfx.DEPTH_WRITEMASK && len(data) > 0 {
		data[0] = f.depthMask
	}
}

func (f *fakeGL) GetIntegerv(pname gfx.Enum, data []int32) {
	switch pname {
	case gfx.VIEWPORT:
		copy(data, f.viewport[:])
	case gfx.BLEND_SRC:
		if len(data) > 0 {
			data[0] = int32(f.blendSrc)
		}
	case gfx.BLEND_DST:
		if len(data) > 0 {
			data[0] = int32(f.blendDst)
		}
	case gfx.CURRENT_PROGRAM:
		if len(data) > 0 {
			data[0] = int32(f.boundProgram)
		}
	case gfx.TEXTURE_BINDING_2D:
		if len(data) > 0 {
			data[0] = int32(f.boundTexture)
		}
	}
}

func (f *fakeGL) GetFloatv(pname gfx.Enum, data []float32) {}

func TestPopRestoresBlendEnable(t *testing.T) {
	gl := newFakeGL()
	gl.enabled[gfx.BLEND] = false
	c := New(gl)

	c.Push()
	c.SetBlendEnable(true)
	assert.True(t, gl.enabled[gfx.BLEND])

	c.Pop()
	assert.False(t, gl.enabled[gfx.BLEND], "Pop must restore the pre-scope value")
}

func TestNestedScopesRestoreIndependently(t *testing.T) {
	gl := newFakeGL()
	gl.depthMask = true
	c := New(gl)

	c.Push()
	c.SetDepthMask(false)
	assert.False(t, gl.depthMask)

	c.Push()
	c.SetDepthMask(true)
	assert.True(t, gl.depthMask)
	c.Pop()
	assert.False(t, gl.depthMask, "inner Pop restores to the outer scope's value, not the original")

	c.Pop()
	assert.True(t, gl.depthMask, "outer Pop restores the value from before either scope opened")
}

func TestMutatorOutsideScopeIsViolation(t *testing.T) {
	c := New(newFakeGL())
	defer func() {
		r := recover()
		require.NotNil(t, r, "a mutator outside any scope must panic")
		_, ok := r.(*ScopeViolationError)
		assert.True(t, ok, "expected *ScopeViolationError, got %T", r)
	}()
	c.SetBlendEnable(true)
}

func TestPopWithNoScopeIsViolation(t *testing.T) {
	c := New(newFakeGL())
	defer func() {
		r := recover()
		require.NotNil(t, r, "Pop with no open scope must panic")
		_, ok := r.(*ScopeViolationError)
		assert.True(t, ok, "expected *ScopeViolationError, got %T", r)
	}()
	c.Pop()
}

func TestFirstTouchWinsWithinAScope(t *testing.T) {
	gl := newFakeGL()
	gl.viewport = [4]int32{0, 0, 800, 600}
	c := New(gl)

	c.Push()
	c.SetViewport(0, 0, 400, 300)
	// a second mutation within the same scope must not overwrite the
	// originally captured restore value
	c.SetViewport(0, 0, 200, 150)
	c.Pop()

	assert.Equal(t, [4]int32{0, 0, 800, 600}, gl.viewport)
}

func TestBlendFuncRoundTrips(t *testing.T) {
	gl := newFakeGL()
	gl.blendSrc, gl.blendDst = gfx.ONE, gfx.ZERO
	c := New(gl)

	c.Push()
	c.SetBlendFunc(gfx.SRC_ALPHA, gfx.ONE_MINUS_SRC_ALPHA)
	assert.Equal(t, gfx.SRC_ALPHA, gl.blendSrc)
	c.Pop()
	assert.Equal(t, gfx.ONE, gl.blendSrc)
	assert.Equal(t, gfx.ZERO, gl.blendDst)
}

func TestBoundProgramAndTextureRoundTrip(t *testing.T) {
	gl := newFakeGL()
	gl.boundProgram = 7
	gl.boundTexture = 3
	c := New(gl)

	c.Push()
	c.SetBoundProgram(42)
	c.SetBoundTexture2D(99)
	assert.EqualValues(t, 42, gl.boundProgram)
	assert.EqualValues(t, 99, gl.boundTexture)

	c.Pop()
	assert.EqualValues(t, 7, gl.boundProgram)
	assert.EqualValues(t, 3, gl.boundTexture)
}
