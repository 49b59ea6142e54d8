// Package postprocess implements an optional bloom pipeline: soft-knee
// bright-pixel extract, iterative ping-pong Gaussian blur, and an additive
// composite with exposure and optional ACES tonemap over the host's scene
// color buffer. Grounded in fizzle's deferred_renderer.go framebuffer
// setup (FBO + color-attachment texture, status check), generalized from a
// G-buffer to the three single-attachment ping-pong targets this pass needs.
package postprocess

import (
	"fmt"

	"github.com/tbogdala/groggy"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/gfxstate"
	"github.com/embergrove/forgecs/render"
	"github.com/embergrove/forgecs/resource"
)

// SceneColorSource is the external boundary contract: the enclosing
// renderer's own depth/color buffers stay out of this package's scope,
// and the host supplies the already-rendered scene color texture each
// frame, which the pipeline reads without ever owning or clearing it.
type SceneColorSource func() (gfx.Texture, bool)

type target struct {
	fbo gfx.Buffer // framebuffer object name
	tex gfx.Texture
}

// Pipeline owns the ping-pong framebuffers, fullscreen-quad geometry, and
// compiled shaders for the bloom pass. One Pipeline instance serves every
// camera in a World; each invocation reads that camera's PostProcess
// component for its tunables.
type Pipeline struct {
	GL         gfx.Provider
	State      *gfxstate.StateContext
	Shaders    *resource.Manager[*render.Shader]
	SceneColor SceneColorSource

	width, height int32

	bright target
	pingA  target
	pingB  target

	quadVAO gfx.VertexArray
	quadVBO gfx.Buffer
}

func NewPipeline(gl gfx.Provider, state *gfxstate.StateContext, shaders *resource.Manager[*render.Shader], sceneColor SceneColorSource) *Pipeline {
	return &Pipeline{GL: gl, State: state, Shaders: shaders, SceneColor: sceneColor}
}

func (*Pipeline) Name() string     { return "postprocess" }
func (*Pipeline) Phase() ecs.Phase { return ecs.PhaseRender }

// Priority places the pass after every other RENDER system, one slot
// after the debug overlay (1000) so debug geometry is itself subject to
// bloom, matching fizzle's deferred pass ordering debug-then-post.
func (*Pipeline) Priority() int { return 1100 }

func (p *Pipeline) Run(w *ecs.World, ctx ecs.FrameContext) error {
	camID, hasCam := w.Scene.ActiveCamera()
	if !hasCam {
		return nil
	}
	pp, ok := ecs.Get[components.PostProcess](w, camID)
	if !ok {
		return nil // no PostProcess on the active camera: pipeline is a no-op
	}
	vw, vh, ok := w.Scene.ViewportSize()
	if !ok || vw == 0 || vh == 0 {
		return nil
	}
	if p.SceneColor == nil {
		return nil
	}
	sceneTex, ok := p.SceneColor()
	if !ok {
		return nil
	}

	if err := p.ensureTargets(vw, vh); err != nil {
		groggy.Logsf("WARN", "postprocess: %v", err)
		return nil
	}
	p.ensureQuad()

	p.State.Push()
	defer p.State.Pop()
	p.State.SetDepthTestEnable(false)
	p.State.SetBlendEnable(false)

	if err := p.extractBright(sceneTex, *pp); err != nil {
		groggy.Logsf("WARN", "postprocess: bright extract: %v", err)
		return nil
	}
	blurred, err := p.blur(pp.BlurIterations)
	if err != nil {
		groggy.Logsf("WARN", "postprocess: blur: %v", err)
		return nil
	}
	if err := p.composite(sceneTex, blurred, *pp); err != nil {
		groggy.Logsf("WARN", "postprocess: composite: %v", err)
	}
	return nil
}

func (p *Pipeline) ensureTargets(w, h int32) error {
	if p.width == w && p.height == h && p.bright.fbo != 0 {
		return nil
	}
	p.disposeTargets()
	p.width, p.height = w, h

	var err error
	if p.bright, err = p.newTarget(w, h); err != nil {
		return err
	}
	if p.pingA, err = p.newTarget(w, h); err != nil {
		return err
	}
	if p.pingB, err = p.newTarget(w, h); err != nil {
		return err
	}
	return nil
}

func (p *Pipeline) newTarget(w, h int32) (target, error) {
	tex := p.GL.GenTexture()
	p.GL.BindTexture(gfx.TEXTURE_2D, tex)
	p.GL.TexImage2D(gfx.TEXTURE_2D, 0, int32(gfx.RGBA), w, h, 0, gfx.RGBA, gfx.UNSIGNED_BYTE, nil, 0)
	p.GL.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MIN_FILTER, int32(gfx.LINEAR))
	p.GL.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MAG_FILTER, int32(gfx.LINEAR))
	p.GL.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_S, int32(gfx.CLAMP_TO_EDGE))
	p.GL.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_T, int32(gfx.CLAMP_TO_EDGE))

	fbo := p.GL.GenFramebuffer()
	p.GL.BindFramebuffer(gfx.FRAMEBUFFER, fbo)
	p.GL.FramebufferTexture2D(gfx.FRAMEBUFFER, gfx.COLOR_ATTACHMENT0, gfx.TEXTURE_2D, tex, 0)
	if status := p.GL.CheckFramebufferStatus(gfx.FRAMEBUFFER); status != gfx.FRAMEBUFFER_COMPLETE {
		p.GL.BindFramebuffer(gfx.FRAMEBUFFER, 0)
		return target{}, fmt.Errorf("incomplete framebuffer: status %#x", uint32(status))
	}
	p.GL.BindFramebuffer(gfx.FRAMEBUFFER, 0)
	return target{fbo: fbo, tex: tex}, nil
}

func (p *Pipeline) disposeTargets() {
	for _, t := range []target{p.bright, p.pingA, p.pingB} {
		if t.fbo != 0 {
			p.GL.DeleteFramebuffer(t.fbo)
			p.GL.DeleteTexture(t.tex)
		}
	}
	p.bright, p.pingA, p.pingB = target{}, target{}, target{}
}

func (p *Pipeline) ensureQuad() {
	if p.quadVAO != 0 {
		return
	}
	quad := []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, -1, 0, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	}
	p.quadVAO = p.GL.GenVertexArray()
	p.quadVBO = p.GL.GenBuffer()
	p.GL.BindVertexArray(p.quadVAO)
	p.GL.BindBuffer(gfx.ARRAY_BUFFER, p.quadVBO)
	p.GL.BufferData(gfx.ARRAY_BUFFER, len(quad)*4, p.GL.Ptr(quad), gfx.STATIC_DRAW)
	p.GL.EnableVertexAttribArray(0)
	p.GL.VertexAttribPointer(0, 2, gfx.FLOAT, false, 4*4, nil)
	p.GL.EnableVertexAttribArray(1)
	p.GL.VertexAttribPointer(1, 2, gfx.FLOAT, false, 4*4, p.GL.PtrOffset(2*4))
	p.GL.BindVertexArray(0)
}

func (p *Pipeline) drawFullscreen(shaderKey string, uniforms func(s *render.Shader)) error {
	h, err := p.Shaders.Get(shaderKey)
	if err != nil {
		return err
	}
	defer h.Release()
	shader, err := h.Get()
	if err != nil {
		return err
	}
	shader.Use()
	if uniforms != nil {
		uniforms(shader)
	}
	p.GL.BindVertexArray(p.quadVAO)
	p.GL.DrawArrays(gfx.TRIANGLES, 0, 6)
	p.GL.BindVertexArray(0)
	return nil
}

// extractBright renders sceneTex through the soft-knee threshold shader
// into the bright target.
func (p *Pipeline) extractBright(sceneTex gfx.Texture, pp components.PostProcess) error {
	p.GL.BindFramebuffer(gfx.FRAMEBUFFER, p.bright.fbo)
	p.GL.Viewport(0, 0, p.width, p.height)
	p.GL.ClearColor(0, 0, 0, 1)
	p.GL.Clear(gfx.COLOR_BUFFER_BIT)
	p.State.SetActiveTexture(gfx.TEXTURE0)
	p.State.SetBoundTexture2D(sceneTex)
	err := p.drawFullscreen("postprocess/brightness_extract", func(s *render.Shader) {
		if loc := s.UniformLocation("scene"); loc >= 0 {
			p.GL.Uniform1i(loc, 0)
		}
		if loc := s.UniformLocation("threshold"); loc >= 0 {
			p.GL.Uniform1f(loc, pp.Threshold)
		}
		if loc := s.UniformLocation("knee"); loc >= 0 {
			p.GL.Uniform1f(loc, pp.Knee)
		}
	})
	p.GL.BindFramebuffer(gfx.FRAMEBUFFER, 0)
	return err
}

// blur runs iterations alternating horizontal/vertical passes between the
// two ping-pong targets, starting from the bright target, and returns
// whichever target holds the final result.
func (p *Pipeline) blur(iterations int) (gfx.Texture, error) {
	if iterations <= 0 {
		iterations = 1
	}
	src := p.bright
	horizontal := true
	var dst target
	for i := 0; i < iterations*2; i++ {
		dst = p.pingA
		if i%2 == 1 {
			dst = p.pingB
		}
		p.GL.BindFramebuffer(gfx.FRAMEBUFFER, dst.fbo)
		p.GL.Viewport(0, 0, p.width, p.height)
		p.State.SetActiveTexture(gfx.TEXTURE0)
		p.State.SetBoundTexture2D(src.tex)
		err := p.drawFullscreen("postprocess/blur", func(s *render.Shader) {
			if loc := s.UniformLocation("image"); loc >= 0 {
				p.GL.Uniform1i(loc, 0)
			}
			if loc := s.UniformLocation("horizontal"); loc >= 0 {
				v := float32(0)
				if horizontal {
					v = 1
				}
				p.GL.Uniform1f(loc, v)
			}
		})
		p.GL.BindFramebuffer(gfx.FRAMEBUFFER, 0)
		if err != nil {
			return 0, err
		}
		src = dst
		horizontal = !horizontal
	}
	return dst.tex, nil
}

// composite additively blends the blurred bloom texture over sceneTex with
// exposure and optional ACES tonemap, drawing into the default framebuffer
// (0), which the bright-pass and blur steps leave bound.
func (p *Pipeline) composite(sceneTex, bloomTex gfx.Texture, pp components.PostProcess) error {
	p.GL.Viewport(0, 0, p.width, p.height)
	p.State.SetActiveTexture(gfx.TEXTURE0)
	p.State.SetBoundTexture2D(sceneTex)
	p.State.SetActiveTexture(gfx.TEXTURE0 + 1)
	p.State.SetBoundTexture2D(bloomTex)
	return p.drawFullscreen("postprocess/composite", func(s *render.Shader) {
		if loc := s.UniformLocation("scene"); loc >= 0 {
			p.GL.Uniform1i(loc, 0)
		}
		if loc := s.UniformLocation("bloom"); loc >= 0 {
			p.GL.Uniform1i(loc, 1)
		}
		if loc := s.UniformLocation("exposure"); loc >= 0 {
			p.GL.Uniform1f(loc, pp.Exposure)
		}
		if loc := s.UniformLocation("acesTonemap"); loc >= 0 {
			v := float32(0)
			if pp.ACESTonemap {
				v = 1
			}
			p.GL.Uniform1f(loc, v)
		}
	})
}

// Dispose frees every framebuffer/texture/VAO the pipeline owns.
func (p *Pipeline) Dispose() {
	p.disposeTargets()
	if p.quadVAO != 0 {
		p.GL.DeleteVertexArray(p.quadVAO)
		p.GL.DeleteBuffer(p.quadVBO)
	}
}
