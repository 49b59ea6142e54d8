// Package render holds the thin GPU-resource wrappers the render and
// particle systems draw through: compiled shader programs, GL-backed
// meshes, and materials that bind them together. Grounded in fizzle's
// RenderShader (shaders.go), Material (material.go), and RenderableCore
// (renderable.go), generalized from fizzle's fixed asset-loading functions
// to resource.Manager-backed caches keyed by the shader/mesh asset
// interfaces the host supplies.
package render

import (
	"fmt"

	"github.com/embergrove/forgecs/gfx"
	"github.com/tbogdala/groggy"
)

// ShaderSources is what the host's shader asset interface supplies for
// one of the fixed keys (core/world3d, particle/particle,
// particle/particle_update:compute, ...). Geometry and Compute are
// optional; a compute-only program leaves Vertex/Fragment empty.
type ShaderSources struct {
	Vertex   string
	Fragment string
	Geometry string
	Compute  string
}

// Shader wraps a linked GL program plus uniform/attribute location caches,
// the same memoization fizzle's RenderShader performs so repeated
// per-draw lookups don't round-trip to the driver.
type Shader struct {
	gl        gfx.Provider
	Prog      gfx.Program
	uniCache  map[string]int32
	attrCache map[string]int32
}

// CompileShader compiles and links sources into a ready Shader. Compilation
// or link failures return an error; the caller is the resource.Manager
// loader, which leaves the cache untouched on failure.
func CompileShader(gl gfx.Provider, sources ShaderSources) (*Shader, error) {
	prog := gl.CreateProgram()

	var compiled []gfx.Shader
	defer func() {
		for _, s := range compiled {
			gl.DeleteShader(s)
		}
	}()

	compile := func(kind gfx.Enum, src string) (gfx.Shader, error) {
		s := gl.CreateShader(kind)
		gl.ShaderSource(s, src)
		gl.CompileShader(s)
		var status int32
		gl.GetShaderiv(s, gfx.COMPILE_STATUS, &status)
		if status == 0 {
			log := gl.GetShaderInfoLog(s)
			gl.DeleteShader(s)
			return 0, fmt.Errorf("render: shader compile failed: %s", log)
		}
		gl.AttachShader(prog, s)
		return s, nil
	}

	if sources.Compute != "" {
		s, err := compile(gfx.COMPUTE_SHADER, sources.Compute)
		if err != nil {
			gl.DeleteProgram(prog)
			return nil, err
		}
		compiled = append(compiled, s)
	} else {
		vs, err := compile(gfx.VERTEX_SHADER, sources.Vertex)
		if err != nil {
			gl.DeleteProgram(prog)
			return nil, err
		}
		compiled = append(compiled, vs)

		fs, err := compile(gfx.FRAGMENT_SHADER, sources.Fragment)
		if err != nil {
			gl.DeleteProgram(prog)
			return nil, err
		}
		compiled = append(compiled, fs)

		if sources.Geometry != "" {
			const geometryShader gfx.Enum = 0x8DD9 // GL_GEOMETRY_SHADER
			gs, err := compile(geometryShader, sources.Geometry)
			if err != nil {
				gl.DeleteProgram(prog)
				return nil, err
			}
			compiled = append(compiled, gs)
		}
	}

	gl.LinkProgram(prog)
	var linkStatus int32
	gl.GetProgramiv(prog, gfx.LINK_STATUS, &linkStatus)
	if linkStatus == 0 {
		log := gl.GetProgramInfoLog(prog)
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("render: program link failed: %s", log)
	}

	return &Shader{
		gl:        gl,
		Prog:      prog,
		uniCache:  make(map[string]int32),
		attrCache: make(map[string]int32),
	}, nil
}

// UniformLocation returns the cached uniform location for name, querying
// and caching it (even a -1 miss) on first use.
func (s *Shader) UniformLocation(name string) int32 {
	if loc, ok := s.uniCache[name]; ok {
		return loc
	}
	loc := s.gl.GetUniformLocation(s.Prog, name)
	s.uniCache[name] = loc
	if loc < 0 {
		groggy.Logsf("DEBUG", "render: shader missing uniform %q", name)
	}
	return loc
}

// AttribLocation returns the cached attribute location for name.
func (s *Shader) AttribLocation(name string) int32 {
	if loc, ok := s.attrCache[name]; ok {
		return loc
	}
	loc := s.gl.GetAttribLocation(s.Prog, name)
	s.attrCache[name] = loc
	if loc < 0 {
		groggy.Logsf("DEBUG", "render: shader missing attribute %q", name)
	}
	return loc
}

// Use installs this program as current.
func (s *Shader) Use() { s.gl.UseProgram(s.Prog) }

// Dispose deletes the underlying GL program. Satisfies resource.Unloader.
func (s *Shader) Dispose() { s.gl.DeleteProgram(s.Prog) }
