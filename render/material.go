package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/gfxstate"
	"github.com/embergrove/forgecs/resource"
)

// MaxTextures bounds how many texture units a Material can populate,
// mirroring fizzle's Material.CustomTex array (material.go).
const MaxTextures = 8

// Material is the visual configuration a MeshRenderer references by key:
// the shader program plus texture bindings and uniform scalars bound
// before every draw of an entity using it. Grounded in fizzle's Material
// type, generalized from its fixed Diffuse/Normal/Specular texture slots
// to a named texture map so particle and post-process materials can reuse
// the same type.
type Material struct {
	Shader *Shader

	Textures map[string]gfx.Texture

	DiffuseColor  mgl32.Vec4
	SpecularColor mgl32.Vec4
	Metallic      float32
	Roughness     float32
	Shininess     float32

	// shaderHandle/texHandles are populated only for materials built by
	// NewMaterialCache (render/cache.go); a Material constructed directly
	// via NewMaterial owns no sub-handles and releaseHandles is a no-op.
	shaderHandle *resource.Handle[*Shader]
	texHandles   []*resource.Handle[gfx.Texture]
}

// releaseHandles releases the shader/texture handles a cache-loaded
// Material acquired on its behalf. Called by the material cache's
// Unloader when the material's own refcount reaches zero.
func (m *Material) releaseHandles() {
	if m.shaderHandle != nil {
		m.shaderHandle.Release()
	}
	for _, h := range m.texHandles {
		h.Release()
	}
}

// NewMaterial returns a Material bound to shader with sane defaults.
func NewMaterial(shader *Shader) *Material {
	return &Material{
		Shader:        shader,
		Textures:      make(map[string]gfx.Texture),
		DiffuseColor:  mgl32.Vec4{1, 1, 1, 1},
		SpecularColor: mgl32.Vec4{1, 1, 1, 1},
		Roughness:     1,
		Shininess:     1,
	}
}

// Bind installs the material's shader, uploads its scalar uniforms, and
// binds every named texture to a sequential unit starting at 0, tracking
// each GL call through state so a MeshRender-opened scope restores
// whatever the host had bound on entry. Must be called inside an open
// state scope.
func (m *Material) Bind(gl gfx.Provider, state *gfxstate.StateContext) {
	state.SetBoundProgram(m.Shader.Prog)
	m.Shader.Use()

	if loc := m.Shader.UniformLocation("diffuseColor"); loc >= 0 {
		gl.Uniform4f(loc, m.DiffuseColor[0], m.DiffuseColor[1], m.DiffuseColor[2], m.DiffuseColor[3])
	}
	if loc := m.Shader.UniformLocation("specularColor"); loc >= 0 {
		gl.Uniform4f(loc, m.SpecularColor[0], m.SpecularColor[1], m.SpecularColor[2], m.SpecularColor[3])
	}
	if loc := m.Shader.UniformLocation("shininess"); loc >= 0 {
		gl.Uniform1f(loc, m.Shininess)
	}
	if loc := m.Shader.UniformLocation("metallic"); loc >= 0 {
		gl.Uniform1f(loc, m.Metallic)
	}
	if loc := m.Shader.UniformLocation("roughness"); loc >= 0 {
		gl.Uniform1f(loc, m.Roughness)
	}

	unit := 0
	for name, tex := range m.Textures {
		if unit >= MaxTextures {
			break
		}
		state.SetActiveTexture(gfx.TEXTURE0 + gfx.Enum(unit))
		state.SetBoundTexture2D(tex)
		if loc := m.Shader.UniformLocation(name); loc >= 0 {
			gl.Uniform1i(loc, int32(unit))
		}
		unit++
	}
}

// SetMatrices uploads the standard model/view/projection uniforms every
// built-in shader key exposes under these names.
func (m *Material) SetMatrices(gl gfx.Provider, model, view, proj mgl32.Mat4) {
	if loc := m.Shader.UniformLocation("model"); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, model)
	}
	if loc := m.Shader.UniformLocation("view"); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, view)
	}
	if loc := m.Shader.UniformLocation("projection"); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, proj)
	}
}
