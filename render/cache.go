package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/resource"
)

// ShaderLoader is the host's shader asset interface: given one of the
// fixed keys (core/world3d, particle/particle, ...), it supplies the GLSL
// source text. Shader source text itself is out of this core's scope;
// only compiling and caching it is the core's job.
type ShaderLoader func(key string) (ShaderSources, error)

// NewShaderCache returns a resource.Manager that compiles and links shader
// sources from load on cache miss, caching the resulting program.
// immediateUnload selects between the manager's immediate and deferred
// unload policies.
func NewShaderCache(gl gfx.Provider, load ShaderLoader, immediateUnload bool) *resource.Manager[*Shader] {
	return resource.NewManager(
		func(key string) (*Shader, error) {
			sources, err := load(key)
			if err != nil {
				return nil, err
			}
			return CompileShader(gl, sources)
		},
		func(s *Shader) { s.Dispose() },
		immediateUnload,
	)
}

// MeshLoader is the host's mesh asset interface: given a resource key, it
// supplies the raw gombz-encoded mesh bytes (file-asset resolution itself
// stays out of this core's scope).
type MeshLoader func(key string) ([]byte, error)

// NewMeshCache returns a resource.Manager that decodes and uploads gombz
// meshes on cache miss.
func NewMeshCache(gl gfx.Provider, load MeshLoader, immediateUnload bool) *resource.Manager[*Mesh] {
	return resource.NewManager(
		func(key string) (*Mesh, error) {
			data, err := load(key)
			if err != nil {
				return nil, err
			}
			return FromGombz(gl, data)
		},
		func(m *Mesh) { m.Dispose() },
		immediateUnload,
	)
}

// TextureData is already-decoded pixel data; PNG/JPEG decoding is a host
// concern outside this core's scope, so the loader the host supplies here
// returns raw RGBA8 bytes, not compressed image bytes.
type TextureData struct {
	Width, Height int32
	Pixels        []byte // RGBA8, row-major, width*height*4 bytes
}

// TextureLoader is the host's decoded-pixel supply function for a texture
// resource key.
type TextureLoader func(key string) (TextureData, error)

// NewTextureCache returns a resource.Manager that uploads decoded pixel
// data into a GL texture on cache miss.
func NewTextureCache(gl gfx.Provider, load TextureLoader, immediateUnload bool) *resource.Manager[gfx.Texture] {
	return resource.NewManager(
		func(key string) (gfx.Texture, error) {
			data, err := load(key)
			if err != nil {
				return gfx.NoTexture, err
			}
			tex := gl.GenTexture()
			gl.BindTexture(gfx.TEXTURE_2D, tex)
			gl.TexImage2D(gfx.TEXTURE_2D, 0, int32(gfx.RGBA), data.Width, data.Height, 0, gfx.RGBA, gfx.UNSIGNED_BYTE, gl.Ptr(data.Pixels), len(data.Pixels))
			gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MIN_FILTER, int32(gfx.LINEAR))
			gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_MAG_FILTER, int32(gfx.LINEAR))
			gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_S, int32(gfx.CLAMP_TO_EDGE))
			gl.TexParameteri(gfx.TEXTURE_2D, gfx.TEXTURE_WRAP_T, int32(gfx.CLAMP_TO_EDGE))
			gl.GenerateMipmap(gfx.TEXTURE_2D)
			return tex, nil
		},
		func(t gfx.Texture) { gl.DeleteTexture(t) },
		immediateUnload,
	)
}

// MaterialDesc is what the host's material asset interface supplies for a
// material resource key: which shader and textures it composes, plus its
// scalar uniforms. The material cache resolves ShaderKey/TextureKeys
// through the shader and texture caches and holds those sub-handles alive
// for as long as the material itself is cached.
type MaterialDesc struct {
	ShaderKey   string
	TextureKeys map[string]string // uniform name -> texture cache key

	DiffuseColor  mgl32.Vec4
	SpecularColor mgl32.Vec4
	Metallic      float32
	Roughness     float32
	Shininess     float32
}

// MaterialLoader supplies a MaterialDesc for a material resource key.
type MaterialLoader func(key string) (MaterialDesc, error)

// NewMaterialCache returns a resource.Manager composing materials out of
// the shader and texture caches: loading a material acquires a handle on
// its shader and every texture it references and stashes them on the
// Material itself (unexported fields), so unloading the material releases
// exactly those sub-handles — the material's dependencies stay alive for
// as long as something holds the material's own handle, with refcount
// conservation applied transitively.
func NewMaterialCache(shaders *resource.Manager[*Shader], textures *resource.Manager[gfx.Texture], load MaterialLoader, immediateUnload bool) *resource.Manager[*Material] {
	return resource.NewManager(
		func(key string) (*Material, error) {
			desc, err := load(key)
			if err != nil {
				return nil, err
			}
			shaderHandle, err := shaders.Get(desc.ShaderKey)
			if err != nil {
				return nil, err
			}
			shader, err := shaderHandle.Get()
			if err != nil {
				shaderHandle.Release()
				return nil, err
			}

			mat := NewMaterial(shader)
			mat.shaderHandle = shaderHandle
			mat.DiffuseColor = desc.DiffuseColor
			mat.SpecularColor = desc.SpecularColor
			mat.Metallic = desc.Metallic
			mat.Roughness = desc.Roughness
			mat.Shininess = desc.Shininess

			for uniform, texKey := range desc.TextureKeys {
				th, err := textures.Get(texKey)
				if err != nil {
					mat.releaseHandles()
					return nil, err
				}
				tex, err := th.Get()
				if err != nil {
					th.Release()
					mat.releaseHandles()
					return nil, err
				}
				mat.Textures[uniform] = tex
				mat.texHandles = append(mat.texHandles, th)
			}

			return mat, nil
		},
		func(mat *Material) { mat.releaseHandles() },
		immediateUnload,
	)
}
