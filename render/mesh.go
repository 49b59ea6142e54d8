package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tbogdala/glider"
	"github.com/tbogdala/gombz"

	"github.com/embergrove/forgecs/gfx"
)

// Mesh-attribute locations, fixed across every built-in shader key so the
// mesh/instanced/line/sprite systems don't need per-material attribute
// lookups for the common vertex layout. Locations 3-6 are reserved for the
// per-instance model-matrix columns the instanced-mesh render system binds.
const (
	AttribPosition     = 0
	AttribNormal       = 1
	AttribUV           = 2
	AttribInstanceCol0 = 3
	AttribInstanceCol1 = 4
	AttribInstanceCol2 = 5
	AttribInstanceCol3 = 6
)

// Mesh owns a GL vertex array plus its backing buffers and the local AABB
// culling reads when an entity has no explicit Bounds component. Grounded
// in fizzle's RenderableCore VBO set (renderable.go), trimmed to the
// position/normal/UV/index layout every render system in this module
// consumes and decoupled from any one Renderable/skeleton.
type Mesh struct {
	gl gfx.Provider

	VAO gfx.VertexArray

	vertVBO, normVBO, uvVBO, elementVBO gfx.Buffer

	VertexCount int32
	IndexCount  int32

	LocalAABB glider.AABBox

	instanceVBO gfx.Buffer
	instanceCap int32
}

// FromGombz decodes a gombz-encoded mesh binary supplied by the host's
// mesh asset interface and uploads it into GL buffers, computing the
// local AABB from the raw vertex positions.
func FromGombz(gl gfx.Provider, data []byte) (*Mesh, error) {
	src, err := gombz.DecodeMesh(data)
	if err != nil {
		return nil, err
	}

	verts := make([]float32, len(src.Vertices)*3)
	box := *glider.NewAABBox()
	for i, v := range src.Vertices {
		o := i * 3
		verts[o], verts[o+1], verts[o+2] = v[0], v[1], v[2]
		if i == 0 {
			box.Min, box.Max = v, v
			continue
		}
		for axis := 0; axis < 3; axis++ {
			if v[axis] < box.Min[axis] {
				box.Min[axis] = v[axis]
			}
			if v[axis] > box.Max[axis] {
				box.Max[axis] = v[axis]
			}
		}
	}

	var normals []float32
	if len(src.Normals) > 0 {
		normals = make([]float32, len(src.Normals)*3)
		for i, n := range src.Normals {
			o := i * 3
			normals[o], normals[o+1], normals[o+2] = n[0], n[1], n[2]
		}
	}

	var uvs []float32
	if len(src.UVChannels) > 0 && len(src.UVChannels[0]) > 0 {
		chan0 := src.UVChannels[0]
		uvs = make([]float32, int(src.VertexCount)*2)
		for i := 0; i < int(src.VertexCount) && i < len(chan0); i++ {
			uv := chan0[i]
			uvs[i*2], uvs[i*2+1] = uv[0], uv[1]
		}
	}

	indices := make([]uint32, len(src.Faces)*3)
	for i, f := range src.Faces {
		o := i * 3
		indices[o], indices[o+1], indices[o+2] = f[0], f[1], f[2]
	}

	return newMesh(gl, verts, normals, uvs, indices, box)
}

// FromRaw builds a Mesh directly from flat vertex/index arrays, the path
// procedurally generated geometry (debug wireframes, particle instance
// cubes/tetrahedra/octahedra/icosahedra, built-in primitives) uses instead
// of a gombz round-trip. Grounded in fizzle's CreatePlaneXY-style
// primitive constructors (primitives.go), which build the same flat
// float/uint32 slices by hand.
func FromRaw(gl gfx.Provider, verts, normals, uvs []float32, indices []uint32) (*Mesh, error) {
	box := *glider.NewAABBox()
	for i := 0; i+2 < len(verts); i += 3 {
		v := [3]float32{verts[i], verts[i+1], verts[i+2]}
		if i == 0 {
			box.Min, box.Max = v, v
			continue
		}
		for axis := 0; axis < 3; axis++ {
			if v[axis] < box.Min[axis] {
				box.Min[axis] = v[axis]
			}
			if v[axis] > box.Max[axis] {
				box.Max[axis] = v[axis]
			}
		}
	}
	return newMesh(gl, verts, normals, uvs, indices, box)
}

func newMesh(gl gfx.Provider, verts, normals, uvs []float32, indices []uint32, box glider.AABBox) (*Mesh, error) {
	const floatSize = 4
	const uintSize = 4

	m := &Mesh{gl: gl, LocalAABB: box, VertexCount: int32(len(verts) / 3), IndexCount: int32(len(indices))}

	m.VAO = gl.GenVertexArray()
	gl.BindVertexArray(m.VAO)

	m.vertVBO = gl.GenBuffer()
	gl.BindBuffer(gfx.ARRAY_BUFFER, m.vertVBO)
	gl.BufferData(gfx.ARRAY_BUFFER, len(verts)*floatSize, gl.Ptr(verts), gfx.STATIC_DRAW)
	gl.EnableVertexAttribArray(AttribPosition)
	gl.VertexAttribPointer(AttribPosition, 3, gfx.FLOAT, false, 0, nil)

	if len(normals) > 0 {
		m.normVBO = gl.GenBuffer()
		gl.BindBuffer(gfx.ARRAY_BUFFER, m.normVBO)
		gl.BufferData(gfx.ARRAY_BUFFER, len(normals)*floatSize, gl.Ptr(normals), gfx.STATIC_DRAW)
		gl.EnableVertexAttribArray(AttribNormal)
		gl.VertexAttribPointer(AttribNormal, 3, gfx.FLOAT, false, 0, nil)
	}

	if len(uvs) > 0 {
		m.uvVBO = gl.GenBuffer()
		gl.BindBuffer(gfx.ARRAY_BUFFER, m.uvVBO)
		gl.BufferData(gfx.ARRAY_BUFFER, len(uvs)*floatSize, gl.Ptr(uvs), gfx.STATIC_DRAW)
		gl.EnableVertexAttribArray(AttribUV)
		gl.VertexAttribPointer(AttribUV, 2, gfx.FLOAT, false, 0, nil)
	}

	m.elementVBO = gl.GenBuffer()
	gl.BindBuffer(gfx.ELEMENT_ARRAY_BUFFER, m.elementVBO)
	gl.BufferData(gfx.ELEMENT_ARRAY_BUFFER, len(indices)*uintSize, gl.Ptr(indices), gfx.STATIC_DRAW)

	gl.BindVertexArray(0)
	return m, nil
}

// Draw issues a single indexed draw call of mode (TRIANGLES for meshes,
// LINES for the line-render system).
func (m *Mesh) Draw(mode gfx.Enum) {
	m.gl.BindVertexArray(m.VAO)
	m.gl.DrawElements(mode, m.IndexCount, gfx.UNSIGNED_INT, nil)
}

// DrawInstanced issues one instanced indexed draw covering count instances,
// used by the instanced-mesh and GPU particle-render systems.
func (m *Mesh) DrawInstanced(mode gfx.Enum, count int32) {
	m.gl.BindVertexArray(m.VAO)
	m.gl.DrawElementsInstanced(mode, m.IndexCount, gfx.UNSIGNED_INT, nil, count)
}

const instanceStride = 16 * 4 // one mat4, 4 bytes/float

// UploadInstances writes one 4x4 model matrix per instance into the mesh's
// per-instance buffer, attached to attribute locations 3-6 (one vec4 per
// column, divisor 1) the first time it's called. Grounds the instanced-mesh
// render system the same way fizzle's component buffers feed fixed vertex
// attributes, generalized to a dynamically-sized per-frame instance count.
func (m *Mesh) UploadInstances(matrices []mgl32.Mat4) {
	m.ensureInstanceBuffer()

	flat := make([]float32, len(matrices)*16)
	for i, mat := range matrices {
		copy(flat[i*16:i*16+16], mat[:])
	}

	m.gl.BindBuffer(gfx.ARRAY_BUFFER, m.instanceVBO)
	size := int32(len(flat) * 4)
	if size > m.instanceCap {
		m.gl.BufferData(gfx.ARRAY_BUFFER, len(flat)*4, m.gl.Ptr(flat), gfx.STREAM_DRAW)
		m.instanceCap = size
	} else if len(flat) > 0 {
		m.gl.BufferSubData(gfx.ARRAY_BUFFER, 0, len(flat)*4, m.gl.Ptr(flat))
	}
}

// UploadParticleInstances uploads one flat particle record (16 floats) per
// instance onto the same attribute locations UploadInstances uses for
// model-matrix columns (3-6): both are four vec4 columns per instance, so
// the mesh-mode particle render path — an instanced mesh drawn with a
// mesh-specific shader — reuses the identical binding machinery, just
// reinterpreting the four columns as (pos,life)/(vel,maxLife)/color/
// (size,rotation,type,angularVelocity) instead of a matrix.
func (m *Mesh) UploadParticleInstances(records []float32) {
	m.ensureInstanceBuffer()
	m.gl.BindBuffer(gfx.ARRAY_BUFFER, m.instanceVBO)
	size := int32(len(records) * 4)
	if size > m.instanceCap {
		m.gl.BufferData(gfx.ARRAY_BUFFER, len(records)*4, m.gl.Ptr(records), gfx.STREAM_DRAW)
		m.instanceCap = size
	} else if len(records) > 0 {
		m.gl.BufferSubData(gfx.ARRAY_BUFFER, 0, len(records)*4, m.gl.Ptr(records))
	}
}

// BindParticleInstanceBuffer points the mesh's per-instance attributes (3-6)
// directly at an externally-owned buffer (the GPU particle SSBO) instead of
// the mesh's own instance VBO, for the GPU particle-render path.
func (m *Mesh) BindParticleInstanceBuffer(buf gfx.Buffer) {
	m.gl.BindVertexArray(m.VAO)
	m.gl.BindBuffer(gfx.ARRAY_BUFFER, buf)
	for i, loc := range []uint32{AttribInstanceCol0, AttribInstanceCol1, AttribInstanceCol2, AttribInstanceCol3} {
		m.gl.EnableVertexAttribArray(loc)
		m.gl.VertexAttribPointer(loc, 4, gfx.FLOAT, false, instanceStride, m.gl.PtrOffset(i*16))
		m.gl.VertexAttribDivisor(loc, 1)
	}
	m.gl.BindVertexArray(0)
}

func (m *Mesh) ensureInstanceBuffer() {
	if m.instanceVBO != gfx.NoBuffer {
		return
	}
	m.instanceVBO = m.gl.GenBuffer()
	m.gl.BindVertexArray(m.VAO)
	m.gl.BindBuffer(gfx.ARRAY_BUFFER, m.instanceVBO)
	for i, loc := range []uint32{AttribInstanceCol0, AttribInstanceCol1, AttribInstanceCol2, AttribInstanceCol3} {
		m.gl.EnableVertexAttribArray(loc)
		m.gl.VertexAttribPointer(loc, 4, gfx.FLOAT, false, instanceStride, m.gl.PtrOffset(i*16))
		m.gl.VertexAttribDivisor(loc, 1)
	}
	m.gl.BindVertexArray(0)
}

// Dispose frees every GL object the mesh owns. Satisfies resource.Unloader.
func (m *Mesh) Dispose() {
	m.gl.DeleteBuffer(m.vertVBO)
	if m.normVBO != gfx.NoBuffer {
		m.gl.DeleteBuffer(m.normVBO)
	}
	if m.uvVBO != gfx.NoBuffer {
		m.gl.DeleteBuffer(m.uvVBO)
	}
	if m.instanceVBO != gfx.NoBuffer {
		m.gl.DeleteBuffer(m.instanceVBO)
	}
	m.gl.DeleteBuffer(m.elementVBO)
	m.gl.DeleteVertexArray(m.VAO)
}
