package systems

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tbogdala/groggy"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/gfxstate"
	"github.com/embergrove/forgecs/render"
	"github.com/embergrove/forgecs/resource"
)

// InstancedMeshRender batches every opaque entity flagged StaticBatching
// into one draw call per (mesh, material) pair, uploading their world
// matrices as a per-instance vertex attribute. Runs before MeshRender
// (priority -100) so the ordinary mesh pass only has to handle the
// non-batched remainder. Grounded in fizzle's RenderableCore
// vertex-attribute wiring, generalized from a
// single entity per draw call to per-instance attribute divisors.
type InstancedMeshRender struct {
	GL        gfx.Provider
	State     *gfxstate.StateContext
	Meshes    *resource.Manager[*render.Mesh]
	Materials *resource.Manager[*render.Material]
}

func NewInstancedMeshRender(gl gfx.Provider, state *gfxstate.StateContext, meshes *resource.Manager[*render.Mesh], materials *resource.Manager[*render.Material]) *InstancedMeshRender {
	return &InstancedMeshRender{GL: gl, State: state, Meshes: meshes, Materials: materials}
}

func (*InstancedMeshRender) Name() string     { return "instanced_mesh_render" }
func (*InstancedMeshRender) Phase() ecs.Phase { return ecs.PhaseRender }
func (*InstancedMeshRender) Priority() int    { return -100 }

type batchKey struct {
	meshKey string
	matKey  string
}

func (s *InstancedMeshRender) Run(w *ecs.World, ctx ecs.FrameContext) error {
	camID, hasCam := w.Scene.ActiveCamera()
	if !hasCam {
		return nil
	}
	cam := ecs.MustGet[components.Camera](w, camID)

	batches := map[batchKey][]mgl32.Mat4{}
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.MeshRenderer](), ecs.TypeOf[components.Transform](), ecs.TypeOf[components.StaticFlags]()) {
		sf := ecs.MustGet[components.StaticFlags](w, id)
		if !sf.Has(components.StaticBatching) {
			continue
		}
		mr := ecs.MustGet[components.MeshRenderer](w, id)
		if !mr.Drawable() || mr.Queue != components.QueueOpaque {
			continue
		}
		if components.LayerOf(w, id) != ctx.Layer || !components.InActiveDimension(w, id) {
			continue
		}
		if vis, ok := ecs.Get[components.Visibility](w, id); ok && !vis.Effective() {
			continue
		}
		key := batchKey{meshKey: mr.MeshKey, matKey: mr.MaterialKey}
		t := ecs.MustGet[components.Transform](w, id)
		batches[key] = append(batches[key], t.WorldMatrix())
	}
	if len(batches) == 0 {
		return nil
	}

	keys := make([]batchKey, 0, len(batches))
	for k := range batches {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].matKey != keys[j].matKey {
			return keys[i].matKey < keys[j].matKey
		}
		return keys[i].meshKey < keys[j].meshKey
	})

	s.State.Push()
	s.State.SetDepthTestEnable(true)
	s.State.SetDepthMask(true)
	for _, k := range keys {
		s.drawBatch(k, batches[k], cam)
	}
	s.State.Pop()
	return nil
}

func (s *InstancedMeshRender) drawBatch(k batchKey, models []mgl32.Mat4, cam *components.Camera) {
	meshHandle, err := s.Meshes.Get(k.meshKey)
	if err != nil {
		groggy.Logsf("WARN", "instanced_mesh_render: mesh %q unavailable: %v", k.meshKey, err)
		return
	}
	defer meshHandle.Release()
	mesh, err := meshHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "instanced_mesh_render: mesh %q invalid: %v", k.meshKey, err)
		return
	}

	matHandle, err := s.Materials.Get(k.matKey)
	if err != nil {
		groggy.Logsf("WARN", "instanced_mesh_render: material %q unavailable: %v", k.matKey, err)
		return
	}
	defer matHandle.Release()
	mat, err := matHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "instanced_mesh_render: material %q invalid: %v", k.matKey, err)
		return
	}

	s.State.Push()
	mat.Bind(s.GL, s.State)
	mat.SetMatrices(s.GL, mgl32.Ident4(), cam.View, cam.Proj)
	mesh.UploadInstances(models)
	mesh.DrawInstanced(gfx.TRIANGLES, int32(len(models)))
	s.State.Pop()
}
