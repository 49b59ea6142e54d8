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

// MeshRender draws every visible MeshRenderer entity queue-by-queue:
// BACKGROUND, OPAQUE, TRANSPARENT, OVERLAY in ascending order, each with
// its own depth policy and sort rule. Runs at RENDER priority 0, after
// instanced rendering has drawn the batched subset. Grounded in fizzle's
// forward_renderer.go draw loop, generalized from its single fixed pass
// to a four-queue schedule.
type MeshRender struct {
	GL        gfx.Provider
	State     *gfxstate.StateContext
	Meshes    *resource.Manager[*render.Mesh]
	Materials *resource.Manager[*render.Material]

	// Lightmap, when set, is bound for WORLD_3D draws whose material
	// shader declares a "lightmap" sampler (the lit shader keys).
	Lightmap *render.Lightmap
}

func NewMeshRender(gl gfx.Provider, state *gfxstate.StateContext, meshes *resource.Manager[*render.Mesh], materials *resource.Manager[*render.Material]) *MeshRender {
	return &MeshRender{GL: gl, State: state, Meshes: meshes, Materials: materials}
}

func (*MeshRender) Name() string     { return "mesh_render" }
func (*MeshRender) Phase() ecs.Phase { return ecs.PhaseRender }
func (*MeshRender) Priority() int    { return 0 }

type drawItem struct {
	id          ecs.EntityId
	meshKey     string
	matKey      string
	sortOrder   int
	distSq      float32
	castShadows bool
	model       mgl32.Mat4
}

func meshKeyFor(w *ecs.World, id ecs.EntityId, mr *components.MeshRenderer) string {
	if lod, ok := ecs.Get[components.LOD](w, id); ok {
		if k := lod.ActiveMeshKey(); k != "" {
			return k
		}
	}
	return mr.MeshKey
}

func (s *MeshRender) Run(w *ecs.World, ctx ecs.FrameContext) error {
	camID, hasCam := w.Scene.ActiveCamera()
	if !hasCam {
		return nil // a null active camera causes the whole pass to no-op
	}
	cam := ecs.MustGet[components.Camera](w, camID)
	camPos := ecs.MustGet[components.Transform](w, camID).Position

	byQueue := map[components.RenderQueue][]drawItem{}
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.MeshRenderer](), ecs.TypeOf[components.Transform]()) {
		mr := ecs.MustGet[components.MeshRenderer](w, id)
		if !mr.Drawable() {
			continue
		}
		if components.LayerOf(w, id) != ctx.Layer || !components.InActiveDimension(w, id) {
			continue
		}
		if vis, ok := ecs.Get[components.Visibility](w, id); ok && !vis.Effective() {
			continue
		}
		if sf, ok := ecs.Get[components.StaticFlags](w, id); ok && sf.Has(components.StaticBatching) && mr.Queue == components.QueueOpaque {
			continue // drawn by the instanced-mesh system instead
		}

		t := ecs.MustGet[components.Transform](w, id)
		d := t.Position.Sub(camPos)
		byQueue[mr.Queue] = append(byQueue[mr.Queue], drawItem{
			id:          id,
			meshKey:     meshKeyFor(w, id, mr),
			matKey:      mr.MaterialKey,
			sortOrder:   mr.SortOrder,
			distSq:      d.Dot(d),
			castShadows: mr.CastShadows,
			model:       t.WorldMatrix(),
		})
	}

	for _, q := range []components.RenderQueue{components.QueueBackground, components.QueueOpaque, components.QueueTransparent, components.QueueOverlay} {
		items := byQueue[q]
		if len(items) == 0 {
			continue
		}
		sortQueue(q, items)

		s.State.Push()
		switch q {
		case components.QueueBackground:
			s.State.SetDepthMask(false)
		case components.QueueOpaque:
			s.State.SetDepthTestEnable(true)
			s.State.SetDepthMask(true)
		case components.QueueTransparent:
			s.State.SetDepthTestEnable(true)
			s.State.SetDepthMask(false)
			s.State.SetBlendEnable(true)
			s.State.SetBlendFunc(gfx.SRC_ALPHA, gfx.ONE_MINUS_SRC_ALPHA)
		case components.QueueOverlay:
			s.State.SetDepthTestEnable(false)
		}

		var lightmap *render.Lightmap
		if ctx.Layer == ecs.LayerWorld3D {
			lightmap = s.Lightmap
		}
		for _, item := range items {
			s.drawOne(item, cam, lightmap)
		}
		s.State.Pop()
	}
	return nil
}

// sortQueue orders BACKGROUND/OPAQUE/OVERLAY by (material, mesh, sortOrder,
// front-to-back distance) to minimize state transitions, and TRANSPARENT
// strictly back-to-front by squared camera distance.
func sortQueue(q components.RenderQueue, items []drawItem) {
	if q == components.QueueTransparent {
		sort.SliceStable(items, func(i, j int) bool { return items[i].distSq > items[j].distSq })
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.matKey != b.matKey {
			return a.matKey < b.matKey
		}
		if a.meshKey != b.meshKey {
			return a.meshKey < b.meshKey
		}
		if a.sortOrder != b.sortOrder {
			return a.sortOrder < b.sortOrder
		}
		return a.distSq < b.distSq
	})
}

func (s *MeshRender) drawOne(item drawItem, cam *components.Camera, lightmap *render.Lightmap) {
	meshHandle, err := s.Meshes.Get(item.meshKey)
	if err != nil {
		groggy.Logsf("WARN", "mesh_render: mesh %q unavailable for entity %d: %v", item.meshKey, item.id, err)
		return
	}
	defer meshHandle.Release()
	mesh, err := meshHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "mesh_render: mesh %q invalid: %v", item.meshKey, err)
		return
	}

	matHandle, err := s.Materials.Get(item.matKey)
	if err != nil {
		groggy.Logsf("WARN", "mesh_render: material %q unavailable for entity %d: %v", item.matKey, item.id, err)
		return
	}
	defer matHandle.Release()
	mat, err := matHandle.Get()
	if err != nil {
		groggy.Logsf("WARN", "mesh_render: material %q invalid: %v", item.matKey, err)
		return
	}

	s.State.Push()
	mat.Bind(s.GL, s.State)
	if lightmap != nil {
		lightmap.Bind(s.GL, s.State, mat.Shader)
	}
	mat.SetMatrices(s.GL, item.model, cam.View, cam.Proj)
	mesh.Draw(gfx.TRIANGLES)
	s.State.Pop()
}
