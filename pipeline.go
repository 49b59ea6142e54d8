// Package forgecs is the module root: the small host-facing entry point
// that owns one ecs.World and Scheduler and routes the five events a host
// drives into update/render sweeps on the right Layer. Everything else —
// components, systems, the particle engine, the resource manager, the GL
// state stack — lives in the sibling packages this file wires together.
package forgecs

import (
	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
	"github.com/embergrove/forgecs/gfxstate"
	"github.com/embergrove/forgecs/particlesys"
	"github.com/embergrove/forgecs/postprocess"
	"github.com/embergrove/forgecs/render"
	"github.com/embergrove/forgecs/resource"
	"github.com/embergrove/forgecs/systems"
)

// Resources bundles the typed resource.Manager caches every render/particle
// system draws assets through, keyed by the asset-interface loaders the
// host supplies. Grouped here so Pipeline's constructor doesn't take nine
// positional arguments.
type Resources struct {
	Shaders   *resource.Manager[*render.Shader]
	Meshes    *resource.Manager[*render.Mesh]
	Textures  *resource.Manager[gfx.Texture]
	Materials *resource.Manager[*render.Material]
}

// Pipeline is the core's single entry point: one World, one Scheduler, and
// the fixed system roster at its baseline priorities plus the optional
// post-process pass. A host embeds a Pipeline, feeds it a
// Provider/Resources pair built against its live GL context, and drives it
// exclusively through the On*Render/OnDimensionChange/OnSessionEnd methods
// below — it never touches World or Scheduler directly.
type Pipeline struct {
	World     *ecs.World
	Scheduler *ecs.Scheduler

	Particles *particlesys.RenderSystem
	PostFX    *postprocess.Pipeline

	gl       gfx.Provider
	mesh     *systems.MeshRender
	lightmap *render.Lightmap
}

// NewPipeline constructs a World and registers every UPDATE/RENDER system
// at its baseline priority, wiring each render/particle system to the
// shared Provider, GL state stack, and resource caches. sceneColor
// supplies the post-process pass's scene-color input: the enclosing
// renderer's own color buffer is an external collaborator.
func NewPipeline(gl gfx.Provider, state *gfxstate.StateContext, res Resources, sceneColor postprocess.SceneColorSource) *Pipeline {
	world := ecs.NewWorld()
	sched := ecs.NewScheduler()

	particleRender := particlesys.NewRenderSystem(gl, state, res.Shaders, res.Meshes)
	postFX := postprocess.NewPipeline(gl, state, res.Shaders, sceneColor)

	// UPDATE. The scheduler runs these by priority, not in the order added
	// here, so TrailAdvance (20) runs before CameraMatrices (100).
	sched.Add(world, systems.TransformResolve{})
	sched.Add(world, systems.LODSystem{})
	sched.Add(world, systems.FrustumCulling{})
	sched.Add(world, systems.CameraMatrices{})
	sched.Add(world, systems.WorldSpaceUIProjection{})
	sched.Add(world, particlesys.NewEmitSystem(gl))
	sched.Add(world, particlesys.NewPhysicsSystem(nil))
	sched.Add(world, systems.TrailAdvance{})
	sched.Add(world, systems.LifetimeReaper{})

	// RENDER, in baseline priority order, plus the post-process pass
	// appended after every other RENDER system.
	instanced := systems.NewInstancedMeshRender(gl, state, res.Meshes, res.Materials)
	mesh := systems.NewMeshRender(gl, state, res.Meshes, res.Materials)
	line := systems.NewLineRender(gl, state, res.Shaders)
	sprite := systems.NewSpriteRender(gl, state, res.Shaders, res.Textures)
	sched.Add(world, instanced)
	sched.Add(world, mesh)
	sched.Add(world, line)
	sched.Add(world, sprite)
	sched.Add(world, particleRender)
	sched.Add(world, systems.NewDebugRender(line))
	sched.Add(world, postFX)

	return &Pipeline{World: world, Scheduler: sched, Particles: particleRender, PostFX: postFX, gl: gl, mesh: mesh}
}

// SetLightmap uploads the host's 16x16 RGB lightmap for this frame; lit
// WORLD_3D materials sample it by (blockLight, skyLight). pixels must be
// 16*16*3 bytes. The first call allocates the backing texture.
func (p *Pipeline) SetLightmap(pixels []byte) error {
	if p.lightmap == nil {
		p.lightmap = render.NewLightmap(p.gl)
		p.mesh.Lightmap = p.lightmap
	}
	return p.lightmap.Update(pixels)
}

// OnSceneRender drives the WORLD_3D layer: UPDATE then RENDER for every
// entity whose Layer component (or lack of one) is WORLD_3D.
func (p *Pipeline) OnSceneRender(dtSeconds, partialTick float32) {
	p.run(ecs.LayerWorld3D, dtSeconds, partialTick)
}

// OnOverlayRender drives the HUD layer.
func (p *Pipeline) OnOverlayRender(dtSeconds float32) {
	p.run(ecs.LayerHUD, dtSeconds, 0)
}

// OnGuiRender drives the GUI layer.
func (p *Pipeline) OnGuiRender(dtSeconds float32) {
	p.run(ecs.LayerGUI, dtSeconds, 0)
}

func (p *Pipeline) run(layer ecs.Layer, dt, partialTick float32) {
	ctx := ecs.FrameContext{Layer: layer, Dt: dt, PartialTick: partialTick}
	p.Scheduler.Run(ecs.PhaseUpdate, p.World, ctx)
	p.Scheduler.Run(ecs.PhaseRender, p.World, ctx)
}

// OnDimensionChange writes SceneManager.active_dimension_id, changing
// which Dimension-tagged entities subsequent frames consider visible.
func (p *Pipeline) OnDimensionChange(id int) {
	p.World.Scene.SetActiveDimension(id)
}

// OnSessionEnd triggers SESSION-kind Lifetime reaping on the next UPDATE's
// lifetime-reaper sweep.
func (p *Pipeline) OnSessionEnd() {
	p.World.Scene.TriggerSessionEnd()
}

// SetViewportSize records the current render-target size, read by the
// sprite-render and post-process systems to build their screen-space
// projections.
func (p *Pipeline) SetViewportSize(w, h int32) {
	p.World.Scene.SetViewportSize(w, h)
}
