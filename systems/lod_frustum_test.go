package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

func newSchedule(w *ecs.World) *ecs.Scheduler {
	s := ecs.NewScheduler()
	s.Add(w, TransformResolve{})
	s.Add(w, CameraMatrices{})
	s.Add(w, LODSystem{})
	s.Add(w, FrustumCulling{})
	return s
}

func spawnCamera(w *ecs.World, pos mgl32.Vec3) ecs.EntityId {
	id := w.CreateEntity()
	tr := components.NewTransform()
	tr.SetPosition(pos)
	ecs.AddComponent(w, id, tr)
	cam := components.NewCamera()
	cam.Active = true
	cam.Far = 1000
	ecs.AddComponent(w, id, cam)
	return id
}

// TestLODSelectsByDistanceAndCullingIsIndependent checks that an
// entity far enough to select its lowest LOD level must still be evaluated
// by frustum culling on its own terms (an entity behind the far plane is
// culled regardless of which LOD level it's showing; an entity in view
// keeps its LOD-selected level and is never culled just because it's at a
// secondary LOD level).
func TestLODSelectsByDistanceAndCullingIsIndependent(t *testing.T) {
	w := ecs.NewWorld()
	spawnCamera(w, mgl32.Vec3{0, 0, 0})

	near := w.CreateEntity()
	nt := components.NewTransform()
	nt.SetPosition(mgl32.Vec3{0, 0, -5})
	ecs.AddComponent(w, near, nt)
	ecs.AddComponent(w, near, components.NewLOD([]components.LODLevel{
		{Threshold: 10, MeshKey: "high"},
		{Threshold: 50, MeshKey: "low"},
	}, 1))
	ecs.AddComponent(w, near, components.NewBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}))
	vis := components.NewVisibility()
	ecs.AddComponent(w, near, vis)

	far := w.CreateEntity()
	ft := components.NewTransform()
	ft.SetPosition(mgl32.Vec3{0, 0, -30})
	ecs.AddComponent(w, far, ft)
	ecs.AddComponent(w, far, components.NewLOD([]components.LODLevel{
		{Threshold: 10, MeshKey: "high"},
		{Threshold: 50, MeshKey: "low"},
	}, 1))
	ecs.AddComponent(w, far, components.NewBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}))
	ecs.AddComponent(w, far, components.NewVisibility())

	sched := newSchedule(w)
	// LOD and frustum culling both run at a lower priority than camera
	// matrices, so they read the *previous* frame's camera state: run
	// twice so the second sweep sees a camera set by the first.
	sched.Run(ecs.PhaseUpdate, w, ecs.FrameContext{Dt: 0.016})
	sched.Run(ecs.PhaseUpdate, w, ecs.FrameContext{Dt: 0.016})

	nearLOD := ecs.MustGet[components.LOD](w, near)
	farLOD := ecs.MustGet[components.LOD](w, far)
	assert.Equal(t, 0, nearLOD.Active, "near entity stays at the highest-detail level")
	assert.Equal(t, 1, farLOD.Active, "far entity drops to the low-detail level")

	nearVis := ecs.MustGet[components.Visibility](w, near)
	farVis := ecs.MustGet[components.Visibility](w, far)
	assert.False(t, nearVis.Culled(), "near entity, still inside the frustum, is never culled")
	assert.False(t, farVis.Culled(), "far entity at 30 units is still well within the far plane of 1000")
}

// TestFrustumCullsEntityBehindCamera checks that the two systems compose
// correctly: LOD level selection is purely distance-based and unaffected by
// view direction, while frustum culling catches an entity LOD considers
// "near" (by straight-line distance) but which the camera is facing away
// from.
func TestFrustumCullsEntityBehindCamera(t *testing.T) {
	w := ecs.NewWorld()
	spawnCamera(w, mgl32.Vec3{0, 0, 0})

	behind := w.CreateEntity()
	bt := components.NewTransform()
	bt.SetPosition(mgl32.Vec3{0, 0, 5}) // behind the camera, which looks down -Z
	ecs.AddComponent(w, behind, bt)
	ecs.AddComponent(w, behind, components.NewLOD([]components.LODLevel{{Threshold: 100, MeshKey: "only"}}, 1))
	ecs.AddComponent(w, behind, components.NewBounds(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}))
	ecs.AddComponent(w, behind, components.NewVisibility())

	sched := newSchedule(w)
	sched.Run(ecs.PhaseUpdate, w, ecs.FrameContext{Dt: 0.016})
	sched.Run(ecs.PhaseUpdate, w, ecs.FrameContext{Dt: 0.016})

	behindLOD := ecs.MustGet[components.LOD](w, behind)
	assert.Equal(t, 0, behindLOD.Active, "LOD selection doesn't consider view direction")

	behindVis := ecs.MustGet[components.Visibility](w, behind)
	assert.True(t, behindVis.Culled(), "an entity behind the camera must be culled")
}
