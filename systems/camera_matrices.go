package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// CameraMatrices composes View/Proj/ViewProjection for every Camera from
// its entity's resolved Transform, and records whichever Camera has
// Active == true as the World's active camera (priority 100). At most one
// camera may be active; the last one found wins and earlier active flags
// are not modified here, matching fizzle's "most recently flagged camera
// wins" convention in scene.Manager.
type CameraMatrices struct{}

func (CameraMatrices) Name() string     { return "camera_matrices" }
func (CameraMatrices) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (CameraMatrices) Priority() int    { return 100 }

func (CameraMatrices) Run(w *ecs.World, ctx ecs.FrameContext) error {
	foundActive := false
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.Camera](), ecs.TypeOf[components.Transform]()) {
		cam := ecs.MustGet[components.Camera](w, id)
		t := ecs.MustGet[components.Transform](w, id)

		eye := t.Position
		center := eye.Add(t.Forward())
		cam.View = mgl32.LookAtV(eye, center, t.Up())

		switch cam.Projection {
		case components.ProjectionPerspective:
			cam.Proj = mgl32.Perspective(mgl32.DegToRad(cam.Fov), cam.Aspect, cam.Near, cam.Far)
		case components.ProjectionOrthographic:
			halfH := cam.OrthoSize
			halfW := halfH * cam.Aspect
			cam.Proj = mgl32.Ortho(-halfW, halfW, -halfH, halfH, cam.Near, cam.Far)
		}

		cam.ViewProjection = cam.Proj.Mul4(cam.View)

		if cam.Active {
			w.Scene.SetActiveCamera(id)
			foundActive = true
		}
	}
	if !foundActive {
		w.Scene.ClearActiveCamera()
	}
	return nil
}
