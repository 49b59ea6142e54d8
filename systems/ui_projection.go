package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// WorldSpaceUIProjection projects every WorldAnchor entity's world
// position through the active camera's ViewProjection and the current
// viewport size into a ScreenAnchor, for HUD markers that track a 3D
// object (priority 150, after camera matrices and before the particle
// systems). No-ops when no camera or viewport size has been set yet.
type WorldSpaceUIProjection struct{}

func (WorldSpaceUIProjection) Name() string     { return "ui_projection" }
func (WorldSpaceUIProjection) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (WorldSpaceUIProjection) Priority() int    { return 150 }

func (WorldSpaceUIProjection) Run(w *ecs.World, ctx ecs.FrameContext) error {
	camID, hasCam := w.Scene.ActiveCamera()
	width, height, hasViewport := w.Scene.ViewportSize()
	if !hasCam || !hasViewport {
		return nil
	}
	cam := ecs.MustGet[components.Camera](w, camID)

	for _, id := range w.EntitiesWith(ecs.TypeOf[components.WorldAnchor](), ecs.TypeOf[components.Transform]()) {
		anchor := ecs.MustGet[components.WorldAnchor](w, id)
		t := ecs.MustGet[components.Transform](w, id)

		worldPos := t.Position.Add(anchor.Offset)
		clip := cam.ViewProjection.Mul4x1(mgl32.Vec4{worldPos[0], worldPos[1], worldPos[2], 1})

		screen := components.ScreenAnchor{InFrontOfCamera: clip[3] > 0}
		if clip[3] != 0 {
			ndcX := clip[0] / clip[3]
			ndcY := clip[1] / clip[3]
			screen.ScreenX = (ndcX*0.5 + 0.5) * float32(width)
			screen.ScreenY = (1 - (ndcY*0.5 + 0.5)) * float32(height)
		}

		if existing, ok := ecs.Get[components.ScreenAnchor](w, id); ok {
			*existing = screen
		} else {
			ecs.AddComponent(w, id, screen)
		}
	}
	return nil
}
