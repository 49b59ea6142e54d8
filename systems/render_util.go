package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// cameraViewProjection reads the active camera's composed matrix, computed
// earlier this frame by CameraMatrices (priority 100).
func cameraViewProjection(w *ecs.World, camID ecs.EntityId) mgl32.Mat4 {
	return ecs.MustGet[components.Camera](w, camID).ViewProjection
}
