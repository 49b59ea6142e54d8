package components

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldAnchor marks an entity whose world-space Transform should be
// projected into screen space each frame by the world-space UI projection
// system, typically a HUD marker tracking a 3D object.
type WorldAnchor struct {
	Offset mgl32.Vec3 // world-space offset applied before projecting
}

// ComponentDependencies: a WorldAnchor projects its entity's Transform.
func (WorldAnchor) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Transform{})}
}

// ScreenAnchor is the output the world-space UI projection system writes:
// the screen-space pixel position (origin top-left) a WorldAnchor entity
// projects to this frame.
type ScreenAnchor struct {
	ScreenX, ScreenY float32
	InFrontOfCamera  bool
}
