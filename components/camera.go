package components

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionKind selects between perspective and orthographic Camera
// projections.
type ProjectionKind int

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

// Camera composes view/projection/viewProjection matrices from the owning
// entity's Transform. At most one Camera per World may have Active == true.
// The camera system does not enforce this: it leaves every Active flag as
// set, and the last active camera it visits becomes the World's active
// camera.
type Camera struct {
	Projection ProjectionKind

	Fov       float32 // degrees, perspective only, must be in (0, 180)
	OrthoSize float32 // half-height, orthographic only
	Near      float32
	Far       float32
	Aspect    float32
	Active    bool

	View           mgl32.Mat4
	Proj           mgl32.Mat4
	ViewProjection mgl32.Mat4
}

// NewCamera returns a perspective Camera with sane defaults.
func NewCamera() Camera {
	return Camera{
		Projection: ProjectionPerspective,
		Fov:        70,
		Near:       0.1,
		Far:        1000,
		Aspect:     16.0 / 9.0,
		View:       mgl32.Ident4(),
		Proj:       mgl32.Ident4(),
	}
}

// ComponentDependencies declares that a Camera cannot be added to an entity
// before it has a Transform.
func (Camera) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Transform{})}
}
