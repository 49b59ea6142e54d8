package components

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/curve"
)

// TrailPoint is one recorded sample along a Trail's ribbon history.
type TrailPoint struct {
	Position mgl32.Vec3
	Age      float32
}

// Trail accumulates a history of its entity's world position over time,
// rendered as a fading ribbon (the trail-advance system, priority 20,
// samples it right after transform-resolve and before camera matrices).
type Trail struct {
	MaxPoints  int
	MinSpacing float32     // skip a sample closer than this to the last recorded one
	Lifetime   float32     // seconds before a point ages out
	Width      curve.Curve // width-over-life, sampled at point_age/Lifetime

	Points []TrailPoint
}

// NewTrail returns a Trail with a constant width of 1.
func NewTrail(maxPoints int, lifetime float32) Trail {
	return Trail{MaxPoints: maxPoints, Lifetime: lifetime, Width: curve.Constant(1)}
}

// ComponentDependencies: a Trail samples its entity's Transform position.
func (Trail) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Transform{})}
}
