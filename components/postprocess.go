package components

import "reflect"

// PostProcess, when present on the active camera's entity, enables the
// bloom-style pipeline: bright-pixel extract, ping-pong blur, additive
// composite with exposure and optional ACES tonemap.
type PostProcess struct {
	Threshold      float32 // soft-knee bright-pass threshold
	Knee           float32
	BlurIterations int
	Exposure       float32
	ACESTonemap    bool
}

// NewPostProcess returns a PostProcess with conservative defaults.
func NewPostProcess() PostProcess {
	return PostProcess{Threshold: 1.0, Knee: 0.5, BlurIterations: 4, Exposure: 1.0}
}

// ComponentDependencies: post-processing only makes sense on a camera.
func (PostProcess) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Camera{})}
}
