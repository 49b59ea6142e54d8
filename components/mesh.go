package components

import "reflect"

// RenderQueue is the draw-order bucket for a MeshRenderer, ascending in the
// order queues are drawn.
type RenderQueue int

const (
	QueueBackground  RenderQueue = 1000
	QueueOpaque      RenderQueue = 2000
	QueueTransparent RenderQueue = 3000
	QueueOverlay     RenderQueue = 4000
)

// MeshRenderer references the mesh and material to draw by resource key
// (resolved through resource.Manager at render time) plus its draw-order
// controls.
type MeshRenderer struct {
	MeshKey     string
	MaterialKey string
	Queue       RenderQueue
	SortOrder   int
	CastShadows bool
}

// NewMeshRenderer returns a MeshRenderer drawing in the opaque queue.
func NewMeshRenderer(meshKey, materialKey string) MeshRenderer {
	return MeshRenderer{MeshKey: meshKey, MaterialKey: materialKey, Queue: QueueOpaque}
}

// Drawable reports whether both mesh and material references are set, the
// precondition for the entity to actually be drawn.
func (m *MeshRenderer) Drawable() bool {
	return m.MeshKey != "" && m.MaterialKey != ""
}

// ComponentDependencies: a MeshRenderer is positioned by its entity's
// Transform.
func (MeshRenderer) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Transform{})}
}

// StaticFlagBit is a single bit in the StaticFlags bitset.
type StaticFlagBit uint8

const (
	StaticBatching StaticFlagBit = 1 << iota
	StaticOccluder
	StaticOccludee
)

// StaticFlags is a bitset over {BATCHING, OCCLUDER, OCCLUDEE}.
type StaticFlags struct {
	Bits StaticFlagBit
}

func (f StaticFlags) Has(bit StaticFlagBit) bool { return f.Bits&bit != 0 }
func (f *StaticFlags) Set(bit StaticFlagBit)     { f.Bits |= bit }
func (f *StaticFlags) Clear(bit StaticFlagBit)   { f.Bits &^= bit }
