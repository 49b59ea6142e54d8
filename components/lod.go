package components

import "reflect"

// LODLevel pairs a distance threshold with the mesh key to use while the
// entity is closer than that threshold and not closer than the previous
// level's. Thresholds across a LOD's Levels must be monotonically
// increasing; the last level also covers every distance beyond its own.
type LODLevel struct {
	Threshold float32
	MeshKey   string
}

// LOD selects between a handful of precomputed meshes based on camera
// distance, with hysteresis to prevent flicker right at a threshold.
type LOD struct {
	Levels     []LODLevel
	Hysteresis float32
	Active     int
}

// NewLOD returns an LOD starting at level 0.
func NewLOD(levels []LODLevel, hysteresis float32) LOD {
	return LOD{Levels: levels, Hysteresis: hysteresis}
}

// ComponentDependencies: LOD only makes sense relative to a Transform
// position.
func (LOD) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Transform{})}
}

// ActiveMeshKey returns the mesh key for the currently active level, or ""
// if Levels is empty.
func (l *LOD) ActiveMeshKey() string {
	if l.Active < 0 || l.Active >= len(l.Levels) {
		return ""
	}
	return l.Levels[l.Active].MeshKey
}
