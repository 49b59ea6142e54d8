package systems

import (
	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// LODSystem selects the active LOD level for each entity based on its
// distance to the active camera, with hysteresis so a distance hovering
// right at a threshold doesn't flicker between levels every frame. Runs
// at priority -800, after transform-resolve and before culling.
type LODSystem struct{}

func (LODSystem) Name() string     { return "lod" }
func (LODSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (LODSystem) Priority() int    { return -800 }

func (LODSystem) Run(w *ecs.World, ctx ecs.FrameContext) error {
	camID, hasCam := w.Scene.ActiveCamera()
	if !hasCam {
		return nil
	}
	camTransform, ok := ecs.Get[components.Transform](w, camID)
	if !ok {
		return nil
	}
	camPos := camTransform.Position

	for _, id := range w.EntitiesWith(ecs.TypeOf[components.LOD](), ecs.TypeOf[components.Transform]()) {
		lod := ecs.MustGet[components.LOD](w, id)
		if len(lod.Levels) == 0 {
			continue
		}
		t := ecs.MustGet[components.Transform](w, id)
		dist := t.Position.Sub(camPos).Len()

		next := selectLevel(lod, dist)
		lod.Active = next
	}
	return nil
}

// selectLevel picks the raw target level j with t_{j-1} <= dist < t_j, then
// only actually transitions away from the current active level once dist
// has crossed the active/target boundary threshold by at least
// Hysteresis, preventing flicker for a distance hovering right at a
// threshold.
func selectLevel(lod *components.LOD, dist float32) int {
	active := lod.Active
	if active < 0 || active >= len(lod.Levels) {
		active = 0
	}

	target := len(lod.Levels) - 1
	for j, lvl := range lod.Levels {
		if dist < lvl.Threshold {
			target = j
			break
		}
	}
	if target == active {
		return active
	}

	boundary := active
	if target < active {
		boundary = target
	}
	threshold := lod.Levels[boundary].Threshold

	if target > active {
		if dist >= threshold+lod.Hysteresis {
			return target
		}
	} else {
		if dist < threshold-lod.Hysteresis {
			return target
		}
	}
	return active
}
