package systems

import (
	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// TrailAdvance ages every recorded Trail point, drops the ones past
// Lifetime, and appends a new sample from the entity's current world
// position when it has moved at least MinSpacing since the last one.
// Runs at priority 20, after transform-resolve and before camera matrices.
type TrailAdvance struct{}

func (TrailAdvance) Name() string     { return "trail_advance" }
func (TrailAdvance) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (TrailAdvance) Priority() int    { return 20 }

func (TrailAdvance) Run(w *ecs.World, ctx ecs.FrameContext) error {
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.Trail](), ecs.TypeOf[components.Transform]()) {
		trail := ecs.MustGet[components.Trail](w, id)
		t := ecs.MustGet[components.Transform](w, id)

		kept := trail.Points[:0]
		for _, p := range trail.Points {
			p.Age += ctx.Dt
			if p.Age < trail.Lifetime {
				kept = append(kept, p)
			}
		}
		trail.Points = kept

		pos := t.Position
		shouldAppend := len(trail.Points) == 0
		if !shouldAppend {
			last := trail.Points[len(trail.Points)-1]
			shouldAppend = pos.Sub(last.Position).Len() >= trail.MinSpacing
		}
		if shouldAppend {
			trail.Points = append(trail.Points, components.TrailPoint{Position: pos})
			if trail.MaxPoints > 0 && len(trail.Points) > trail.MaxPoints {
				trail.Points = trail.Points[len(trail.Points)-trail.MaxPoints:]
			}
		}
	}
	return nil
}
