// Package systems implements the baseline UPDATE/RENDER systems, wired at
// their fixed priorities. Each system is a small stateless struct
// satisfying ecs.System, grounded in fizzle's per-frame renderer passes
// (forward_renderer.go, deferred_renderer.go) and scene system list
// (scene/system.go), generalized from fizzle's fixed render loop to a
// declarative phase/priority schedule.
package systems

import (
	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// TransformResolve recomputes every dirty Transform's world matrix and
// basis vectors. Runs first in UPDATE (priority -1000) so every later
// system observes current matrices.
type TransformResolve struct{}

func (TransformResolve) Name() string     { return "transform_resolve" }
func (TransformResolve) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (TransformResolve) Priority() int    { return -1000 }

func (TransformResolve) Run(w *ecs.World, ctx ecs.FrameContext) error {
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.Transform]()) {
		t := ecs.MustGet[components.Transform](w, id)
		t.Resolve()
	}
	return nil
}
