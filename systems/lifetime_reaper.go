package systems

import (
	"math"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// LifetimeReaper runs last in UPDATE (priority = max int), marking and then
// destroying entities whose Lifetime condition has been met:
//   - TRANSIENT(d): elapsed += dt; mark once elapsed >= d.
//   - VIEW: mark once the active camera identity differs from the one
//     recorded when the entity was created.
//   - SESSION: mark once the host's on_session_end signal has fired.
//   - MANUAL: never marked here; only an explicit external Mark() call.
type LifetimeReaper struct{}

func (LifetimeReaper) Name() string     { return "lifetime_reaper" }
func (LifetimeReaper) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (LifetimeReaper) Priority() int    { return math.MaxInt32 }

func (LifetimeReaper) Run(w *ecs.World, ctx ecs.FrameContext) error {
	var toDestroy []ecs.EntityId

	for _, id := range w.EntitiesWith(ecs.TypeOf[components.Lifetime]()) {
		lt := ecs.MustGet[components.Lifetime](w, id)

		switch lt.Kind {
		case components.LifetimeTransient:
			lt.Elapsed += ctx.Dt
			if lt.Elapsed >= lt.Duration {
				lt.Elapsed = lt.Duration
				lt.Mark()
			}
		case components.LifetimeView:
			if w.Scene.CameraChangedSince(id) {
				lt.Mark()
			}
		case components.LifetimeSession:
			if w.Scene.SessionEnded() {
				lt.Mark()
			}
		case components.LifetimeManual:
			// external Mark() only
		}

		if lt.MarkedForDestroy() {
			toDestroy = append(toDestroy, id)
		}
	}

	for _, id := range toDestroy {
		w.DestroyEntity(id)
	}
	return nil
}
