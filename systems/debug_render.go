package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// DebugRender draws a wireframe box over every entity's world Bounds when
// Enabled, the last RENDER system before the post-process pass (priority
// 1000; post-process runs at 1100) so its lines overlay every other draw. It reuses LineRender's batch rather than owning
// a second GL buffer: queuing into next frame's line pass would show stale
// boxes, so instead it draws directly through the same shader/state path
// LineRender exposes via flushLayer.
type DebugRender struct {
	Enabled bool
	Color   mgl32.Vec4

	lines *LineRender
}

// NewDebugRender shares lines's GL resources and shader cache so both
// systems draw through one VAO/VBO pair.
func NewDebugRender(lines *LineRender) *DebugRender {
	return &DebugRender{lines: lines, Color: mgl32.Vec4{0, 1, 0, 1}}
}

func (*DebugRender) Name() string     { return "debug_render" }
func (*DebugRender) Phase() ecs.Phase { return ecs.PhaseRender }
func (*DebugRender) Priority() int    { return 1000 }

func (s *DebugRender) Run(w *ecs.World, ctx ecs.FrameContext) error {
	if !s.Enabled || ctx.Layer != ecs.LayerWorld3D {
		return nil
	}
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.Bounds]()) {
		if components.LayerOf(w, id) != ctx.Layer || !components.InActiveDimension(w, id) {
			continue
		}
		b := ecs.MustGet[components.Bounds](w, id)
		s.queueBox(b.World.Min, b.World.Max)
	}
	// Debug boxes draw in the same frame's line pass: DebugRender runs
	// after LineRender (priority 1000 > 100), so queuing here lands one
	// frame late. Flush immediately instead of waiting for the next
	// Run of LineRender.
	return s.lines.flushLayer(w, ctx.Layer)
}

func (s *DebugRender) queueBox(min, max mgl32.Vec3) {
	corners := [8]mgl32.Vec3{
		{min[0], min[1], min[2]}, {max[0], min[1], min[2]},
		{max[0], max[1], min[2]}, {min[0], max[1], min[2]},
		{min[0], min[1], max[2]}, {max[0], min[1], max[2]},
		{max[0], max[1], max[2]}, {min[0], max[1], max[2]},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		s.lines.AddLine(ecs.LayerWorld3D, corners[e[0]], corners[e[1]], s.Color)
	}
}
