package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
)

// FrustumCulling recomputes each Bounds entity's world AABB and tests it
// against the active camera's frustum, writing Visibility.SetCulled.
// Only LayerWorld3D entities are actually tested; HUD/GUI entities are
// never culled. Runs at priority -500, after transform-resolve and LOD.
type FrustumCulling struct{}

func (FrustumCulling) Name() string     { return "frustum_culling" }
func (FrustumCulling) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (FrustumCulling) Priority() int    { return -500 }

// plane is ax+by+cz+d, normalized so (a,b,c) has unit length.
type plane struct {
	n mgl32.Vec3
	d float32
}

func (p plane) distance(point mgl32.Vec3) float32 {
	return p.n.Dot(point) + p.d
}

// extractFrustumPlanes derives the six frustum planes from a
// view-projection matrix via the standard row-combination method: for a
// row-major VP, left = row3+row0, right = row3-row0, etc. mgl32 stores
// matrices column-major, so rows are read across the i-th component of
// each column.
func extractFrustumPlanes(vp mgl32.Mat4) [6]plane {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp[i], vp[i+4], vp[i+8], vp[i+12]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combine := func(a, b mgl32.Vec4) plane {
		v := mgl32.Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
		n := mgl32.Vec3{v[0], v[1], v[2]}
		length := n.Len()
		if length == 0 {
			return plane{}
		}
		return plane{n: n.Mul(1 / length), d: v[3] / length}
	}
	negate := func(v mgl32.Vec4) mgl32.Vec4 {
		return mgl32.Vec4{-v[0], -v[1], -v[2], -v[3]}
	}

	return [6]plane{
		combine(r3, r0),         // left
		combine(r3, negate(r0)), // right
		combine(r3, r1),         // bottom
		combine(r3, negate(r1)), // top
		combine(r3, r2),         // near
		combine(r3, negate(r2)), // far
	}
}

// aabbIntersectsFrustum reports whether the AABB's positive vertex (with
// respect to each plane's normal) lies inside every plane's half-space.
func aabbIntersectsFrustum(box boundsBox, planes [6]plane) bool {
	for _, p := range planes {
		positive := mgl32.Vec3{
			pick(p.n[0] >= 0, box.max[0], box.min[0]),
			pick(p.n[1] >= 0, box.max[1], box.min[1]),
			pick(p.n[2] >= 0, box.max[2], box.min[2]),
		}
		if p.distance(positive) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}

type boundsBox struct {
	min, max mgl32.Vec3
}

func (FrustumCulling) Run(w *ecs.World, ctx ecs.FrameContext) error {
	camID, hasCam := w.Scene.ActiveCamera()
	var planes [6]plane
	if hasCam {
		cam := ecs.MustGet[components.Camera](w, camID)
		planes = extractFrustumPlanes(cam.ViewProjection)
	}

	for _, id := range w.EntitiesWith(ecs.TypeOf[components.Bounds]()) {
		bounds := ecs.MustGet[components.Bounds](w, id)
		if t, ok := ecs.Get[components.Transform](w, id); ok {
			bounds.RecomputeWorld(t.WorldMatrix())
		}

		vis, hasVis := ecs.Get[components.Visibility](w, id)
		if !hasVis {
			continue
		}

		if components.LayerOf(w, id) != ecs.LayerWorld3D || !hasCam {
			vis.SetCulled(false)
			continue
		}

		box := boundsBox{min: bounds.World.Min, max: bounds.World.Max}
		vis.SetCulled(!aabbIntersectsFrustum(box, planes))
	}

	// entities without Bounds are never culled; if a Visibility exists with
	// no Bounds sibling, leave culled as-is (defaults to false, per
	// components.NewVisibility).
	return nil
}
