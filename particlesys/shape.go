package particlesys

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
)

// sampleShape returns a local-space emission position and the outward
// normal direction at that point (used for emit_along_normal velocity),
// for one of the thirteen shape kinds.
func sampleShape(shape components.ShapeKind, p components.ShapeParams, rng *rand.Rand) (pos, normal mgl32.Vec3) {
	switch shape {
	case components.ShapePoint:
		return mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}

	case components.ShapeSphereVolume:
		n := randomUnitVec3(rng)
		r := p.Radius * float32(math.Cbrt(float64(rng.Float32())))
		return n.Mul(r), n

	case components.ShapeSphereSurface:
		n := randomUnitVec3(rng)
		return n.Mul(p.Radius), n

	case components.ShapeHemisphere:
		n := randomUnitVec3(rng)
		if n[1] < 0 {
			n[1] = -n[1]
		}
		return n.Mul(p.Radius), n

	case components.ShapeCircle:
		theta := rng.Float32() * 2 * math.Pi
		n := mgl32.Vec3{float32(math.Cos(float64(theta))), 0, float32(math.Sin(float64(theta)))}
		return n.Mul(p.Radius), n

	case components.ShapeRing:
		theta := rng.Float32() * 2 * math.Pi
		dir := mgl32.Vec3{float32(math.Cos(float64(theta))), 0, float32(math.Sin(float64(theta)))}
		r := p.InnerRadius + rng.Float32()*(p.Radius-p.InnerRadius)
		return dir.Mul(r), dir

	case components.ShapeCone:
		theta := rng.Float32() * 2 * math.Pi
		halfAngle := mgl32.DegToRad(p.Angle)
		spread := rng.Float32() * halfAngle
		dir := mgl32.Vec3{
			float32(math.Sin(float64(spread))) * float32(math.Cos(float64(theta))),
			float32(math.Cos(float64(spread))),
			float32(math.Sin(float64(spread))) * float32(math.Sin(float64(theta))),
		}
		return mgl32.Vec3{}, dir.Normalize()

	case components.ShapeBoxVolume:
		half := p.Size.Mul(0.5)
		return mgl32.Vec3{
			(rng.Float32()*2 - 1) * half[0],
			(rng.Float32()*2 - 1) * half[1],
			(rng.Float32()*2 - 1) * half[2],
		}, mgl32.Vec3{0, 1, 0}

	case components.ShapeBoxSurface:
		return sampleBoxSurface(p, rng)

	case components.ShapeBoxEdge:
		return sampleBoxEdge(p, rng)

	case components.ShapeCylinder:
		theta := rng.Float32() * 2 * math.Pi
		dir := mgl32.Vec3{float32(math.Cos(float64(theta))), 0, float32(math.Sin(float64(theta)))}
		y := (rng.Float32()*2 - 1) * p.Height * 0.5
		pos := dir.Mul(p.Radius)
		pos[1] = y
		return pos, dir

	case components.ShapeLine:
		t := rng.Float32()*2 - 1
		return mgl32.Vec3{0, 0, t * p.Length * 0.5}, mgl32.Vec3{0, 1, 0}

	case components.ShapeRectangle:
		hw, hh := p.Size[0]*0.5, p.Size[1]*0.5
		return mgl32.Vec3{(rng.Float32()*2 - 1) * hw, (rng.Float32()*2 - 1) * hh, 0}, mgl32.Vec3{0, 0, 1}

	default:
		return mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}
	}
}

func randomUnitVec3(rng *rand.Rand) mgl32.Vec3 {
	z := rng.Float32()*2 - 1
	theta := rng.Float32() * 2 * math.Pi
	r := float32(math.Sqrt(float64(1 - z*z)))
	return mgl32.Vec3{r * float32(math.Cos(float64(theta))), z, r * float32(math.Sin(float64(theta)))}
}

// sampleBoxSurface picks a uniformly weighted face by area, then a random
// point on it, returning that face's outward normal.
func sampleBoxSurface(p components.ShapeParams, rng *rand.Rand) (pos, normal mgl32.Vec3) {
	half := p.Size.Mul(0.5)
	areas := [3]float32{half[1] * half[2], half[0] * half[2], half[0] * half[1]}
	total := areas[0] + areas[1] + areas[2]
	if total <= 0 {
		return mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}
	}
	pick := rng.Float32() * total
	axis := 0
	switch {
	case pick < areas[0]:
		axis = 0
	case pick < areas[0]+areas[1]:
		axis = 1
	default:
		axis = 2
	}
	sign := float32(1)
	if rng.Float32() < 0.5 {
		sign = -1
	}
	u := (rng.Float32()*2 - 1)
	v := (rng.Float32()*2 - 1)
	var out mgl32.Vec3
	var n mgl32.Vec3
	switch axis {
	case 0:
		out = mgl32.Vec3{sign * half[0], u * half[1], v * half[2]}
		n = mgl32.Vec3{sign, 0, 0}
	case 1:
		out = mgl32.Vec3{u * half[0], sign * half[1], v * half[2]}
		n = mgl32.Vec3{0, sign, 0}
	default:
		out = mgl32.Vec3{u * half[0], v * half[1], sign * half[2]}
		n = mgl32.Vec3{0, 0, sign}
	}
	return out, n
}

// sampleBoxEdge picks a uniformly random point along one of the box's
// twelve edges.
func sampleBoxEdge(p components.ShapeParams, rng *rand.Rand) (pos, normal mgl32.Vec3) {
	half := p.Size.Mul(0.5)
	corners := [8]mgl32.Vec3{
		{-half[0], -half[1], -half[2]}, {half[0], -half[1], -half[2]},
		{half[0], half[1], -half[2]}, {-half[0], half[1], -half[2]},
		{-half[0], -half[1], half[2]}, {half[0], -half[1], half[2]},
		{half[0], half[1], half[2]}, {-half[0], half[1], half[2]},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	e := edges[rng.Intn(len(edges))]
	t := rng.Float32()
	a, b := corners[e[0]], corners[e[1]]
	pos = a.Add(b.Sub(a).Mul(t))
	return pos, pos.Normalize()
}
