package particlesys

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
)

// applyForces accumulates acceleration from every enabled force in order,
// dispatching on Kind rather than a virtual table, matching how
// components.Force bundles every variant's fields into one struct.
func applyForces(forces []components.Force, pos, vel mgl32.Vec3) mgl32.Vec3 {
	var accel mgl32.Vec3
	for _, f := range forces {
		switch f.Kind {
		case components.ForceGravity, components.ForceWind:
			accel = accel.Add(f.Vector.Mul(f.Strength))

		case components.ForceDrag:
			accel = accel.Sub(vel.Mul(f.Strength))

		case components.ForceAttractor:
			accel = accel.Add(radialForce(pos, f.Center, f.Strength, 1))

		case components.ForceRepulsor:
			accel = accel.Add(radialForce(pos, f.Center, f.Strength, -1))

		case components.ForceTurbulence:
			accel = accel.Add(turbulence(pos, f.Scale, f.Strength))

		case components.ForceVelocityLimit:
			if speed := vel.Len(); speed > f.Limit && speed > 0 {
				excess := speed - f.Limit
				accel = accel.Sub(vel.Normalize().Mul(excess))
			}

		case components.ForceCurl:
			accel = accel.Add(curlNoise(pos, f.Scale, f.Strength, f.Vector))

		case components.ForceVortexY:
			accel = accel.Add(vortexY(pos, f.Center, f.Strength))
		}
	}
	return accel
}

// radialForce guards against distance -> 0, clamping the inverse-square
// falloff once the particle gets too close.
func radialForce(pos, center mgl32.Vec3, strength, sign float32) mgl32.Vec3 {
	const minDist = 0.01
	d := center.Sub(pos)
	dist := d.Len()
	if dist < minDist {
		dist = minDist
	}
	return d.Normalize().Mul(sign * strength / (dist * dist))
}

func vortexY(pos, center mgl32.Vec3, strength float32) mgl32.Vec3 {
	radial := mgl32.Vec3{pos[0] - center[0], 0, pos[2] - center[2]}
	dist := radial.Len()
	if dist < 1e-5 {
		return mgl32.Vec3{}
	}
	tangent := mgl32.Vec3{-radial[2], 0, radial[0]}.Normalize()
	return tangent.Mul(strength)
}

// valueNoise3 is a deterministic hash-based value noise, smoothed with a
// fade curve, sampled at p*scale. Not simplex-quality but adequate for a
// turbulence displacement where the exact spectrum doesn't matter, the way
// the particle gradient noise only needs to look organic at a glance.
func valueNoise3(p mgl32.Vec3) float32 {
	x0, y0, z0 := math.Floor(float64(p[0])), math.Floor(float64(p[1])), math.Floor(float64(p[2]))
	fx, fy, fz := float64(p[0])-x0, float64(p[1])-y0, float64(p[2])-z0

	fade := func(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }
	u, v, w := fade(fx), fade(fy), fade(fz)

	lerp := func(a, b, t float64) float64 { return a + t*(b-a) }

	var corner [2][2][2]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				corner[i][j][k] = hash3(x0+float64(i), y0+float64(j), z0+float64(k))
			}
		}
	}

	x00 := lerp(corner[0][0][0], corner[1][0][0], u)
	x10 := lerp(corner[0][1][0], corner[1][1][0], u)
	x01 := lerp(corner[0][0][1], corner[1][0][1], u)
	x11 := lerp(corner[0][1][1], corner[1][1][1], u)
	y0v := lerp(x00, x10, v)
	y1v := lerp(x01, x11, v)
	return float32(lerp(y0v, y1v, w))
}

func hash3(x, y, z float64) float64 {
	n := x*12.9898 + y*78.233 + z*37.719
	s := math.Sin(n) * 43758.5453
	return 2*(s-math.Floor(s)) - 1
}

// turbulence samples valueNoise3 at three decorrelated offsets to build an
// acceleration vector instead of a scalar displacement.
func turbulence(pos mgl32.Vec3, scale, strength float32) mgl32.Vec3 {
	p := pos.Mul(scale)
	return mgl32.Vec3{
		valueNoise3(p.Add(mgl32.Vec3{0, 0, 0})),
		valueNoise3(p.Add(mgl32.Vec3{31.4, 17.8, 0})),
		valueNoise3(p.Add(mgl32.Vec3{0, 91.2, 51.5})),
	}.Mul(strength)
}

// curlNoise derives a divergence-free-ish field by taking the noise
// gradient's perpendicular component around axis, approximating a curl
// without computing the full analytic curl of a vector potential.
func curlNoise(pos mgl32.Vec3, scale, strength float32, axis mgl32.Vec3) mgl32.Vec3 {
	const eps = 0.01
	p := pos.Mul(scale)
	n1 := valueNoise3(p.Add(mgl32.Vec3{eps, 0, 0}))
	n2 := valueNoise3(p.Sub(mgl32.Vec3{eps, 0, 0}))
	n3 := valueNoise3(p.Add(mgl32.Vec3{0, 0, eps}))
	n4 := valueNoise3(p.Sub(mgl32.Vec3{0, 0, eps}))
	grad := mgl32.Vec3{(n1 - n2) / (2 * eps), 0, (n3 - n4) / (2 * eps)}
	if axis.Len() > 0 {
		grad = axis.Normalize().Cross(grad)
	}
	return grad.Mul(strength)
}
