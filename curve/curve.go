// Package curve implements the piecewise abstraction Color/Size/Velocity/
// Rotation-over-lifetime curves share: a sorted key list of (time, value)
// sampled by binary search, per the core's Design Notes ("Curves /
// animation").
package curve

import "sort"

// Interpolation selects how values between two keys are blended.
type Interpolation int

const (
	Linear Interpolation = iota
	Smoothstep
)

// Key is one (time, value) control point of a Curve. Time is expected in
// [0, 1] (life_pct) but sampling clamps outside that range regardless.
type Key struct {
	Time  float32
	Value float32
}

// Curve is a scalar function of life_pct sampled from a sorted key list.
type Curve struct {
	Keys   []Key
	Interp Interpolation
}

// Constant returns a single-key curve that always evaluates to v.
func Constant(v float32) Curve {
	return Curve{Keys: []Key{{Time: 0, Value: v}}}
}

// NewCurve returns a Curve over keys, sorted by Time.
func NewCurve(interp Interpolation, keys ...Key) Curve {
	sorted := append([]Key(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return Curve{Keys: sorted, Interp: interp}
}

func smoothstep(t float32) float32 {
	return t * t * (3 - 2*t)
}

// Sample evaluates the curve at t, clamping t to the key range at the
// extremes and linearly (or smoothstep-)interpolating between the
// surrounding keys otherwise.
func (c Curve) Sample(t float32) float32 {
	n := len(c.Keys)
	if n == 0 {
		return 0
	}
	if n == 1 || t <= c.Keys[0].Time {
		return c.Keys[0].Value
	}
	if t >= c.Keys[n-1].Time {
		return c.Keys[n-1].Value
	}

	// binary search for the first key with Time > t
	i := sort.Search(n, func(i int) bool { return c.Keys[i].Time > t })
	lo, hi := c.Keys[i-1], c.Keys[i]

	span := hi.Time - lo.Time
	var frac float32
	if span > 0 {
		frac = (t - lo.Time) / span
	}
	if c.Interp == Smoothstep {
		frac = smoothstep(frac)
	}
	return lo.Value + (hi.Value-lo.Value)*frac
}

// Vec3Curve bundles three scalar curves sampled together for a vec3 output
// (e.g. per-axis velocity-over-lifetime multipliers).
type Vec3Curve struct {
	X, Y, Z Curve
}

// UniformVec3Curve returns a Vec3Curve where all three axes share one curve.
func UniformVec3Curve(c Curve) Vec3Curve {
	return Vec3Curve{X: c, Y: c, Z: c}
}

// Sample3 evaluates all three axis curves at t.
func (v Vec3Curve) Sample3(t float32) [3]float32 {
	return [3]float32{v.X.Sample(t), v.Y.Sample(t), v.Z.Sample(t)}
}
