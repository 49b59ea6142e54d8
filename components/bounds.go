package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tbogdala/glider"
)

// Bounds holds a local-space AABB plus the cached world-space AABB derived
// from it and the entity's Transform. The world AABB must be valid whenever
// Transform has changed; the frustum-culling system recomputes it right
// after transform-resolve, before testing against the camera frustum.
//
// The AABB storage itself is glider.AABBox, the same coarse-collision box
// type fizzle's scene.BasicEntity builds from component collision refs.
type Bounds struct {
	Local glider.AABBox
	World glider.AABBox
}

// NewBounds returns a Bounds whose local AABB is [min, max].
func NewBounds(min, max mgl32.Vec3) Bounds {
	local := *glider.NewAABBox()
	local.Min = min
	local.Max = max
	return Bounds{Local: local, World: local}
}

// RecomputeWorld derives the world-space AABB from the local AABB and a
// world transform matrix by transforming all eight corners and taking their
// extent. Conservative but exact for axis-aligned boxes under rotation.
func (b *Bounds) RecomputeWorld(world mgl32.Mat4) {
	corners := [8]mgl32.Vec3{
		{b.Local.Min[0], b.Local.Min[1], b.Local.Min[2]},
		{b.Local.Max[0], b.Local.Min[1], b.Local.Min[2]},
		{b.Local.Min[0], b.Local.Max[1], b.Local.Min[2]},
		{b.Local.Max[0], b.Local.Max[1], b.Local.Min[2]},
		{b.Local.Min[0], b.Local.Min[1], b.Local.Max[2]},
		{b.Local.Max[0], b.Local.Min[1], b.Local.Max[2]},
		{b.Local.Min[0], b.Local.Max[1], b.Local.Max[2]},
		{b.Local.Max[0], b.Local.Max[1], b.Local.Max[2]},
	}

	var min, max mgl32.Vec3
	for i, c := range corners {
		p4 := world.Mul4x1(mgl32.Vec4{c[0], c[1], c[2], 1})
		p := mgl32.Vec3{p4[0], p4[1], p4[2]}
		if i == 0 {
			min, max = p, p
			continue
		}
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
			}
			if p[axis] > max[axis] {
				max[axis] = p[axis]
			}
		}
	}
	b.World.Min = min
	b.World.Max = max
}

// Center returns the midpoint of the world AABB.
func (b *Bounds) Center() mgl32.Vec3 {
	return b.World.Min.Add(b.World.Max).Mul(0.5)
}
