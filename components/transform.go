package components

import "github.com/go-gl/mathgl/mgl32"

// Transform holds position/rotation/scale and the matrices derived from
// them. Any mutator marks the component dirty; the world matrix and basis
// vectors are recomputed only by Resolve, and WorldMatrix returns whatever
// Resolve last cached. The transform-resolve system calls Resolve first in
// UPDATE (priority -1000), so the matrix is current for the systems after it.
type Transform struct {
	Position    mgl32.Vec3
	EulerAngles mgl32.Vec3 // degrees, yaw(Y) / pitch(X) / roll(Z)
	Scale       mgl32.Vec3

	dirty   bool
	world   mgl32.Mat4
	forward mgl32.Vec3
	up      mgl32.Vec3
	right   mgl32.Vec3
}

// NewTransform returns a Transform at the origin with unit scale.
func NewTransform() Transform {
	return Transform{
		Scale: mgl32.Vec3{1, 1, 1},
		world: mgl32.Ident4(),
		dirty: true,
	}
}

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.Position = p
	t.dirty = true
}

func (t *Transform) SetEulerAngles(e mgl32.Vec3) {
	t.EulerAngles = e
	t.dirty = true
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.Scale = s
	t.dirty = true
}

// Dirty reports whether the component has been mutated since the last
// Resolve call.
func (t *Transform) Dirty() bool {
	return t.dirty
}

// Resolve recomputes the world matrix and basis vectors from the current
// position/rotation/scale if dirty, and clears the dirty flag. Called by
// the transform-resolve system (priority -1000, before every other UPDATE
// system that reads Transform).
func (t *Transform) Resolve() {
	if !t.dirty {
		return
	}

	yaw := mgl32.DegToRad(t.EulerAngles[1])
	pitch := mgl32.DegToRad(t.EulerAngles[0])
	roll := mgl32.DegToRad(t.EulerAngles[2])

	rot := mgl32.HomogRotate3DY(yaw).
		Mul4(mgl32.HomogRotate3DX(pitch)).
		Mul4(mgl32.HomogRotate3DZ(roll))

	translate := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	scale := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])

	t.world = translate.Mul4(rot).Mul4(scale)

	fwd4 := rot.Mul4x1(mgl32.Vec4{0, 0, -1, 0})
	up4 := rot.Mul4x1(mgl32.Vec4{0, 1, 0, 0})
	right4 := rot.Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	t.forward = mgl32.Vec3{fwd4[0], fwd4[1], fwd4[2]}.Normalize()
	t.up = mgl32.Vec3{up4[0], up4[1], up4[2]}.Normalize()
	t.right = mgl32.Vec3{right4[0], right4[1], right4[2]}.Normalize()

	t.dirty = false
}

// WorldMatrix returns the cached world matrix. Callers within the same
// frame may assume it is current because the transform-resolve system runs
// before every system that reads it.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	return t.world
}

func (t *Transform) Forward() mgl32.Vec3 { return t.forward }
func (t *Transform) Up() mgl32.Vec3      { return t.up }
func (t *Transform) Right() mgl32.Vec3   { return t.right }
