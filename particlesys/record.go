// Package particlesys implements the GPU/CPU particle engine: shape
// sampling, force composition, and the Emit/Physics/Render systems that
// drive a components.ParticleBuffer. Grounded in fizzle's particles
// package (particles/particles.go, particles/particle_system.go), which
// this supersedes with a richer shape/force/sub-emitter model and a dual
// CPU/compute-shader execution path fizzle's CPU-only design never had.
package particlesys

// RecordFloats is the width of one particle record: position.xyz, life,
// velocity.xyz, max_life, color.rgba, size, rotation, type, angular_velocity.
// The same 16-float layout backs the CPU array, the GPU SSBO, and the
// per-instance vertex attributes the render system binds at locations 2-5
// as four vec4 columns.
//
// The type slot carries the particle's components.RenderMode as a float,
// written at spawn time; the billboard vertex shader branches on it per
// instance to pick the plain, stretched (velocity-aligned), horizontal,
// or vertical orientation from the shared quad geometry.
const RecordFloats = 16

const (
	offPosX = iota
	offPosY
	offPosZ
	offLife
	offVelX
	offVelY
	offVelZ
	offMaxLife
	offColorR
	offColorG
	offColorB
	offColorA
	offSize
	offRotation
	offType
	offAngularVelocity
)

// record is a float32 view over one particle's 16 floats, used by the CPU
// backing path so emit/physics code reads and writes named fields instead
// of raw offsets.
type record []float32

func (r record) alive() bool { return r[offLife] > 0 }

func (r record) pos() [3]float32 { return [3]float32{r[offPosX], r[offPosY], r[offPosZ]} }
func (r record) setPos(p [3]float32) {
	r[offPosX], r[offPosY], r[offPosZ] = p[0], p[1], p[2]
}

func (r record) vel() [3]float32 { return [3]float32{r[offVelX], r[offVelY], r[offVelZ]} }
func (r record) setVel(v [3]float32) {
	r[offVelX], r[offVelY], r[offVelZ] = v[0], v[1], v[2]
}
