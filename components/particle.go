package components

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/curve"
)

// ShapeKind selects the emission-volume sampler an emitter uses.
type ShapeKind int

const (
	ShapePoint ShapeKind = iota
	ShapeSphereVolume
	ShapeSphereSurface
	ShapeHemisphere
	ShapeCircle
	ShapeRing
	ShapeCone
	ShapeBoxVolume
	ShapeBoxSurface
	ShapeBoxEdge
	ShapeCylinder
	ShapeLine
	ShapeRectangle
)

// ShapeParams bundles every parameter any shape sampler might need; only
// the fields relevant to the selected Shape are read.
type ShapeParams struct {
	Radius      float32
	InnerRadius float32
	Angle       float32 // cone half-angle, degrees
	Height      float32
	Size        mgl32.Vec3 // box dimensions
	Length      float32    // line length
}

// ForceKind selects a physics-loop force variant. The loop dispatches by
// Kind; no virtual tables.
type ForceKind int

const (
	ForceGravity ForceKind = iota
	ForceWind
	ForceDrag
	ForceAttractor
	ForceRepulsor
	ForceTurbulence
	ForceVelocityLimit
	ForceCurl
	ForceVortexY
)

// Force is one force-variant instance with every field any variant might
// need populated; unused fields are ignored for the variant's Kind.
type Force struct {
	Kind     ForceKind
	Vector   mgl32.Vec3 // gravity/wind direction (unit or scaled), curl axis
	Strength float32
	Center   mgl32.Vec3 // attractor/repulsor/vortex center
	Scale    float32    // turbulence noise-coordinate scale
	Limit    float32    // velocity-limit ceiling
}

// CollisionMode is the particle collision response on plane contact.
type CollisionMode int

const (
	CollisionKill CollisionMode = iota
	CollisionBounce
	CollisionBounceDamped
	CollisionStick
	CollisionSlide
	CollisionSubEmit
	CollisionPassThrough
)

// CollisionConfig describes the single collision plane particles are
// tested against and how they respond when crossing it.
type CollisionConfig struct {
	Enabled      bool
	Mode         CollisionMode
	PlaneNormal  mgl32.Vec3
	PlaneD       float32
	Bounciness   float32
	Friction     float32
	BounceChance float32 // [0,1] gate on whether a qualifying hit bounces
}

// SubEmitterTrigger selects when a sub-emitter entry fires.
type SubEmitterTrigger int

const (
	SubEmitterOnDeath SubEmitterTrigger = iota
	SubEmitterOnCollision
)

// SubEmitterEntry spawns child particles from a named emitter when its
// Trigger condition fires on a parent particle.
type SubEmitterEntry struct {
	Trigger         SubEmitterTrigger
	ChildEmitterKey string
	EmitCount       int
	InheritVelocity float32 // [0,1] fraction of parent speed inherited
}

// VelocityConfig is the emit-time velocity assignment: a constant linear
// component plus, optionally, a radial component along the shape's local
// emission normal.
type VelocityConfig struct {
	Linear          mgl32.Vec3
	EmitAlongNormal bool
	Speed           float32
	SpeedVariation  float32 // [0,1]
}

// ColorOverLifetime is a per-channel curve sampled at life_pct, used when no
// UniformColor override applies.
type ColorOverLifetime struct {
	R, G, B, A curve.Curve
}

// UniformColorOverLifetime returns a ColorOverLifetime that always evaluates
// to c.
func UniformColorOverLifetime(c mgl32.Vec4) ColorOverLifetime {
	return ColorOverLifetime{
		R: curve.Constant(c[0]),
		G: curve.Constant(c[1]),
		B: curve.Constant(c[2]),
		A: curve.Constant(c[3]),
	}
}

// Sample evaluates all four channels at t.
func (c ColorOverLifetime) Sample(t float32) mgl32.Vec4 {
	return mgl32.Vec4{c.R.Sample(t), c.G.Sample(t), c.B.Sample(t), c.A.Sample(t)}
}

// EmitterKey names an emitter entity so SubEmitterEntry.ChildEmitterKey can
// reference it. Optional: an emitter with no sub-emitters pointing at it
// doesn't need one.
type EmitterKey struct {
	Key string
}

// ParticleEmitter is the pure-data configuration for one emitter: shape,
// emission timing, per-particle initial-value ranges, lifetime curves,
// forces and collision, and sub-emitter chaining.
type ParticleEmitter struct {
	Shape       ShapeKind
	ShapeParams ShapeParams

	Rate          float32 // particles/sec, continuous emission
	BurstCount    int
	BurstInterval float32 // <=0 means "initial burst only"

	LifetimeMin, LifetimeMax               float32
	SizeMin, SizeMax                       float32
	RotationMin, RotationMax               float32
	AngularVelocityMin, AngularVelocityMax float32

	Velocity VelocityConfig

	Color                ColorOverLifetime
	SizeOverLifetime     curve.Curve
	VelocityOverLifetime curve.Vec3Curve
	RotationOverLifetime curve.Curve

	Forces    []Force
	Collision CollisionConfig

	SubEmitters []SubEmitterEntry

	TextureKey      string
	AnimationFrames int
}

// NewParticleEmitter returns a ParticleEmitter with neutral defaults: a
// point emitter, no forces, uniform white color, unit size/lifetime.
func NewParticleEmitter() ParticleEmitter {
	return ParticleEmitter{
		Shape:                ShapePoint,
		LifetimeMin:          1,
		LifetimeMax:          1,
		SizeMin:              1,
		SizeMax:              1,
		Color:                UniformColorOverLifetime(mgl32.Vec4{1, 1, 1, 1}),
		SizeOverLifetime:     curve.Constant(1),
		VelocityOverLifetime: curve.UniformVec3Curve(curve.Constant(1)),
		RotationOverLifetime: curve.Constant(0),
	}
}

// ComponentDependencies: an emitter's shapes and bursts are positioned
// relative to its entity's Transform.
func (ParticleEmitter) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Transform{})}
}

// DeadParticleRecord is the (position, velocity) snapshot recorded by the
// physics system when a particle dies or collides, consumed by the emit
// system's sub-emitter pass on a later UPDATE sweep.
type DeadParticleRecord struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Collided bool
}

// ParticleState is the emitter's mutable playhead.
type ParticleState struct {
	SystemTime            float32
	Paused                bool
	Looping               bool
	Duration              float32
	Completed             bool
	EmissionAccumulator   float32
	BurstAccumulator      float32
	InitialBurstTriggered bool
	DeadScratch           []DeadParticleRecord
}

// NewParticleState returns a running ParticleState with the given duration
// and looping flag.
func NewParticleState(duration float32, looping bool) ParticleState {
	return ParticleState{Duration: duration, Looping: looping}
}

// BackingKind identifies which storage path a ParticleBuffer settled on.
type BackingKind int

const (
	BackingUnset BackingKind = iota
	BackingGPU
	BackingCPU
)

// ParticleBacking is the storage a ParticleBuffer owns: an SSBO-backed GPU
// array or a flat CPU float array, chosen once at first emission.
type ParticleBacking interface {
	Kind() BackingKind
	Dispose()
}

// ParticleBuffer owns a fixed-capacity particle buffer whose backing is
// selected once and then sticks for the buffer's lifetime.
type ParticleBuffer struct {
	Capacity    int
	Backing     ParticleBacking
	Initialized bool
}

// NewParticleBuffer returns an uninitialized buffer of the given capacity.
func NewParticleBuffer(capacity int) ParticleBuffer {
	return ParticleBuffer{Capacity: capacity}
}

// Dispose releases the backing storage, satisfying ecs.Disposable so World
// destroy/remove always frees GPU or CPU buffers deterministically.
func (b *ParticleBuffer) Dispose() {
	if b.Backing != nil {
		b.Backing.Dispose()
		b.Backing = nil
	}
	b.Initialized = false
}

// BlendMode is the render-state blend function for a particle pass.
type BlendMode int

const (
	BlendAlpha BlendMode = iota
	BlendAdditive
	BlendSoftAdditive
	BlendMultiply
	BlendPremultiplied
	BlendOpaque
)

// RenderMode selects the base geometry a particle buffer is drawn with.
// The numeric values are part of the particle record wire layout: the emit
// system writes the mode into each record's type slot and the billboard
// shader branches on it, so the ordering below must not change.
type RenderMode int

const (
	RenderBillboard RenderMode = iota
	RenderStretchedBillboard
	RenderHorizontalBillboard
	RenderVerticalBillboard
	RenderMesh
)

// ParticleRender is the draw-time configuration for a ParticleBuffer.
type ParticleRender struct {
	Blend           BlendMode
	Mode            RenderMode
	Emissive        bool
	ReceiveLighting bool
	MeshKey         string // RenderMesh only
}
