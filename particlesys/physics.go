package particlesys

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
)

// bounceRNG gates BounceChance and the BounceDamped spread. Seeded fixed so
// a seeded emit run replays the same collision outcomes.
var bounceRNG = rand.New(rand.NewSource(2))

// PhysicsSystem integrates every live particle: forces, velocity/rotation
// curves, collision (UPDATE priority 300). The CPU path runs the math in a
// host loop; the GPU path dispatches a compute shader over the same SSBO
// layout. Grounded in fizzle's particles.ParticleSystem physics step,
// generalized to a force-list/collision-mode model and the dual backing
// split.
type PhysicsSystem struct {
	Shaders computeShaderSource // supplies particle/particle_update:compute, optional
}

// computeShaderSource is the minimal interface PhysicsSystem needs to run
// the GPU path; left unimplemented (nil) disables GPU dispatch and pins
// every GPU-backed buffer to a no-op physics step until the host wires a
// real compute program in.
type computeShaderSource interface {
	DispatchUpdate(gl gfx.Compute, ssbo gfx.Buffer, capacity int, dt float32)
}

func NewPhysicsSystem(shaders computeShaderSource) *PhysicsSystem {
	return &PhysicsSystem{Shaders: shaders}
}

func (*PhysicsSystem) Name() string     { return "particle_physics" }
func (*PhysicsSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (*PhysicsSystem) Priority() int    { return 300 }

func (s *PhysicsSystem) Run(w *ecs.World, ctx ecs.FrameContext) error {
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.ParticleBuffer](), ecs.TypeOf[components.ParticleEmitter](), ecs.TypeOf[components.ParticleState]()) {
		buf := ecs.MustGet[components.ParticleBuffer](w, id)
		if !buf.Initialized {
			continue
		}
		emitter := ecs.MustGet[components.ParticleEmitter](w, id)
		state := ecs.MustGet[components.ParticleState](w, id)

		switch backing := buf.Backing.(type) {
		case *cpuBacking:
			s.stepCPU(backing, emitter, state, ctx.Dt)
		case *gpuBacking:
			s.stepGPU(backing, ctx.Dt)
		}
	}
	return nil
}

// stepGPU dispatches the host's compute shader over the SSBO in place.
// CollisionSubEmit has no effect here: there's no host-visible scratch list
// a shader invocation can append dead particles to, so a GPU-backed buffer
// configured with it simply never produces sub-emitter spawns.
func (s *PhysicsSystem) stepGPU(b *gpuBacking, dt float32) {
	if s.Shaders == nil {
		return
	}
	if compute, ok := b.gl.(gfx.Compute); ok {
		s.Shaders.DispatchUpdate(compute, b.ssbo, b.cap, dt)
	}
}

func (s *PhysicsSystem) stepCPU(b *cpuBacking, e *components.ParticleEmitter, st *components.ParticleState, dt float32) {
	for i := 0; i < b.capacity(); i++ {
		r := b.at(i)
		if !r.alive() {
			continue
		}
		stepParticle(r, e, st, dt)
	}
}

func stepParticle(r record, e *components.ParticleEmitter, st *components.ParticleState, dt float32) {
	r[offLife] -= dt
	if r[offLife] <= 0 {
		r[offLife] = 0
		p := r.pos()
		v := r.vel()
		st.DeadScratch = append(st.DeadScratch, components.DeadParticleRecord{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Velocity: mgl32.Vec3{v[0], v[1], v[2]},
		})
		return
	}

	lifePct := float32(1)
	if r[offMaxLife] > 0 {
		lifePct = 1 - r[offLife]/r[offMaxLife]
	}

	pv := r.pos()
	vv := r.vel()
	pos := mgl32.Vec3{pv[0], pv[1], pv[2]}
	vel := mgl32.Vec3{vv[0], vv[1], vv[2]}

	accel := applyForces(e.Forces, pos, vel)
	vel = vel.Add(accel.Mul(dt))

	mult := e.VelocityOverLifetime.Sample3(lifePct)
	effVel := mgl32.Vec3{vel[0] * mult[0], vel[1] * mult[1], vel[2] * mult[2]}
	pos = pos.Add(effVel.Mul(dt))

	r[offRotation] += (r[offAngularVelocity] + e.RotationOverLifetime.Sample(lifePct)) * dt

	if e.Collision.Enabled {
		collide(r, &pos, &vel, e.Collision, st)
	}

	r.setPos([3]float32{pos[0], pos[1], pos[2]})
	r.setVel([3]float32{vel[0], vel[1], vel[2]})

	color := e.Color.Sample(lifePct)
	r[offColorR], r[offColorG], r[offColorB], r[offColorA] = color[0], color[1], color[2], color[3]

	// The record keeps its spawn size; size-over-lifetime is applied when
	// the render system packs the upload copy, so the multiplier never
	// compounds across steps.
}

// collide tests the updated position against the single collision plane
// and responds per mode.
func collide(r record, pos, vel *mgl32.Vec3, c components.CollisionConfig, st *components.ParticleState) {
	dist := pos.Dot(c.PlaneNormal) + c.PlaneD
	if dist > 0 {
		return
	}

	switch c.Mode {
	case components.CollisionPassThrough:
		return

	case components.CollisionKill:
		r[offLife] = 0

	case components.CollisionBounce, components.CollisionBounceDamped:
		if bounceRNG.Float32() > c.BounceChance {
			return
		}
		n := c.PlaneNormal
		vn := n.Mul(vel.Dot(n))
		vt := vel.Sub(vn)
		reflected := vt.Mul(1 - c.Friction).Sub(vn.Mul(c.Bounciness))
		if c.Mode == components.CollisionBounceDamped {
			reflected = reflected.Add(randomUnitVec3(bounceRNG).Mul(reflected.Len() * 0.1))
		}
		*vel = reflected
		*pos = pos.Sub(n.Mul(dist))

	case components.CollisionStick:
		*vel = mgl32.Vec3{}
		*pos = pos.Sub(c.PlaneNormal.Mul(dist))

	case components.CollisionSlide:
		n := c.PlaneNormal
		*vel = vel.Sub(n.Mul(vel.Dot(n)))
		*pos = pos.Sub(n.Mul(dist))

	case components.CollisionSubEmit:
		p := *pos
		v := *vel
		st.DeadScratch = append(st.DeadScratch, components.DeadParticleRecord{
			Position: p, Velocity: v, Collided: true,
		})
		r[offLife] = 0
	}
}
