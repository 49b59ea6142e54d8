package particlesys

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/ecs"
	"github.com/embergrove/forgecs/gfx"
)

// EmitSystem advances every ParticleEmitter's playhead and writes newly
// spawned particles into its ParticleBuffer's backing storage (UPDATE
// priority 200). Grounded in fizzle's particles.ParticleSystem.Update,
// generalized to a richer shape/burst/sub-emitter model and the CPU/GPU
// backing split fizzle never had.
type EmitSystem struct {
	GL  gfx.Provider
	rng *rand.Rand

	computeProbed bool
	compute       gfx.Compute
}

func NewEmitSystem(gl gfx.Provider) *EmitSystem {
	return &EmitSystem{GL: gl, rng: rand.New(rand.NewSource(1))}
}

func (*EmitSystem) Name() string     { return "particle_emit" }
func (*EmitSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }
func (*EmitSystem) Priority() int    { return 200 }

// probeCompute decides, once, whether the GPU backing path is available. A
// Provider that also satisfies gfx.Compute was constructed against a 4.3
// context by the host; anything else pins every buffer onto the CPU path.
func (s *EmitSystem) probeCompute() gfx.Compute {
	if !s.computeProbed {
		s.computeProbed = true
		if c, ok := s.GL.(gfx.Compute); ok {
			s.compute = c
		}
	}
	return s.compute
}

func (s *EmitSystem) Run(w *ecs.World, ctx ecs.FrameContext) error {
	ids := w.EntitiesWith(
		ecs.TypeOf[components.ParticleEmitter](),
		ecs.TypeOf[components.ParticleState](),
		ecs.TypeOf[components.ParticleBuffer](),
		ecs.TypeOf[components.Transform](),
	)

	for _, id := range ids {
		s.runOne(w, id, ctx.Dt)
	}
	return nil
}

func (s *EmitSystem) runOne(w *ecs.World, id ecs.EntityId, dt float32) {
	emitter := ecs.MustGet[components.ParticleEmitter](w, id)
	state := ecs.MustGet[components.ParticleState](w, id)
	buf := ecs.MustGet[components.ParticleBuffer](w, id)
	transform := ecs.MustGet[components.Transform](w, id)

	if state.Paused || state.Completed {
		return
	}

	if !buf.Initialized {
		s.initBacking(buf)
	}

	state.SystemTime += dt
	if !state.Looping && state.Duration > 0 && state.SystemTime >= state.Duration {
		state.Completed = true
	}

	count := s.emitCountThisFrame(emitter, state, dt)
	mode := renderModeOf(w, id)
	for i := 0; i < count; i++ {
		s.spawnOne(buf, emitter, transform.Position, mode)
	}

	s.resolveSubEmitters(w, emitter, state)
}

// renderModeOf reads the entity's ParticleRender mode for the record's
// type slot, defaulting to the plain billboard when the component is
// absent. The particle shader branches per instance on this value, so
// every billboard variant flows through the same quad geometry and draw
// call.
func renderModeOf(w *ecs.World, id ecs.EntityId) float32 {
	if rc, ok := ecs.Get[components.ParticleRender](w, id); ok {
		return float32(rc.Mode)
	}
	return float32(components.RenderBillboard)
}

func (s *EmitSystem) initBacking(buf *components.ParticleBuffer) {
	if compute := s.probeCompute(); compute != nil {
		buf.Backing = newGPUBacking(compute, buf.Capacity)
	} else {
		buf.Backing = newCPUBacking(buf.Capacity)
	}
	buf.Initialized = true
}

func (s *EmitSystem) emitCountThisFrame(e *components.ParticleEmitter, st *components.ParticleState, dt float32) int {
	count := 0

	if !st.InitialBurstTriggered {
		st.InitialBurstTriggered = true
		count += e.BurstCount
	}
	if e.BurstInterval > 0 {
		st.BurstAccumulator += dt
		for st.BurstAccumulator >= e.BurstInterval {
			st.BurstAccumulator -= e.BurstInterval
			count += e.BurstCount
		}
	}

	st.EmissionAccumulator += dt * e.Rate
	whole := math.Floor(float64(st.EmissionAccumulator))
	st.EmissionAccumulator -= float32(whole)
	count += int(whole)

	return count
}

func (s *EmitSystem) spawnOne(buf *components.ParticleBuffer, e *components.ParticleEmitter, origin mgl32.Vec3, mode float32) {
	cpu, ok := buf.Backing.(*cpuBacking)
	if !ok {
		// GPU path: new particles are written by the emit compute pass,
		// which this core leaves to the host's particle/particle_emit
		// shader key; the CPU spawn path below only applies to CPU-backed
		// buffers.
		return
	}
	slot := cpu.firstFreeSlot()
	if slot < 0 {
		return
	}

	localPos, normal := sampleShape(e.Shape, e.ShapeParams, s.rng)
	pos := origin.Add(localPos)

	vel := e.Velocity.Linear
	if e.Velocity.EmitAlongNormal {
		variation := (1 - e.Velocity.SpeedVariation) + s.rng.Float32()*2*e.Velocity.SpeedVariation
		vel = vel.Add(normal.Mul(e.Velocity.Speed * variation))
	}

	life := lerpRange(e.LifetimeMin, e.LifetimeMax, s.rng.Float32())
	size := lerpRange(e.SizeMin, e.SizeMax, s.rng.Float32())
	rot := lerpRange(e.RotationMin, e.RotationMax, s.rng.Float32())
	av := lerpRange(e.AngularVelocityMin, e.AngularVelocityMax, s.rng.Float32())
	color := e.Color.Sample(0)

	r := cpu.at(slot)
	r.setPos([3]float32{pos[0], pos[1], pos[2]})
	r[offLife] = life
	r.setVel([3]float32{vel[0], vel[1], vel[2]})
	r[offMaxLife] = life
	r[offColorR], r[offColorG], r[offColorB], r[offColorA] = color[0], color[1], color[2], color[3]
	r[offSize] = size
	r[offRotation] = rot
	r[offType] = mode
	r[offAngularVelocity] = av
}

func lerpRange(min, max, t float32) float32 { return min + (max-min)*t }

// resolveSubEmitters consumes the dead-particle scratch accumulated by the
// physics system last frame, spawning child particles on whichever target
// emitter entity each entry names. The scratch buffer is cleared whether
// or not a matching target was found.
func (s *EmitSystem) resolveSubEmitters(w *ecs.World, e *components.ParticleEmitter, st *components.ParticleState) {
	if len(st.DeadScratch) == 0 || len(e.SubEmitters) == 0 {
		st.DeadScratch = st.DeadScratch[:0]
		return
	}
	for _, sub := range e.SubEmitters {
		targetID, found := findEmitterByKey(w, sub.ChildEmitterKey)
		if !found {
			continue
		}
		target := ecs.MustGet[components.ParticleBuffer](w, targetID)
		targetCPU, ok := target.Backing.(*cpuBacking)
		if !ok {
			continue
		}
		mode := renderModeOf(w, targetID)
		for _, dead := range st.DeadScratch {
			if sub.Trigger == components.SubEmitterOnCollision && !dead.Collided {
				continue
			}
			if sub.Trigger == components.SubEmitterOnDeath && dead.Collided {
				continue
			}
			for i := 0; i < sub.EmitCount; i++ {
				spawnChild(targetCPU, dead, sub.InheritVelocity, mode, s.rng)
			}
		}
	}
	st.DeadScratch = st.DeadScratch[:0]
}

func spawnChild(cpu *cpuBacking, dead components.DeadParticleRecord, inherit, mode float32, rng *rand.Rand) {
	slot := cpu.firstFreeSlot()
	if slot < 0 {
		return
	}
	dir := randomUnitVec3(rng)
	speed := dead.Velocity.Len() * inherit
	vel := dir.Mul(speed)

	r := cpu.at(slot)
	r.setPos([3]float32{dead.Position[0], dead.Position[1], dead.Position[2]})
	r[offLife] = 1
	r.setVel([3]float32{vel[0], vel[1], vel[2]})
	r[offMaxLife] = 1
	r[offColorR], r[offColorG], r[offColorB], r[offColorA] = 1, 1, 1, 1
	r[offSize] = 1
	r[offType] = mode
}

// findEmitterByKey resolves a SubEmitterEntry.ChildEmitterKey to the
// entity carrying the matching EmitterKey tag alongside a ParticleBuffer.
func findEmitterByKey(w *ecs.World, key string) (ecs.EntityId, bool) {
	if key == "" {
		return 0, false
	}
	for _, id := range w.EntitiesWith(ecs.TypeOf[components.EmitterKey](), ecs.TypeOf[components.ParticleBuffer]()) {
		ek := ecs.MustGet[components.EmitterKey](w, id)
		if ek.Key == key {
			return id, true
		}
	}
	return 0, false
}
