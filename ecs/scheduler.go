package ecs

import (
	"sort"
	"time"

	"github.com/tbogdala/groggy"
)

// Phase is the coarse frame half a System runs in. UPDATE always runs to
// completion before RENDER.
type Phase int

const (
	PhaseUpdate Phase = iota
	PhaseRender
)

// FrameContext carries the per-frame inputs a System.Run needs. Not every
// field applies to every system: RENDER systems ignore Dt, systems that
// don't filter by layer ignore Layer.
type FrameContext struct {
	Layer       Layer
	Dt          float32
	PartialTick float32
}

// System is a pure-function processor over the World's entity/component
// graph. It declares its own Phase and Priority; the Scheduler sorts on
// (Phase, Priority, insertion order) and never lets systems observe the
// World mid-execution of another system.
type System interface {
	Name() string
	Phase() Phase
	Priority() int
	Run(w *World, ctx FrameContext) error
}

// Initializer is an optional capability a System can implement to run
// one-time setup against the World at the moment it's added to a
// Scheduler, mirroring the DependsOn duck-typed optional interface
// AddComponent checks for. Most systems are pure functions of World state
// and need nothing here; a system that caches a World-derived handle
// (a lookup table, a default entity) implements this instead of lazily
// initializing itself on first Run.
type Initializer interface {
	Init(w *World)
}

type scheduledSystem struct {
	system   System
	inserted int
}

// Scheduler is the totally ordered per-phase system list, modeled on
// fizzle's scene.SystemsByPriority sort adapter, generalized to two phases
// and stable tie-breaking by insertion order.
type Scheduler struct {
	systems []scheduledSystem
	seq     int

	// Profiler, when set, accumulates each system's Run wall time.
	Profiler *Profiler
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add inserts system into the schedule, sorted by (Phase, Priority), ties
// broken by insertion order. If system implements Initializer, its Init is
// fired against w immediately, before the system is eligible to Run.
func (s *Scheduler) Add(w *World, system System) {
	if init, ok := system.(Initializer); ok {
		init.Init(w)
	}
	s.systems = append(s.systems, scheduledSystem{system: system, inserted: s.seq})
	s.seq++
	sort.SliceStable(s.systems, func(i, j int) bool {
		a, b := s.systems[i], s.systems[j]
		if a.system.Phase() != b.system.Phase() {
			return a.system.Phase() < b.system.Phase()
		}
		if a.system.Priority() != b.system.Priority() {
			return a.system.Priority() < b.system.Priority()
		}
		return a.inserted < b.inserted
	})
}

// Remove drops every system matching name from the schedule.
func (s *Scheduler) Remove(name string) {
	kept := s.systems[:0]
	for _, sc := range s.systems {
		if sc.system.Name() != name {
			kept = append(kept, sc)
		}
	}
	s.systems = kept
}

// Run executes every system whose Phase matches, in schedule order. A
// system that returns an error is logged at WARN and skipped for the rest
// of this frame; it is retried next frame rather than removed. Panics are
// not recovered here: dependency-missing, resource-invalid, and
// state-scope-violation failures are programmer errors meant to crash the
// process, not runtime conditions to swallow.
func (s *Scheduler) Run(phase Phase, w *World, ctx FrameContext) {
	for _, sc := range s.systems {
		if sc.system.Phase() != phase {
			continue
		}
		var start time.Time
		if s.Profiler != nil {
			start = time.Now()
		}
		if err := sc.system.Run(w, ctx); err != nil {
			groggy.Logsf("WARN", "system %s: %v", sc.system.Name(), err)
		}
		if s.Profiler != nil {
			s.Profiler.add(sc.system.Name(), time.Since(start))
		}
	}
}

// Systems returns the systems currently scheduled for phase, in run order.
// Useful for tests asserting schedule order.
func (s *Scheduler) Systems(phase Phase) []System {
	var out []System
	for _, sc := range s.systems {
		if sc.system.Phase() == phase {
			out = append(out, sc.system)
		}
	}
	return out
}
