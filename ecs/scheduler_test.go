package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubSystem struct {
	name     string
	phase    Phase
	priority int
	ran      *[]string
}

func (s stubSystem) Name() string  { return s.name }
func (s stubSystem) Phase() Phase  { return s.phase }
func (s stubSystem) Priority() int { return s.priority }
func (s stubSystem) Run(w *World, ctx FrameContext) error {
	*s.ran = append(*s.ran, s.name)
	return nil
}

// TestScheduleOrderIsPhaseThenPriorityThenInsertion checks that systems
// run in (Phase, Priority, insertion order), UPDATE entirely before
// RENDER, regardless of Add order.
func TestScheduleOrderIsPhaseThenPriorityThenInsertion(t *testing.T) {
	var ran []string
	s := NewScheduler()
	w := NewWorld()

	s.Add(w, stubSystem{name: "render-high", phase: PhaseRender, priority: 500, ran: &ran})
	s.Add(w, stubSystem{name: "update-low", phase: PhaseUpdate, priority: -800, ran: &ran})
	s.Add(w, stubSystem{name: "render-low", phase: PhaseRender, priority: -100, ran: &ran})
	s.Add(w, stubSystem{name: "update-high", phase: PhaseUpdate, priority: 200, ran: &ran})

	ctx := FrameContext{}
	s.Run(PhaseUpdate, w, ctx)
	s.Run(PhaseRender, w, ctx)

	assert.Equal(t, []string{"update-low", "update-high", "render-low", "render-high"}, ran)
}

func TestScheduleTiesBreakByInsertionOrder(t *testing.T) {
	var ran []string
	s := NewScheduler()
	w := NewWorld()
	s.Add(w, stubSystem{name: "first", phase: PhaseUpdate, priority: 0, ran: &ran})
	s.Add(w, stubSystem{name: "second", phase: PhaseUpdate, priority: 0, ran: &ran})

	s.Run(PhaseUpdate, w, FrameContext{})
	assert.Equal(t, []string{"first", "second"}, ran)
}

type erroringSystem struct{ ran *int }

func (erroringSystem) Name() string  { return "erroring" }
func (erroringSystem) Phase() Phase  { return PhaseUpdate }
func (erroringSystem) Priority() int { return 0 }
func (e erroringSystem) Run(w *World, ctx FrameContext) error {
	*e.ran++
	return assertError{}
}

type assertError struct{}

func (assertError) Error() string { return "stub failure" }

// TestRunContinuesAfterSystemError: a system returning an error is logged
// and skipped for the rest of this frame, but the scheduler doesn't stop
// running the remaining systems, and the failing system is retried next
// frame (it's never removed from the schedule).
func TestRunContinuesAfterSystemError(t *testing.T) {
	var ranErroring int
	var ranAfter []string
	s := NewScheduler()
	w := NewWorld()
	s.Add(w, erroringSystem{ran: &ranErroring})
	s.Add(w, stubSystem{name: "after", phase: PhaseUpdate, priority: 1, ran: &ranAfter})

	s.Run(PhaseUpdate, w, FrameContext{})
	assert.Equal(t, 1, ranErroring)
	assert.Equal(t, []string{"after"}, ranAfter)

	s.Run(PhaseUpdate, w, FrameContext{})
	assert.Equal(t, 2, ranErroring, "erroring system must be retried next frame")
}

type initTrackingSystem struct {
	inits *[]*World
}

func (initTrackingSystem) Name() string                         { return "init-tracking" }
func (initTrackingSystem) Phase() Phase                         { return PhaseUpdate }
func (initTrackingSystem) Priority() int                        { return 0 }
func (initTrackingSystem) Run(w *World, ctx FrameContext) error { return nil }
func (s initTrackingSystem) Init(w *World) {
	*s.inits = append(*s.inits, w)
}

// TestAddFiresInitOnAnInitializerSystem checks that a System implementing
// Initializer has its Init called exactly once, against the World it was
// added to, at Add time rather than on first Run.
func TestAddFiresInitOnAnInitializerSystem(t *testing.T) {
	var inits []*World
	s := NewScheduler()
	w := NewWorld()

	s.Add(w, initTrackingSystem{inits: &inits})
	assert.Equal(t, 1, len(inits), "Init must fire exactly once at Add time")
	assert.Same(t, w, inits[0])

	s.Run(PhaseUpdate, w, FrameContext{})
	assert.Equal(t, 1, len(inits), "Init must not fire again on Run")
}

// TestAddToleratesSystemsWithoutInit checks that a plain System with no
// Init method (the common case) is added without panicking.
func TestAddToleratesSystemsWithoutInit(t *testing.T) {
	var ran []string
	s := NewScheduler()
	w := NewWorld()
	assert.NotPanics(t, func() {
		s.Add(w, stubSystem{name: "plain", phase: PhaseUpdate, ran: &ran})
	})
}

// TestProfilerAccumulatesPerSystemSamples checks that an attached Profiler
// records one sample per executed system and that Reset clears them.
func TestProfilerAccumulatesPerSystemSamples(t *testing.T) {
	var ran []string
	s := NewScheduler()
	s.Profiler = NewProfiler()
	w := NewWorld()
	s.Add(w, stubSystem{name: "a", phase: PhaseUpdate, ran: &ran})
	s.Add(w, stubSystem{name: "b", phase: PhaseUpdate, priority: 1, ran: &ran})

	s.Run(PhaseUpdate, w, FrameContext{})
	samples := s.Profiler.Samples()
	assert.Contains(t, samples, "a")
	assert.Contains(t, samples, "b")

	s.Profiler.Reset()
	assert.Empty(t, s.Profiler.Samples())
}
