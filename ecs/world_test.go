package ecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transformStub struct{ x int }

type cameraStub struct{}

func (cameraStub) ComponentDependencies() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(transformStub{})}
}

// TestAddComponentPanicsOnMissingDependency checks that adding a component
// whose declared dependency isn't present yet must panic with
// *DependencyMissingError rather than silently inserting.
func TestAddComponentPanicsOnMissingDependency(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		_, ok := r.(*DependencyMissingError)
		assert.True(t, ok, "expected *DependencyMissingError, got %T", r)
	}()
	AddComponent(w, id, cameraStub{})
}

func TestAddComponentSucceedsOnceDependencySatisfied(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	AddComponent(w, id, transformStub{x: 1})
	assert.NotPanics(t, func() {
		AddComponent(w, id, cameraStub{})
	})
}

// TestDestroyEntityRemovesFromEveryIndex checks that after destruction, no
// store and no entityTypes entry may still reference the entity's id.
func TestDestroyEntityRemovesFromEveryIndex(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	AddComponent(w, id, transformStub{x: 5})

	w.DestroyEntity(id)

	assert.False(t, w.IsAlive(id))
	_, ok := Get[transformStub](w, id)
	assert.False(t, ok)
	assert.Empty(t, w.EntitiesWith(TypeOf[transformStub]()))

	_, hasTypes := w.entityTypes[id]
	assert.False(t, hasTypes, "entityTypes entry must be fully forgotten")
}

// TestDestroyEntityIsIdempotent: destroying an unknown id silently no-ops.
func TestDestroyEntityIsIdempotent(t *testing.T) {
	w := NewWorld()
	assert.NotPanics(t, func() {
		w.DestroyEntity(999)
	})
}

type disposeCounter struct{ disposed *int }

func (d disposeCounter) Dispose() { *d.disposed++ }

func TestDestroyEntityDisposesComponents(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	count := 0
	AddComponent(w, id, disposeCounter{disposed: &count})

	w.DestroyEntity(id)
	assert.Equal(t, 1, count)
}

func TestEntitiesWithUsesSmallestStoreAndFiltersOthers(t *testing.T) {
	w := NewWorld()

	a := w.CreateEntity()
	AddComponent(w, a, transformStub{x: 1})

	b := w.CreateEntity()
	AddComponent(w, b, transformStub{x: 2})
	AddComponent(w, b, cameraStub{})

	got := w.EntitiesWith(TypeOf[transformStub](), TypeOf[cameraStub]())
	assert.Equal(t, []EntityId{b}, got)
}
