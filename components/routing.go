package components

import "github.com/embergrove/forgecs/ecs"

// LayerTag is the Layer component: a routing tag selecting which host event
// drives the entity. Absence defaults callers to LayerWorld3D when they
// read it through LayerOf below.
type LayerTag struct {
	Value ecs.Layer
}

// Dimension is a signed integer tag; its absence on an entity means "all
// dimensions" (the entity is visible regardless of the active dimension).
type Dimension struct {
	ID int
}

// LayerOf returns the Layer an entity routes to, defaulting to LayerWorld3D
// when no LayerTag component is present.
func LayerOf(w *ecs.World, id ecs.EntityId) ecs.Layer {
	if tag, ok := ecs.Get[LayerTag](w, id); ok {
		return tag.Value
	}
	return ecs.LayerWorld3D
}

// InActiveDimension reports whether an entity should be considered for the
// currently active dimension: true if it carries no Dimension component, or
// if its Dimension matches the active one, or if no dimension is active.
func InActiveDimension(w *ecs.World, id ecs.EntityId) bool {
	active, has := w.Scene.ActiveDimension()
	if !has {
		return true
	}
	dim, ok := ecs.Get[Dimension](w, id)
	if !ok {
		return true
	}
	return dim.ID == active
}
