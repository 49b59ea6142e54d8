package ecs

import (
	"fmt"
	"reflect"
)

// DependencyMissingError is raised by AddComponent when a component's
// declared dependency isn't present on the entity yet. It is a programmer
// error, not a runtime condition, so callers let it panic.
type DependencyMissingError struct {
	Entity    EntityId
	Component reflect.Type
	Missing   reflect.Type
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("entity %d: component %s requires %s to be present first",
		e.Entity, e.Component, e.Missing)
}
