package factory

import (
	fab "github.com/Goldziher/fabricator"
)

// NewUser builds a record with random field values; customData overrides
// individual fields by name.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	return instance.Build(customData...)
}
