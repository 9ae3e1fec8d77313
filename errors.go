package stockpile

import (
	"fmt"

	"github.com/TheBitDrifter/table"
)

type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

type EntityNotFoundError struct {
	Entity      Entity
	ElementType table.ElementType
}

func (e EntityNotFoundError) Error() string {
	if e.ElementType == nil {
		return fmt.Sprintf("%v has no component in pool", e.Entity)
	}
	return fmt.Sprintf("%v has no component of type %T", e.Entity, e.ElementType)
}

type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("entity is not valid: %v", e.Entity)
}

type EntityExhaustedError struct {
	Issued int
}

func (e EntityExhaustedError) Error() string {
	return fmt.Sprintf("entity index space exhausted after %d indices", e.Issued)
}

type GroupSizeError struct {
	Count int
}

func (e GroupSizeError) Error() string {
	return fmt.Sprintf("group needs at least 2 pools, got %d", e.Count)
}

// GroupConflictError is returned when a pool already reordered by one group
// is requested for a different one.
type GroupConflictError struct {
	Component Component
}

func (e GroupConflictError) Error() string {
	return fmt.Sprintf("pool for %T is already owned by another group", e.Component)
}

type GroupMembershipError struct{}

func (e GroupMembershipError) Error() string {
	return "pool does not belong to group"
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

type LockBitError struct {
	Bit uint32
}

func (e LockBitError) Error() string {
	return fmt.Sprintf("lock bit %d is not held", e.Bit)
}
