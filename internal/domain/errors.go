package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrDuplicate   = errors.New("duplicate key")
	ErrPersistence = errors.New("persistence failure")
	ErrDecode      = errors.New("document decode failed")
)

// NotFound reports a missing entity.
func NotFound(entity string, key any) error {
	return fmt.Errorf("%s %v: %w", entity, key, ErrNotFound)
}

// Invalid reports a structural precondition violated by one record.
func Invalid(entity string, key any, reason string) error {
	return fmt.Errorf("%s %v: %s: %w", entity, key, reason, ErrValidation)
}

// Duplicate reports a unique-key collision. It matches both ErrValidation and ErrDuplicate.
func Duplicate(entity string, key any) error {
	return fmt.Errorf("%s %v already exists: %w: %w", entity, key, ErrValidation, ErrDuplicate)
}

// Persistence wraps a store failure for op.
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// SyncWarning is attached to a result when the primary mutation committed
// but recomputing a dependent BOQ item afterwards failed.
type SyncWarning struct {
	Operation string `json:"operation"`
	BOQItemID int64  `json:"boq_item_id,omitempty"`
	Message   string `json:"message"`
}

func NewSyncWarning(op string, boqItemID int64, err error) SyncWarning {
	return SyncWarning{Operation: op, BOQItemID: boqItemID, Message: err.Error()}
}
