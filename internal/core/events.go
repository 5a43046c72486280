package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a committed ledger change.
type EventKind string

const (
	EventPersonCreated      EventKind = "person.created"
	EventPersonUpdated      EventKind = "person.updated"
	EventPersonDeleted      EventKind = "person.deleted"
	EventCategoryCreated    EventKind = "category.created"
	EventTransactionCreated EventKind = "transaction.created"
)

// LedgerEvent announces a change that has already been committed to the store.
// It carries ids only; consumers read current state from the store.
type LedgerEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	EntityID   int64     `json:"entityId"`
	PersonID   int64     `json:"personId,omitempty"`
	CategoryID int64     `json:"categoryId,omitempty"`
	// Removed counts transactions removed by a person cascade.
	Removed    int       `json:"removed,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewLedgerEvent(kind EventKind, entityID int64) LedgerEvent {
	return LedgerEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}
