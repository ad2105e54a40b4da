package notify

import (
	"context"
	"time"
)

// Event describe una transición de estado ya commiteada.
type Event struct {
	Kind       string    `json:"kind"` // pet.published, pet.adopted, application.approved, ...
	EntityID   string    `json:"entity_id"`
	PetID      string    `json:"pet_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dispatcher avisa transiciones hacia afuera (email, refresh de UI).
// Es fire-and-forget: un dispatch fallido jamás revierte ni bloquea
// la transición que lo originó.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event)
}

// Noop descarta todos los eventos (dev / tests).
type Noop struct{}

func (Noop) Dispatch(ctx context.Context, e Event) {}
