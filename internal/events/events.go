package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted after a mutation has committed.
const (
	TypeRecipeCreated          = "recipe.created"
	TypeRecipeUpdated          = "recipe.updated"
	TypeStarchPreparationSaved = "starch_preparation.saved"
)

// MutationEvent announces that an entity was saved. Handlers receive only
// identifiers and re-fetch state themselves.
type MutationEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	SubjectID uuid.UUID       `json:"subject_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StarchSavedPayload accompanies TypeStarchPreparationSaved.
type StarchSavedPayload struct {
	RecipeID uuid.UUID `json:"recipe_id"`
	Created  bool      `json:"created"`
	HasImage bool      `json:"has_image"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *MutationEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewMutationEvent creates an event for subjectID. payload may be nil.
func NewMutationEvent(eventType string, subjectID uuid.UUID, payload any) (*MutationEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &MutationEvent{
		ID:        uuid.New(),
		Type:      eventType,
		SubjectID: subjectID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler reacts to mutation events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *MutationEvent) error
}

// EventEmitter publishes events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *MutationEvent) error
}
