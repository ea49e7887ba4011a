package domain

import (
	"time"

	"github.com/google/uuid"
)

// StarchPreparation is a side preparation attached to a recipe, with its own
// ordered steps and an optional generated image.
type StarchPreparation struct {
	ID        uuid.UUID `json:"id"`
	RecipeID  uuid.UUID `json:"recipe_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	Steps     []string  `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasImage reports whether an image URL has already been stored.
func (s *StarchPreparation) HasImage() bool {
	return s.ImageURL != ""
}

func (s *StarchPreparation) EntityType() string      { return "StarchPreparation" }
func (s *StarchPreparation) EntityID() uuid.UUID     { return s.ID }
func (s *StarchPreparation) AuditSubject() uuid.UUID { return s.RecipeID }

func (s *StarchPreparation) TrackedFields() []Field {
	return []Field{
		F("id", s.ID),
		F("recipe", s.RecipeID),
		F("name", s.Name),
		F("image", s.ImageURL),
		F("created_at", s.CreatedAt),
		F("updated_at", s.UpdatedAt),
	}
}
