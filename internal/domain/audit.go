package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is an immutable record of the field changes one actor made to
// a recipe or one of its child rows.
type AuditRecord struct {
	ID           uuid.UUID  `json:"id"`
	RecipeID     uuid.UUID  `json:"recipe_id"`
	ActorID      uuid.UUID  `json:"changed_by"`
	RestaurantID *uuid.UUID `json:"restaurant_id,omitempty"`
	ChangesMade  string     `json:"changes_made"`
	ChangedAt    time.Time  `json:"changed_at"`
}
