package domain

import (
	"time"

	"github.com/google/uuid"
)

// CookingComment records a deviation a cook noted while preparing a recipe.
type CookingComment struct {
	ID        uuid.UUID `json:"id"`
	RecipeID  uuid.UUID `json:"recipe_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CookingComment) EntityType() string      { return "CookingComment" }
func (c *CookingComment) EntityID() uuid.UUID     { return c.ID }
func (c *CookingComment) AuditSubject() uuid.UUID { return c.RecipeID }

func (c *CookingComment) TrackedFields() []Field {
	return []Field{
		F("id", c.ID),
		F("recipe", c.RecipeID),
		F("author", c.AuthorID),
		F("comment", c.Comment),
		F("created_at", c.CreatedAt),
		F("updated_at", c.UpdatedAt),
	}
}
