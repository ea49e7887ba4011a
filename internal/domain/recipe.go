package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecipeStatus is the visibility of a recipe.
type RecipeStatus string

// Possible recipe status values. The short codes match the stored column values.
const (
	RecipeStatusPublic  RecipeStatus = "P"
	RecipeStatusPrivate RecipeStatus = "PR"
)

// Valid reports whether s is a known status.
func (s RecipeStatus) Valid() bool {
	return s == RecipeStatusPublic || s == RecipeStatusPrivate
}

// Recipe is a dish owned by a restaurant.
type Recipe struct {
	ID              uuid.UUID    `json:"id"`
	RestaurantID    *uuid.UUID   `json:"restaurant_id,omitempty"`
	DishName        string       `json:"dish_name"`
	Description     string       `json:"description"`
	Status          RecipeStatus `json:"status"`
	IsDraft         bool         `json:"is_draft"`
	IsScheduled     bool         `json:"is_schedule"`
	PrepTimeMinutes int          `json:"prep_time"`
	Servings        int          `json:"servings"`
	VideoURL        string       `json:"video,omitempty"`
	VideoID         string       `json:"video_id,omitempty"`
	IsDeleted       bool         `json:"is_deleted"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewRecipe creates a private, non-draft recipe with a fresh ID.
func NewRecipe(restaurantID *uuid.UUID, dishName string) (*Recipe, error) {
	now := time.Now().UTC()
	r := &Recipe{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		DishName:     dishName,
		Status:       RecipeStatusPrivate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks if the Recipe has valid data.
func (r *Recipe) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: recipe id", ErrInvalidID)
	}
	if strings.TrimSpace(r.DishName) == "" {
		return ErrEmptyDishName
	}
	if !r.Status.Valid() {
		return ErrInvalidRecipeStatus
	}
	return nil
}

// IsPublic reports whether the recipe is visible to everyone.
func (r *Recipe) IsPublic() bool {
	return r.Status == RecipeStatusPublic
}

func (r *Recipe) EntityType() string      { return "Recipe" }
func (r *Recipe) EntityID() uuid.UUID     { return r.ID }
func (r *Recipe) AuditSubject() uuid.UUID { return r.ID }
func (r *Recipe) TenantID() *uuid.UUID    { return r.RestaurantID }

// TrackedFields lists the recipe's columns in declaration order.
func (r *Recipe) TrackedFields() []Field {
	return []Field{
		F("id", r.ID),
		F("dish_name", r.DishName),
		F("description", r.Description),
		F("status", r.Status),
		F("is_draft", r.IsDraft),
		F("is_schedule", r.IsScheduled),
		F("prep_time", r.PrepTimeMinutes),
		F("servings", r.Servings),
		F("video", r.VideoURL),
		F("video_id", r.VideoID),
		F("is_deleted", r.IsDeleted),
		F("created_at", r.CreatedAt),
		F("updated_at", r.UpdatedAt),
	}
}

// RecipeImage is a generated or uploaded picture of a dish.
type RecipeImage struct {
	ID        uuid.UUID `json:"id"`
	RecipeID  uuid.UUID `json:"recipe_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Step is one ordered instruction of a recipe.
type Step struct {
	ID              uuid.UUID `json:"id"`
	RecipeID        uuid.UUID `json:"recipe_id"`
	Position        int       `json:"position"`
	Instruction     string    `json:"instruction"`
	DurationMinutes int       `json:"duration"`
	ImageURL        string    `json:"image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *Step) EntityType() string      { return "Step" }
func (s *Step) EntityID() uuid.UUID     { return s.ID }
func (s *Step) AuditSubject() uuid.UUID { return s.RecipeID }

func (s *Step) TrackedFields() []Field {
	return []Field{
		F("id", s.ID),
		F("recipe", s.RecipeID),
		F("position", s.Position),
		F("instruction", s.Instruction),
		F("duration", s.DurationMinutes),
		F("image", s.ImageURL),
		F("created_at", s.CreatedAt),
		F("updated_at", s.UpdatedAt),
	}
}

// Tag labels a recipe.
type Tag struct {
	ID       uuid.UUID `json:"id"`
	RecipeID uuid.UUID `json:"recipe_id"`
	Name     string    `json:"name"`
}

func (t *Tag) EntityType() string      { return "Tag" }
func (t *Tag) EntityID() uuid.UUID     { return t.ID }
func (t *Tag) AuditSubject() uuid.UUID { return t.RecipeID }

func (t *Tag) TrackedFields() []Field {
	return []Field{
		F("id", t.ID),
		F("recipe", t.RecipeID),
		F("name", t.Name),
	}
}

// Essential is an ingredient line of a recipe with its quantity.
type Essential struct {
	ID       uuid.UUID `json:"id"`
	RecipeID uuid.UUID `json:"recipe_id"`
	Name     string    `json:"name"`
	Quantity string    `json:"quantity"`
	Unit     string    `json:"unit"`
}

func (e *Essential) EntityType() string      { return "Essential" }
func (e *Essential) EntityID() uuid.UUID     { return e.ID }
func (e *Essential) AuditSubject() uuid.UUID { return e.RecipeID }

func (e *Essential) TrackedFields() []Field {
	return []Field{
		F("id", e.ID),
		F("recipe", e.RecipeID),
		F("name", e.Name),
		F("quantity", e.Quantity),
		F("unit", e.Unit),
	}
}
