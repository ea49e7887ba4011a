package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecipe(t *testing.T) {
	t.Parallel()

	restaurant := uuid.New()
	r, err := NewRecipe(&restaurant, "Coq au Vin")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, RecipeStatusPrivate, r.Status)
	assert.False(t, r.IsPublic())
	assert.Equal(t, &restaurant, r.TenantID())
	assert.Equal(t, r.ID, r.AuditSubject())

	_, err = NewRecipe(nil, "   ")
	assert.ErrorIs(t, err, ErrEmptyDishName)
}

func TestRecipeValidate(t *testing.T) {
	t.Parallel()

	r := &Recipe{ID: uuid.New(), DishName: "Bouillabaisse", Status: "X"}
	assert.ErrorIs(t, r.Validate(), ErrInvalidRecipeStatus)

	r.Status = RecipeStatusPublic
	assert.NoError(t, r.Validate())
	assert.True(t, r.IsPublic())

	r.ID = uuid.Nil
	assert.ErrorIs(t, r.Validate(), ErrInvalidID)
}

func TestTrackedFieldsOrder(t *testing.T) {
	t.Parallel()

	step := &Step{ID: uuid.New(), RecipeID: uuid.New(), Position: 2, Instruction: "Deglaze"}
	fields := step.TrackedFields()

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"id", "recipe", "position", "instruction", "duration", "image", "created_at", "updated_at"}, names)
	assert.Equal(t, step.RecipeID, step.AuditSubject())
}
