package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTagAuditedUnderRecipe(t *testing.T) {
	t.Parallel()

	f := newRecipeFixture(t)
	tag := &domain.Tag{ID: uuid.New(), RecipeID: uuid.New(), Name: "Vegetarian"}
	f.recipes.PutTag(tag)
	ctx := withActor()

	loaded, err := f.svc.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	loaded.Name = " Vegan "
	require.NoError(t, f.svc.UpdateTag(ctx, loaded))

	records := f.audits.Records()
	require.Len(t, records, 1)
	assert.Equal(t, tag.RecipeID, records[0].RecipeID)
	assert.Equal(t, "Tag: name=Vegan", records[0].ChangesMade)
	assert.Empty(t, f.emitter.types(), "detail saves are not announced")

	loaded.Name = ""
	assert.ErrorIs(t, f.svc.UpdateTag(ctx, loaded), service.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateTag(ctx, &domain.Tag{Name: "x"}), service.ErrInvalidInput)

	_, err = f.svc.GetTag(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateEssentialAuditedUnderRecipe(t *testing.T) {
	t.Parallel()

	f := newRecipeFixture(t)
	e := &domain.Essential{ID: uuid.New(), RecipeID: uuid.New(), Name: "Arborio rice", Quantity: "300", Unit: "g"}
	f.recipes.PutEssential(e)
	ctx := withActor()

	loaded, err := f.svc.GetEssential(ctx, e.ID)
	require.NoError(t, err)
	loaded.Quantity = "350"
	require.NoError(t, f.svc.UpdateEssential(ctx, loaded))

	records := f.audits.Records()
	require.Len(t, records, 1)
	assert.Equal(t, e.RecipeID, records[0].RecipeID)
	assert.Equal(t, "Essential: quantity=350", records[0].ChangesMade)

	loaded.Name = "  "
	assert.ErrorIs(t, f.svc.UpdateEssential(ctx, loaded), service.ErrInvalidInput)
}

func TestUpdateCommentAuditedUnderRecipe(t *testing.T) {
	t.Parallel()

	f := newRecipeFixture(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &domain.CookingComment{
		ID: uuid.New(), RecipeID: uuid.New(), AuthorID: uuid.New(),
		Comment: "Used less salt", CreatedAt: created, UpdatedAt: created,
	}
	f.recipes.PutComment(c)
	ctx := withActor()

	loaded, err := f.svc.GetComment(ctx, c.ID)
	require.NoError(t, err)
	loaded.Comment = "Used half the salt"
	require.NoError(t, f.svc.UpdateComment(ctx, loaded))

	assert.True(t, loaded.UpdatedAt.After(created))
	records := f.audits.Records()
	require.Len(t, records, 1)
	assert.Equal(t, c.RecipeID, records[0].RecipeID)
	assert.Equal(t, "CookingComment: comment=Used half the salt", records[0].ChangesMade)

	assert.ErrorIs(t, f.svc.UpdateComment(ctx, &domain.CookingComment{ID: uuid.New(), RecipeID: uuid.New()}),
		service.ErrNotFound)
}
