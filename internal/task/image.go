package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/generation"
	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/phrazzld/mise-api/internal/store"
)

const imageContentType = "image/png"

// RecipeImageTask generates a picture for a recipe that has none.
type RecipeImageTask struct {
	recipes   store.RecipeStore
	generator generation.ImageGenerator
	storage   ObjectStorage
	policy    generation.Policy
	logger    *slog.Logger
}

// NewRecipeImageTask creates a RecipeImageTask.
func NewRecipeImageTask(
	recipes store.RecipeStore,
	generator generation.ImageGenerator,
	storage ObjectStorage,
	policy generation.Policy,
	log *slog.Logger,
) (*RecipeImageTask, error) {
	if recipes == nil || generator == nil || storage == nil || log == nil {
		return nil, fmt.Errorf("%w: recipe image task", ErrNilDependency)
	}
	return &RecipeImageTask{
		recipes:   recipes,
		generator: generator,
		storage:   storage,
		policy:    policy,
		logger:    log.With("task_type", KindRecipeImage),
	}, nil
}

// Run generates, uploads and attaches an image to recipeID.
func (t *RecipeImageTask) Run(ctx context.Context, recipeID uuid.UUID) error {
	if recipeID == uuid.Nil {
		return ErrEmptySubject
	}
	log := logger.FromContextOrDefault(ctx, t.logger).With("recipe_id", recipeID)

	recipe, err := t.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}

	hasImages, err := t.recipes.HasImages(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to check recipe images: %w", err)
	}
	if hasImages {
		log.Info("recipe already has images, skipping generation")
		return nil
	}

	ingredients, err := t.recipes.IngredientNames(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}

	req := generation.ImageRequest{
		Kind:        generation.ImageKindDish,
		Subject:     recipe.DishName,
		Ingredients: ingredients,
	}
	data, err := generateImage(ctx, t.generator, t.policy, KindRecipeImage, log, req)
	if err != nil {
		return err
	}

	url, err := t.storage.Put(ctx, imageKey("recipe_images", recipe.DishName, recipeID), data, imageContentType)
	if err != nil {
		return fmt.Errorf("failed to upload recipe image: %w", err)
	}

	image := &domain.RecipeImage{
		ID:        uuid.New(),
		RecipeID:  recipeID,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.recipes.AddImage(ctx, image); err != nil {
		return fmt.Errorf("failed to save recipe image: %w", err)
	}

	log.Info("recipe image created", "url", url)
	return nil
}

// StarchImageTask generates a picture for a starch preparation.
type StarchImageTask struct {
	starches  store.StarchPreparationStore
	generator generation.ImageGenerator
	storage   ObjectStorage
	policy    generation.Policy
	logger    *slog.Logger
}

// NewStarchImageTask creates a StarchImageTask.
func NewStarchImageTask(
	starches store.StarchPreparationStore,
	generator generation.ImageGenerator,
	storage ObjectStorage,
	policy generation.Policy,
	log *slog.Logger,
) (*StarchImageTask, error) {
	if starches == nil || generator == nil || storage == nil || log == nil {
		return nil, fmt.Errorf("%w: starch image task", ErrNilDependency)
	}
	return &StarchImageTask{
		starches:  starches,
		generator: generator,
		storage:   storage,
		policy:    policy,
		logger:    log.With("task_type", KindStarchImage),
	}, nil
}

// Run generates an image from the preparation's name and steps and stores
// its URL on the preparation.
func (t *StarchImageTask) Run(ctx context.Context, prepID uuid.UUID) error {
	if prepID == uuid.Nil {
		return ErrEmptySubject
	}
	log := logger.FromContextOrDefault(ctx, t.logger).With("starch_preparation_id", prepID)

	prep, err := t.starches.GetByID(ctx, prepID)
	if err != nil {
		return fmt.Errorf("failed to load starch preparation: %w", err)
	}
	if prep.HasImage() {
		log.Info("starch preparation already has image")
		return nil
	}

	req := generation.ImageRequest{
		Kind:    generation.ImageKindStarch,
		Subject: prep.Name,
		Steps:   prep.Steps,
	}
	data, err := generateImage(ctx, t.generator, t.policy, KindStarchImage, log, req)
	if err != nil {
		return err
	}

	url, err := t.storage.Put(ctx, imageKey("starch_preparation", prep.Name, prepID), data, imageContentType)
	if err != nil {
		return fmt.Errorf("failed to upload starch image: %w", err)
	}

	if err := t.starches.SetImageURL(ctx, prepID, url); err != nil {
		return fmt.Errorf("failed to save starch image url: %w", err)
	}

	log.Info("starch image created", "url", url)
	return nil
}

func generateImage(
	ctx context.Context,
	gen generation.ImageGenerator,
	policy generation.Policy,
	op string,
	log *slog.Logger,
	req generation.ImageRequest,
) ([]byte, error) {
	encoded, err := generation.Do(ctx, policy, op, log, func(ctx context.Context) (string, error) {
		return gen.GenerateImage(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	data, err := generation.DecodeImage(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}
	return data, nil
}
