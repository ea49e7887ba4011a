package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
)

// GetTag loads a recipe tag and records its state for later diffs.
func (s *RecipeService) GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	tag, err := s.recipes.GetTag(ctx, id)
	if err != nil {
		return nil, wrapError("get_tag", "failed to retrieve tag", err)
	}
	s.tracker.Capture(tag)
	return tag, nil
}

// UpdateTag renames a tag. The change is audited against the owning recipe.
func (s *RecipeService) UpdateTag(ctx context.Context, tag *domain.Tag) error {
	if tag.ID == uuid.Nil || tag.RecipeID == uuid.Nil {
		return wrapError("update_tag", "invalid tag", domain.ErrInvalidID)
	}
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return wrapError("update_tag", "tag name cannot be empty", domain.ErrValidation)
	}

	if err := s.recipes.UpdateTag(ctx, tag); err != nil {
		return wrapError("update_tag", "failed to save tag", err)
	}

	s.tracker.Observe(ctx, tag, false)
	return nil
}

// GetEssential loads an ingredient line and records its state.
func (s *RecipeService) GetEssential(ctx context.Context, id uuid.UUID) (*domain.Essential, error) {
	e, err := s.recipes.GetEssential(ctx, id)
	if err != nil {
		return nil, wrapError("get_essential", "failed to retrieve essential", err)
	}
	s.tracker.Capture(e)
	return e, nil
}

func (s *RecipeService) UpdateEssential(ctx context.Context, e *domain.Essential) error {
	if e.ID == uuid.Nil || e.RecipeID == uuid.Nil {
		return wrapError("update_essential", "invalid essential", domain.ErrInvalidID)
	}
	if strings.TrimSpace(e.Name) == "" {
		return wrapError("update_essential", "essential name cannot be empty", domain.ErrValidation)
	}

	if err := s.recipes.UpdateEssential(ctx, e); err != nil {
		return wrapError("update_essential", "failed to save essential", err)
	}

	s.tracker.Observe(ctx, e, false)
	return nil
}

// GetComment loads a cooking comment and records its state.
func (s *RecipeService) GetComment(ctx context.Context, id uuid.UUID) (*domain.CookingComment, error) {
	c, err := s.recipes.GetComment(ctx, id)
	if err != nil {
		return nil, wrapError("get_comment", "failed to retrieve cooking comment", err)
	}
	s.tracker.Capture(c)
	return c, nil
}

// UpdateComment saves the text of a cooking comment. The author is kept.
func (s *RecipeService) UpdateComment(ctx context.Context, c *domain.CookingComment) error {
	if c.ID == uuid.Nil || c.RecipeID == uuid.Nil {
		return wrapError("update_comment", "invalid cooking comment", domain.ErrInvalidID)
	}
	c.UpdatedAt = s.now()

	if err := s.recipes.UpdateComment(ctx, c); err != nil {
		return wrapError("update_comment", "failed to save cooking comment", err)
	}

	s.tracker.Observe(ctx, c, false)
	return nil
}
