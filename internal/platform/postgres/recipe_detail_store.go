package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
)

func (s *PostgresRecipeStore) GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, recipe_id, name
		FROM recipe_tags
		WHERE id = $1
	`, id).Scan(&tag.ID, &tag.RecipeID, &tag.Name)
	if err != nil {
		return nil, MapError(err, store.ErrTagNotFound)
	}
	return &tag, nil
}

func (s *PostgresRecipeStore) UpdateTag(ctx context.Context, tag *domain.Tag) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE recipe_tags SET name = $2 WHERE id = $1`,
		tag.ID, tag.Name)
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrTagNotFound)
}

func (s *PostgresRecipeStore) GetEssential(ctx context.Context, id uuid.UUID) (*domain.Essential, error) {
	var e domain.Essential
	err := s.db.QueryRowContext(ctx, `
		SELECT id, recipe_id, title, quantity, unit
		FROM recipe_ingredients
		WHERE id = $1
	`, id).Scan(&e.ID, &e.RecipeID, &e.Name, &e.Quantity, &e.Unit)
	if err != nil {
		return nil, MapError(err, store.ErrEssentialNotFound)
	}
	return &e, nil
}

func (s *PostgresRecipeStore) UpdateEssential(ctx context.Context, e *domain.Essential) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE recipe_ingredients
		SET title = $2, quantity = $3, unit = $4
		WHERE id = $1
	`, e.ID, e.Name, e.Quantity, e.Unit)
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrEssentialNotFound)
}

func (s *PostgresRecipeStore) GetComment(ctx context.Context, id uuid.UUID) (*domain.CookingComment, error) {
	var c domain.CookingComment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, recipe_id, author_id, comment, created_at, updated_at
		FROM cooking_comments
		WHERE id = $1
	`, id).Scan(&c.ID, &c.RecipeID, &c.AuthorID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, MapError(err, store.ErrCommentNotFound)
	}
	return &c, nil
}

func (s *PostgresRecipeStore) UpdateComment(ctx context.Context, c *domain.CookingComment) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cooking_comments SET comment = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Comment, c.UpdatedAt)
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrCommentNotFound)
}
