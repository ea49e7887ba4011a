package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
)

// AuditStore persists audit records. Records are append-only.
type AuditStore interface {
	Create(ctx context.Context, record *domain.AuditRecord) error

	// ListByRecipe returns a recipe's audit records, newest first.
	ListByRecipe(ctx context.Context, recipeID uuid.UUID, limit int) ([]*domain.AuditRecord, error)
}
