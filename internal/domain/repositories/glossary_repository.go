package repositories

import (
	"context"

	"github.com/dentara/backend/internal/domain/entities"
)

// GlossaryRepository provides access to glossary terms and their
// interaction log.
type GlossaryRepository interface {
	List(ctx context.Context) ([]*entities.GlossaryTerm, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entities.GlossaryTerm, error)

	// ListMissingMetadata returns terms with at least one empty metadata
	// column, the candidate set for "all" enhancement runs.
	ListMissingMetadata(ctx context.Context) ([]*entities.GlossaryTerm, error)

	// AllTermNames returns every term name ordered alphabetically; used as
	// the allowed vocabulary for related_terms suggestions.
	AllTermNames(ctx context.Context) ([]string, error)

	LogInteraction(ctx context.Context, interaction *entities.GlossaryInteraction) error
}
