package repositories

import (
	"context"

	"github.com/dentara/backend/internal/domain/entities"
)

// ArticleSearchRepository indexes and searches published articles.
type ArticleSearchRepository interface {
	// InitSchema ensures the search collection exists.
	InitSchema(ctx context.Context) error

	// Index upserts one article into the search index.
	Index(ctx context.Context, article *entities.Article) error

	// Delete removes an article from the index.
	Delete(ctx context.Context, id string) error

	// Search runs a full-text query over published articles.
	Search(ctx context.Context, query string, limit int) ([]*entities.Article, error)
}
