package repositories

import (
	"context"

	"github.com/dentara/backend/internal/domain/entities"
)

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Category string
	Status   string
	Limit    int
	Offset   int
}

// ArticleRepository provides read access to articles.
type ArticleRepository interface {
	List(ctx context.Context, filter ArticleFilter) ([]*entities.Article, error)
	GetBySlug(ctx context.Context, slug string) (*entities.Article, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]*entities.Article, error)
}

// ArticleViewRepository appends to the view log.
type ArticleViewRepository interface {
	LogView(ctx context.Context, view *entities.ArticleView) error
}
