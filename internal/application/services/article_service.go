package services

import (
	"context"
	"strings"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
)

// ArticleService handles business logic for patient-education articles
type ArticleService struct {
	repo       repositories.ArticleRepository
	searchRepo repositories.ArticleSearchRepository
}

// NewArticleService creates a new article service
func NewArticleService(repo repositories.ArticleRepository, searchRepo repositories.ArticleSearchRepository) *ArticleService {
	return &ArticleService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// List retrieves published articles
func (s *ArticleService) List(ctx context.Context, filter repositories.ArticleFilter) ([]*entities.Article, error) {
	if filter.Status == "" {
		filter.Status = entities.ArticleStatusPublished
	}
	return s.repo.List(ctx, filter)
}

// GetBySlug retrieves an article by slug
func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*entities.Article, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Search searches published articles using the search engine if available,
// falling back to a title match over the database.
func (s *ArticleService) Search(ctx context.Context, query string, limit int) ([]*entities.Article, error) {
	if s.searchRepo != nil {
		return s.searchRepo.Search(ctx, query, limit)
	}

	articles, err := s.repo.List(ctx, repositories.ArticleFilter{Status: entities.ArticleStatusPublished})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := []*entities.Article{}
	for _, article := range articles {
		if strings.Contains(strings.ToLower(article.Title), needle) {
			matched = append(matched, article)
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}
