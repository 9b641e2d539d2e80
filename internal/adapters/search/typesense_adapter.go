package search

import (
	"context"
	"fmt"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	tsclient "github.com/dentara/backend/internal/infrastructure/clients/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

const collectionName = "articles"

// TypesenseAdapter implements article search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements ArticleSearchRepository
var _ repositories.ArticleSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "slug", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "content", Type: "string", Optional: pointer.True()},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts one article into the search index
func (a *TypesenseAdapter) Index(ctx context.Context, article *entities.Article) error {
	document := map[string]interface{}{
		"id":         article.ID,
		"slug":       article.Slug,
		"title":      article.Title,
		"category":   article.Category,
		"content":    article.Content,
		"status":     article.Status,
		"created_at": article.CreatedAt.Unix(),
	}

	if err := a.client.IndexArticle(ctx, document); err != nil {
		return fmt.Errorf("failed to index article: %w", err)
	}

	return nil
}

// Delete removes an article from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete article from index: %w", err)
	}
	return nil
}

// Search runs a full-text query over published articles
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Article, error) {
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("title,content"),
		FilterBy: pointer.String(fmt.Sprintf("status:=%s", entities.ArticleStatusPublished)),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}

	articles := []*entities.Article{}
	if result.Hits == nil {
		return articles, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		// Typesense returns map[string]interface{}, so cast defensively
		article := &entities.Article{}
		if val, ok := doc["id"].(string); ok {
			article.ID = val
		}
		if val, ok := doc["slug"].(string); ok {
			article.Slug = val
		}
		if val, ok := doc["title"].(string); ok {
			article.Title = val
		}
		if val, ok := doc["category"].(string); ok {
			article.Category = val
		}
		if val, ok := doc["status"].(string); ok {
			article.Status = val
		}

		articles = append(articles, article)
	}

	return articles, nil
}
