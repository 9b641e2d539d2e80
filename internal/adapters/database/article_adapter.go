package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dentara/backend/pkg/errors"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
)

var articleColumns = []interface{}{
	"id", "slug", "title", "category", "content", "status", "created_at", "updated_at",
}

// ArticleAdapter implements the ArticleRepository interface
type ArticleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewArticleAdapter creates a new article adapter
func NewArticleAdapter(client *postgres.Client) repositories.ArticleRepository {
	return &ArticleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List returns articles matching the filter, newest first.
func (a *ArticleAdapter) List(ctx context.Context, filter repositories.ArticleFilter) ([]*entities.Article, error) {
	ds := a.db.Select(articleColumns...).
		From("articles").
		Order(goqu.I("created_at").Desc())

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.Category != "" {
		ds = ds.Where(goqu.Ex{"category": filter.Category})
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build article list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list articles", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetBySlug retrieves an article by slug
func (a *ArticleAdapter) GetBySlug(ctx context.Context, slug string) (*entities.Article, error) {
	query, args, err := a.db.Select(articleColumns...).
		From("articles").
		Where(goqu.Ex{"slug": slug}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build article query", err)
	}

	article := &entities.Article{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&article.ID,
		&article.Slug,
		&article.Title,
		&article.Category,
		&article.Content,
		&article.Status,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("article with slug %s not found", slug))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get article", err)
	}

	return article, nil
}

// GetBySlugs retrieves multiple articles by their slugs
func (a *ArticleAdapter) GetBySlugs(ctx context.Context, slugs []string) ([]*entities.Article, error) {
	if len(slugs) == 0 {
		return []*entities.Article{}, nil
	}

	query, args, err := a.db.Select(articleColumns...).
		From("articles").
		Where(goqu.Ex{"slug": slugs}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build article query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get articles by slugs", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]*entities.Article, error) {
	var articles []*entities.Article
	for rows.Next() {
		article := &entities.Article{}
		err := rows.Scan(
			&article.ID,
			&article.Slug,
			&article.Title,
			&article.Category,
			&article.Content,
			&article.Status,
			&article.CreatedAt,
			&article.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan article", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read articles", err)
	}
	return articles, nil
}

// ArticleViewAdapter implements the ArticleViewRepository interface
type ArticleViewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewArticleViewAdapter creates a new article view adapter
func NewArticleViewAdapter(client *postgres.Client) repositories.ArticleViewRepository {
	return &ArticleViewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LogView appends one row to the view log.
func (a *ArticleViewAdapter) LogView(ctx context.Context, view *entities.ArticleView) error {
	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}

	record := goqu.Record{
		"id":           view.ID,
		"article_slug": view.ArticleSlug,
		"session_id":   sql.NullString{String: view.SessionID, Valid: view.SessionID != ""},
		"viewed_at":    view.ViewedAt,
	}

	query, args, err := a.db.Insert("article_views").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build view insert", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to log article view", err)
	}

	return nil
}
