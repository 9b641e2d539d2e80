package database

import (
	"context"
	"time"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dentara/backend/pkg/errors"
	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// SearchLogAdapter implements the SearchLogRepository interface
type SearchLogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchLogAdapter creates a new search log adapter
func NewSearchLogAdapter(client *postgres.Client) repositories.SearchLogRepository {
	return &SearchLogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LogSearch appends one row to the web search log.
func (a *SearchLogAdapter) LogSearch(ctx context.Context, search *entities.WebSearch) error {
	if search.ID == "" {
		search.ID = uuid.New().String()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":         search.ID,
		"query":      search.Query,
		"created_at": search.CreatedAt,
	}

	query, args, err := a.db.Insert("web_searches").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build search insert", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to log search", err)
	}

	return nil
}
