package repositories

import (
	"context"

	"github.com/dentara/backend/internal/domain/entities"
)

// SearchLogRepository appends to the web search log that feeds the
// top-searches aggregation.
type SearchLogRepository interface {
	LogSearch(ctx context.Context, search *entities.WebSearch) error
}
