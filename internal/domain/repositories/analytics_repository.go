package repositories

import (
	"context"
	"time"

	"github.com/dentara/backend/internal/domain/entities"
)

// AnalyticsRepository is the read-only reporting surface over the event logs
// and reference tables. It never writes; data lifecycles are owned by the
// ingestion endpoints.
type AnalyticsRepository interface {
	// Headline counters (all-time).
	CountPublishedArticles(ctx context.Context) (int64, error)
	CountProfiles(ctx context.Context) (int64, error)
	CountChatSessions(ctx context.Context) (int64, error)
	CountProfessionalUsers(ctx context.Context) (int64, error)
	CountApprovedVerifications(ctx context.Context) (int64, error)

	// Period-scoped counters.
	CountArticleViews(ctx context.Context, period entities.Period) (int64, error)
	CountChatSessionsInPeriod(ctx context.Context, period entities.Period) (int64, error)
	CountProfessionalPageVisits(ctx context.Context, period entities.Period) (int64, error)
	CountProfessionalSignups(ctx context.Context, period entities.Period) (int64, error)
	CountActiveUsers(ctx context.Context, period entities.Period) (int64, error)

	// Row sets for in-memory aggregation.
	ArticleViewSlugs(ctx context.Context, period entities.Period) ([]string, error)
	SearchQueries(ctx context.Context, period entities.Period) ([]string, error)
	VerificationsInPeriod(ctx context.Context, period entities.Period) ([]*entities.ProfessionalVerification, error)

	// DailyArticleViews returns per-day view counts within the period,
	// grouped in the database, ordered oldest first. Days with no views are
	// absent from the result; the service zero-fills them.
	DailyArticleViews(ctx context.Context, period entities.Period) ([]entities.DailyCount, error)

	// RecentSessions returns the newest chat sessions since the given time,
	// joined with the owning profile.
	RecentSessions(ctx context.Context, since time.Time, limit int) ([]entities.SessionActivity, error)
}
