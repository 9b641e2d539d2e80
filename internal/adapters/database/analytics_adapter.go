package database

import (
	"context"
	"time"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dentara/backend/pkg/errors"
	"github.com/doug-martin/goqu/v9"
)

// AnalyticsAdapter implements the AnalyticsRepository interface. All methods
// are single queries; aggregation across queries happens in the service.
type AnalyticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAnalyticsAdapter creates a new analytics adapter
func NewAnalyticsAdapter(client *postgres.Client) repositories.AnalyticsRepository {
	return &AnalyticsAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CountPublishedArticles counts articles with published status.
func (a *AnalyticsAdapter) CountPublishedArticles(ctx context.Context) (int64, error) {
	return a.count(ctx, a.db.From("articles").Where(goqu.Ex{"status": entities.ArticleStatusPublished}))
}

// CountProfiles counts all user profiles.
func (a *AnalyticsAdapter) CountProfiles(ctx context.Context) (int64, error) {
	return a.count(ctx, a.db.From("profiles"))
}

// CountChatSessions counts all chat sessions.
func (a *AnalyticsAdapter) CountChatSessions(ctx context.Context) (int64, error) {
	return a.count(ctx, a.db.From("chat_sessions"))
}

// CountProfessionalUsers counts profiles with the professional user type.
func (a *AnalyticsAdapter) CountProfessionalUsers(ctx context.Context) (int64, error) {
	return a.count(ctx, a.db.From("profiles").Where(goqu.Ex{"user_type": entities.UserTypeProfessional}))
}

// CountApprovedVerifications counts approved professional verifications.
func (a *AnalyticsAdapter) CountApprovedVerifications(ctx context.Context) (int64, error) {
	return a.count(ctx, a.db.From("professional_verifications").
		Where(goqu.Ex{"status": entities.VerificationStatusApproved}))
}

// CountArticleViews counts article views inside the period.
func (a *AnalyticsAdapter) CountArticleViews(ctx context.Context, period entities.Period) (int64, error) {
	return a.count(ctx, a.db.From("article_views").
		Where(betweenEx("viewed_at", period)))
}

// CountChatSessionsInPeriod counts chat sessions created inside the period.
func (a *AnalyticsAdapter) CountChatSessionsInPeriod(ctx context.Context, period entities.Period) (int64, error) {
	return a.count(ctx, a.db.From("chat_sessions").
		Where(betweenEx("created_at", period)))
}

// CountProfessionalPageVisits counts activity log rows for the professional
// landing page inside the period.
func (a *AnalyticsAdapter) CountProfessionalPageVisits(ctx context.Context, period entities.Period) (int64, error) {
	return a.count(ctx, a.db.From("activity_logs").
		Where(goqu.Ex{"resource_type": "professional_page"}).
		Where(betweenEx("created_at", period)))
}

// CountProfessionalSignups counts professional profiles created inside the
// period.
func (a *AnalyticsAdapter) CountProfessionalSignups(ctx context.Context, period entities.Period) (int64, error) {
	return a.count(ctx, a.db.From("profiles").
		Where(goqu.Ex{"user_type": entities.UserTypeProfessional}).
		Where(betweenEx("created_at", period)))
}

// CountActiveUsers counts distinct users with a chat session inside the
// period.
func (a *AnalyticsAdapter) CountActiveUsers(ctx context.Context, period entities.Period) (int64, error) {
	ds := a.db.From("chat_sessions").
		Select(goqu.COUNT(goqu.DISTINCT("user_id"))).
		Where(betweenEx("created_at", period))

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count active users", err)
	}
	return count, nil
}

// ArticleViewSlugs returns the slug of every article view inside the period,
// one element per view.
func (a *AnalyticsAdapter) ArticleViewSlugs(ctx context.Context, period entities.Period) ([]string, error) {
	query, args, err := a.db.From("article_views").
		Select("article_slug").
		Where(betweenEx("viewed_at", period)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build view slugs query", err)
	}

	return a.queryStrings(ctx, query, args, "article view slugs")
}

// SearchQueries returns the raw query of every web search inside the period.
func (a *AnalyticsAdapter) SearchQueries(ctx context.Context, period entities.Period) ([]string, error) {
	query, args, err := a.db.From("web_searches").
		Select("query").
		Where(betweenEx("created_at", period)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search queries query", err)
	}

	return a.queryStrings(ctx, query, args, "search queries")
}

// VerificationsInPeriod returns verifications created inside the period.
func (a *AnalyticsAdapter) VerificationsInPeriod(ctx context.Context, period entities.Period) ([]*entities.ProfessionalVerification, error) {
	query, args, err := a.db.From("professional_verifications").
		Select("id", "profile_id", "status", "created_at", "approved_at").
		Where(betweenEx("created_at", period)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build verifications query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get verifications", err)
	}
	defer rows.Close()

	var verifications []*entities.ProfessionalVerification
	for rows.Next() {
		v := &entities.ProfessionalVerification{}
		if err := rows.Scan(&v.ID, &v.ProfileID, &v.Status, &v.CreatedAt, &v.ApprovedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan verification", err)
		}
		verifications = append(verifications, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read verifications", err)
	}

	return verifications, nil
}

// DailyArticleViews groups views per day in the database. Days with no views
// produce no row; ordering is oldest first.
func (a *AnalyticsAdapter) DailyArticleViews(ctx context.Context, period entities.Period) ([]entities.DailyCount, error) {
	day := goqu.L("date_trunc('day', viewed_at)")

	query, args, err := a.db.From("article_views").
		Select(day.As("day"), goqu.COUNT("*").As("views")).
		Where(betweenEx("viewed_at", period)).
		GroupBy(day).
		Order(goqu.I("day").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build daily views query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get daily views", err)
	}
	defer rows.Close()

	var counts []entities.DailyCount
	for rows.Next() {
		var c entities.DailyCount
		if err := rows.Scan(&c.Date, &c.Views); err != nil {
			return nil, apperrors.NewInternalError("failed to scan daily views", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read daily views", err)
	}

	return counts, nil
}

// RecentSessions returns the newest chat sessions since the given time,
// joined with the owning profile.
func (a *AnalyticsAdapter) RecentSessions(ctx context.Context, since time.Time, limit int) ([]entities.SessionActivity, error) {
	if limit <= 0 {
		limit = 10
	}

	query, args, err := a.db.From(goqu.T("chat_sessions").As("cs")).
		Select(
			goqu.I("cs.id"),
			goqu.I("p.email"),
			goqu.I("p.user_type"),
			goqu.I("cs.created_at"),
		).
		Join(goqu.T("profiles").As("p"), goqu.On(goqu.I("cs.user_id").Eq(goqu.I("p.id")))).
		Where(goqu.I("cs.created_at").Gte(since)).
		Order(goqu.I("cs.created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build recent sessions query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get recent sessions", err)
	}
	defer rows.Close()

	var sessions []entities.SessionActivity
	for rows.Next() {
		var s entities.SessionActivity
		if err := rows.Scan(&s.ID, &s.UserEmail, &s.UserType, &s.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan recent session", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read recent sessions", err)
	}

	return sessions, nil
}

func (a *AnalyticsAdapter) count(ctx context.Context, ds *goqu.SelectDataset) (int64, error) {
	query, args, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to run count query", err)
	}
	return count, nil
}

func (a *AnalyticsAdapter) queryStrings(ctx context.Context, query string, args []interface{}, what string) ([]string, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get "+what, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, apperrors.NewInternalError("failed to scan "+what, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read "+what, err)
	}

	return values, nil
}

func betweenEx(column string, period entities.Period) goqu.Expression {
	return goqu.And(
		goqu.C(column).Gte(period.Start),
		goqu.C(column).Lte(period.End),
	)
}
