package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentara/backend/internal/adapters/database"
	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
)

func setupAnalyticsAdapter(t *testing.T) (repositories.AnalyticsRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewAnalyticsAdapter(postgres.NewClientFromDB(db)), mock
}

func testPeriod() entities.Period {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return entities.Period{Start: start, End: start.AddDate(0, 0, 7)}
}

func TestAnalyticsAdapter_CountArticleViews(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "article_views"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := adapter.CountArticleViews(context.Background(), testPeriod())

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAdapter_CountPublishedArticles_FiltersStatus(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "articles" WHERE \("status" = 'published'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := adapter.CountPublishedArticles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAdapter_CountActiveUsers_Distinct(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT.+ FROM "chat_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	count, err := adapter.CountActiveUsers(context.Background(), testPeriod())

	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAdapter_ArticleViewSlugs(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	mock.ExpectQuery(`SELECT "article_slug" FROM "article_views"`).
		WillReturnRows(sqlmock.NewRows([]string{"article_slug"}).
			AddRow("tooth-decay").
			AddRow("tooth-decay").
			AddRow("gum-disease"))

	slugs, err := adapter.ArticleViewSlugs(context.Background(), testPeriod())

	require.NoError(t, err)
	assert.Equal(t, []string{"tooth-decay", "tooth-decay", "gum-disease"}, slugs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAdapter_DailyArticleViews(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT date_trunc\('day', viewed_at\) AS "day", COUNT\(\*\) AS "views" FROM "article_views"`).
		WillReturnRows(sqlmock.NewRows([]string{"day", "views"}).
			AddRow(day1, 5).
			AddRow(day2, 2))

	counts, err := adapter.DailyArticleViews(context.Background(), testPeriod())

	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, day1, counts[0].Date)
	assert.Equal(t, int64(5), counts[0].Views)
	assert.Equal(t, day2, counts[1].Date)
	assert.Equal(t, int64(2), counts[1].Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAdapter_RecentSessions_JoinsProfiles(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	createdAt := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT "cs"\."id", "p"\."email", "p"\."user_type", "cs"\."created_at" FROM "chat_sessions" AS "cs" INNER JOIN "profiles" AS "p"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "user_type", "created_at"}).
			AddRow("session-1", "pat@example.com", entities.UserTypePatient, createdAt))

	sessions, err := adapter.RecentSessions(context.Background(), createdAt.AddDate(0, 0, -7), 20)

	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session-1", sessions[0].ID)
	assert.Equal(t, "pat@example.com", sessions[0].UserEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAdapter_VerificationsInPeriod_NullApprovedAt(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	createdAt := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	approvedAt := createdAt.AddDate(0, 0, 3)

	mock.ExpectQuery(`SELECT "id", "profile_id", "status", "created_at", "approved_at" FROM "professional_verifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "status", "created_at", "approved_at"}).
			AddRow("v-1", "p-1", entities.VerificationStatusApproved, createdAt, approvedAt).
			AddRow("v-2", "p-2", entities.VerificationStatusSubmitted, createdAt, nil))

	verifications, err := adapter.VerificationsInPeriod(context.Background(), testPeriod())

	require.NoError(t, err)
	require.Len(t, verifications, 2)
	require.NotNil(t, verifications[0].ApprovedAt)
	assert.Equal(t, approvedAt, *verifications[0].ApprovedAt)
	assert.Nil(t, verifications[1].ApprovedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAdapter_CountArticleViews_QueryError(t *testing.T) {
	adapter, mock := setupAnalyticsAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "article_views"`).
		WillReturnError(errors.New("connection reset"))

	_, err := adapter.CountArticleViews(context.Background(), testPeriod())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
