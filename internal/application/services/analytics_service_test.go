package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentara/backend/internal/application/services"
	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/pkg/config"
)

// stubAnalyticsRepo returns canned values; individual queries can be made to
// fail by setting the matching error.
type stubAnalyticsRepo struct {
	publishedArticles     int64
	profiles              int64
	chatSessions          int64
	professionalUsers     int64
	approvedVerifications int64
	articleViews          map[string]int64 // keyed by period start date
	chatSessionsInPeriod  int64
	profPageVisits        int64
	profSignups           map[string]int64
	activeUsers           int64
	viewSlugs             []string
	searchQueries         []string
	verifications         []*entities.ProfessionalVerification
	daily                 []entities.DailyCount
	recent                []entities.SessionActivity

	viewSlugsErr error
	dailyErr     error
	viewsErr     error
}

func (s *stubAnalyticsRepo) CountPublishedArticles(ctx context.Context) (int64, error) {
	return s.publishedArticles, nil
}
func (s *stubAnalyticsRepo) CountProfiles(ctx context.Context) (int64, error) {
	return s.profiles, nil
}
func (s *stubAnalyticsRepo) CountChatSessions(ctx context.Context) (int64, error) {
	return s.chatSessions, nil
}
func (s *stubAnalyticsRepo) CountProfessionalUsers(ctx context.Context) (int64, error) {
	return s.professionalUsers, nil
}
func (s *stubAnalyticsRepo) CountApprovedVerifications(ctx context.Context) (int64, error) {
	return s.approvedVerifications, nil
}
func (s *stubAnalyticsRepo) CountArticleViews(ctx context.Context, period entities.Period) (int64, error) {
	if s.viewsErr != nil {
		return 0, s.viewsErr
	}
	return s.articleViews[period.Start.Format("2006-01-02")], nil
}
func (s *stubAnalyticsRepo) CountChatSessionsInPeriod(ctx context.Context, period entities.Period) (int64, error) {
	return s.chatSessionsInPeriod, nil
}
func (s *stubAnalyticsRepo) CountProfessionalPageVisits(ctx context.Context, period entities.Period) (int64, error) {
	return s.profPageVisits, nil
}
func (s *stubAnalyticsRepo) CountProfessionalSignups(ctx context.Context, period entities.Period) (int64, error) {
	return s.profSignups[period.Start.Format("2006-01-02")], nil
}
func (s *stubAnalyticsRepo) CountActiveUsers(ctx context.Context, period entities.Period) (int64, error) {
	return s.activeUsers, nil
}
func (s *stubAnalyticsRepo) ArticleViewSlugs(ctx context.Context, period entities.Period) ([]string, error) {
	if s.viewSlugsErr != nil {
		return nil, s.viewSlugsErr
	}
	return s.viewSlugs, nil
}
func (s *stubAnalyticsRepo) SearchQueries(ctx context.Context, period entities.Period) ([]string, error) {
	return s.searchQueries, nil
}
func (s *stubAnalyticsRepo) VerificationsInPeriod(ctx context.Context, period entities.Period) ([]*entities.ProfessionalVerification, error) {
	return s.verifications, nil
}
func (s *stubAnalyticsRepo) DailyArticleViews(ctx context.Context, period entities.Period) ([]entities.DailyCount, error) {
	if s.dailyErr != nil {
		return nil, s.dailyErr
	}
	return s.daily, nil
}
func (s *stubAnalyticsRepo) RecentSessions(ctx context.Context, since time.Time, limit int) ([]entities.SessionActivity, error) {
	return s.recent, nil
}

type stubArticleRepo struct {
	bySlug map[string]*entities.Article
}

func (s *stubArticleRepo) List(ctx context.Context, filter repositories.ArticleFilter) ([]*entities.Article, error) {
	return nil, nil
}
func (s *stubArticleRepo) GetBySlug(ctx context.Context, slug string) (*entities.Article, error) {
	return s.bySlug[slug], nil
}
func (s *stubArticleRepo) GetBySlugs(ctx context.Context, slugs []string) ([]*entities.Article, error) {
	var articles []*entities.Article
	for _, slug := range slugs {
		if a, ok := s.bySlug[slug]; ok {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		DefaultWindowDays: 7,
		MaxWindowDays:     365,
		Heuristics: config.Heuristics{
			RevenuePerView:     0.002,
			ReadingWordsPerMin: 200,
			ScrollDepthPct:     65,
			DefaultAvgReadMin:  3.5,
		},
	}
}

func TestComputePeriods_WindowBounds(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	current, previous := services.ComputePeriods(now, 7)

	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), current.Start)
	assert.Equal(t, 10, current.End.Day())
	assert.Equal(t, 23, current.End.Hour())

	assert.Equal(t, time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), previous.Start)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), previous.End)
}

func TestComputePeriods_PeriodsAreAdjacent(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	for _, days := range []int{1, 7, 30, 90} {
		current, previous := services.ComputePeriods(now, days)
		assert.Equal(t, previous.End, current.Start.AddDate(0, 0, -1),
			"previous window should sit immediately before current for days=%d", days)
		assert.True(t, previous.End.Before(current.Start))
	}
}

func TestCountByKey(t *testing.T) {
	counts := services.CountByKey([]string{"a", "b", "a", "a", "c", "b"})
	assert.Equal(t, map[string]int{"a": 3, "b": 2, "c": 1}, counts)

	assert.Empty(t, services.CountByKey(nil))
}

func TestTopN_OrderingAndLimit(t *testing.T) {
	counts := map[string]int{
		"tooth-decay":   12,
		"gum-disease":   3,
		"dental-crown":  8,
		"root-canal":    8,
		"teeth-grind":   1,
		"wisdom-teeth":  5,
		"dental-bridge": 2,
	}

	top := services.TopN(counts, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "tooth-decay", top[0].Key)
	assert.Equal(t, 12, top[0].Count)

	// Counts never increase down the list
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Count, top[i].Count)
	}

	// Equal counts resolve alphabetically
	assert.Equal(t, "dental-crown", top[1].Key)
	assert.Equal(t, "root-canal", top[2].Key)
}

func TestTopN_Deterministic(t *testing.T) {
	counts := services.CountByKey([]string{"b", "a", "c", "a", "c", "b"})
	first := services.TopN(counts, 10)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, services.TopN(counts, 10))
	}
}

func TestTopN_EmptyInput(t *testing.T) {
	assert.Empty(t, services.TopN(map[string]int{}, 10))
	assert.Empty(t, services.TopN(nil, 10))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 0.0, services.PercentChange(0, 0))
	assert.Equal(t, 0.0, services.PercentChange(5, 0))
	assert.Equal(t, 100.0, services.PercentChange(10, 5))
	assert.Equal(t, -50.0, services.PercentChange(5, 10))
	assert.Equal(t, 0.0, services.PercentChange(7, 7))
}

func TestGetReport_AssemblesBasicData(t *testing.T) {
	repo := &stubAnalyticsRepo{
		publishedArticles: 42,
		profiles:          100,
		chatSessions:      25,
		viewSlugs: append(
			repeat("tooth-decay", 12),
			repeat("gum-disease", 3)...,
		),
		searchQueries: []string{"implants", "implants", "braces"},
	}
	articles := &stubArticleRepo{bySlug: map[string]*entities.Article{
		"tooth-decay": {ID: "a1", Title: "Tooth Decay", Slug: "tooth-decay", Category: "conditions", Content: "words words words"},
		"gum-disease": {ID: "a2", Title: "Gum Disease", Slug: "gum-disease", Category: "conditions"},
	}}

	svc := services.NewAnalyticsService(repo, articles, testConfig())
	report, err := svc.GetReport(context.Background(), 7)

	require.NoError(t, err)
	assert.Empty(t, report.Degraded)

	assert.Equal(t, int64(42), report.BasicData.Overview.TotalArticles)
	assert.Equal(t, int64(100), report.BasicData.Overview.TotalUsers)

	require.Len(t, report.BasicData.PopularArticles, 2)
	assert.Equal(t, "tooth-decay", report.BasicData.PopularArticles[0].Slug)
	assert.Equal(t, 12, report.BasicData.PopularArticles[0].Count)
	assert.Equal(t, "gum-disease", report.BasicData.PopularArticles[1].Slug)
	assert.Equal(t, 3, report.BasicData.PopularArticles[1].Count)

	require.Len(t, report.BasicData.TopSearches, 2)
	assert.Equal(t, "implants", report.BasicData.TopSearches[0].Term)
	assert.Equal(t, 2, report.BasicData.TopSearches[0].Count)

	// One entry per day of the window even with no view rows at all
	assert.Len(t, report.BasicData.DailyViews, 7)
}

func TestGetReport_DailyViewsZeroFilled(t *testing.T) {
	today := time.Now()
	repo := &stubAnalyticsRepo{
		daily: []entities.DailyCount{
			{Date: today.AddDate(0, 0, -2), Views: 4},
			{Date: today, Views: 9},
		},
	}
	svc := services.NewAnalyticsService(repo, &stubArticleRepo{}, testConfig())

	report, err := svc.GetReport(context.Background(), 7)
	require.NoError(t, err)

	daily := report.BasicData.DailyViews
	require.Len(t, daily, 7)

	// Oldest first, newest last
	assert.Equal(t, int64(0), daily[0].Views)
	assert.Equal(t, int64(4), daily[4].Views)
	assert.Equal(t, int64(9), daily[6].Views)

	var total int64
	for _, d := range daily {
		total += d.Views
	}
	assert.Equal(t, int64(13), total)
}

func TestGetReport_InvalidDaysFallsBackToDefault(t *testing.T) {
	svc := services.NewAnalyticsService(&stubAnalyticsRepo{}, &stubArticleRepo{}, testConfig())

	for _, days := range []int{0, -5} {
		report, err := svc.GetReport(context.Background(), days)
		require.NoError(t, err)
		assert.Len(t, report.BasicData.DailyViews, 7, "days=%d should use the default window", days)
	}
}

func TestGetReport_OversizedWindowClamped(t *testing.T) {
	svc := services.NewAnalyticsService(&stubAnalyticsRepo{}, &stubArticleRepo{}, testConfig())

	report, err := svc.GetReport(context.Background(), 10000)
	require.NoError(t, err)
	assert.Len(t, report.BasicData.DailyViews, 365)
}

func TestGetReport_FailedQueriesDegradeToZero(t *testing.T) {
	repo := &stubAnalyticsRepo{
		publishedArticles: 10,
		viewsErr:          errors.New("relation does not exist"),
		viewSlugsErr:      errors.New("timeout"),
		dailyErr:          errors.New("timeout"),
	}
	svc := services.NewAnalyticsService(repo, &stubArticleRepo{}, testConfig())

	report, err := svc.GetReport(context.Background(), 7)
	require.NoError(t, err)

	// Failures render as zeros, not as a failed report
	assert.Equal(t, int64(0), report.BasicData.Overview.TotalViews)
	assert.Empty(t, report.BasicData.PopularArticles)
	assert.Len(t, report.BasicData.DailyViews, 7)
	assert.Equal(t, int64(10), report.BasicData.Overview.TotalArticles)

	assert.Contains(t, report.Degraded, "totalViews")
	assert.Contains(t, report.Degraded, "previousViews")
	assert.Contains(t, report.Degraded, "viewSlugs")
	assert.Contains(t, report.Degraded, "dailyViews")
	assert.NotContains(t, report.Degraded, "totalArticles")
}

func TestGetReport_ContentPerformanceHeuristics(t *testing.T) {
	repo := &stubAnalyticsRepo{
		viewSlugs: repeat("tooth-decay", 150),
	}
	articles := &stubArticleRepo{bySlug: map[string]*entities.Article{
		"tooth-decay": {ID: "a1", Title: "Tooth Decay", Slug: "tooth-decay", Category: "conditions", Content: wordString(400)},
	}}
	svc := services.NewAnalyticsService(repo, articles, testConfig())

	report, err := svc.GetReport(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, report.ContentPerformance, 1)
	perf := report.ContentPerformance[0]
	assert.Equal(t, 150, perf.Views)
	assert.Equal(t, 100, perf.EngagementScore, "engagement caps at 100")
	assert.InDelta(t, 0.3, perf.RevenueValue, 0.0001)
	assert.InDelta(t, 2.0, perf.AvgTimeOnPage, 0.0001, "400 words at 200 wpm")
	assert.Equal(t, 65, perf.ScrollDepth)
}

func TestGetReport_VerificationFunnel(t *testing.T) {
	created := time.Now().AddDate(0, 0, -3)
	approved := created.AddDate(0, 0, 2)

	repo := &stubAnalyticsRepo{
		profPageVisits:        50,
		approvedVerifications: 7,
		verifications: []*entities.ProfessionalVerification{
			{ID: "v1", Status: entities.VerificationStatusPending, CreatedAt: created},
			{ID: "v2", Status: entities.VerificationStatusSubmitted, CreatedAt: created},
			{ID: "v3", Status: entities.VerificationStatusApproved, CreatedAt: created, ApprovedAt: &approved},
		},
	}
	svc := services.NewAnalyticsService(repo, &stubArticleRepo{}, testConfig())

	report, err := svc.GetReport(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(50), report.FunnelData.Visitors)
	assert.Equal(t, 3, report.FunnelData.VerificationStarted)
	assert.Equal(t, 2, report.FunnelData.VerificationSubmitted)
	assert.Equal(t, 1, report.FunnelData.Verified)
	assert.Equal(t, int64(7), report.FunnelData.ActiveSubscribers)

	// verified/submitted, rounded
	assert.Equal(t, 50, report.RevenueMetrics.ProfessionalConversions.VerificationRate)
	assert.Equal(t, 2, report.RevenueMetrics.ProfessionalConversions.AvgTimeToConvert)
}

func TestGetFunnel_FallsBackToTotalViewsForVisitors(t *testing.T) {
	repo := &stubAnalyticsRepo{
		articleViews: map[string]int64{
			time.Now().AddDate(0, 0, -6).Format("2006-01-02"): 900,
		},
	}
	svc := services.NewAnalyticsService(repo, &stubArticleRepo{}, testConfig())

	funnel, err := svc.GetFunnel(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(900), funnel.Visitors)
}

// reportQueryRecorder notes calls to the queries only the full report needs.
type reportQueryRecorder struct {
	*stubAnalyticsRepo
	mu    sync.Mutex
	calls []string
}

func (r *reportQueryRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *reportQueryRecorder) DailyArticleViews(ctx context.Context, period entities.Period) ([]entities.DailyCount, error) {
	r.record("DailyArticleViews")
	return r.stubAnalyticsRepo.DailyArticleViews(ctx, period)
}

func (r *reportQueryRecorder) RecentSessions(ctx context.Context, since time.Time, limit int) ([]entities.SessionActivity, error) {
	r.record("RecentSessions")
	return r.stubAnalyticsRepo.RecentSessions(ctx, since, limit)
}

func (r *reportQueryRecorder) ArticleViewSlugs(ctx context.Context, period entities.Period) ([]string, error) {
	r.record("ArticleViewSlugs")
	return r.stubAnalyticsRepo.ArticleViewSlugs(ctx, period)
}

func (r *reportQueryRecorder) SearchQueries(ctx context.Context, period entities.Period) ([]string, error) {
	r.record("SearchQueries")
	return r.stubAnalyticsRepo.SearchQueries(ctx, period)
}

func (r *reportQueryRecorder) CountProfiles(ctx context.Context) (int64, error) {
	r.record("CountProfiles")
	return r.stubAnalyticsRepo.CountProfiles(ctx)
}

func TestGetFunnel_SkipsReportOnlyQueries(t *testing.T) {
	approved := time.Now().AddDate(0, 0, -1)
	repo := &reportQueryRecorder{stubAnalyticsRepo: &stubAnalyticsRepo{
		profPageVisits:        1000,
		approvedVerifications: 12,
		profSignups: map[string]int64{
			time.Now().AddDate(0, 0, -6).Format("2006-01-02"): 40,
		},
		verifications: []*entities.ProfessionalVerification{
			{Status: entities.VerificationStatusApproved, ApprovedAt: &approved},
		},
	}}
	svc := services.NewAnalyticsService(repo, &stubArticleRepo{}, testConfig())

	funnel, err := svc.GetFunnel(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), funnel.Visitors)
	assert.Equal(t, int64(40), funnel.Signups)
	assert.Equal(t, 1, funnel.Verified)
	assert.Equal(t, int64(12), funnel.ActiveSubscribers)
	assert.Empty(t, repo.calls)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func wordString(n int) string {
	out := make([]byte, 0, n*5)
	for i := 0; i < n; i++ {
		out = append(out, "word "...)
	}
	return string(out)
}
