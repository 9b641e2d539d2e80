package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/pkg/config"
)

// Articles whose content column is empty are assumed to be this long when
// estimating read time.
const fallbackWordCount = 1000

const (
	popularArticleLimit     = 10
	topSearchLimit          = 10
	contentPerformanceLimit = 20
	recentActivityLimit     = 20
)

// AnalyticsService aggregates the raw event logs into the admin dashboard
// report. Individual query failures degrade to zero values; the report notes
// which metrics were affected.
type AnalyticsService struct {
	repo     repositories.AnalyticsRepository
	articles repositories.ArticleRepository
	cfg      config.AnalyticsConfig
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repositories.AnalyticsRepository, articles repositories.ArticleRepository, cfg config.AnalyticsConfig) *AnalyticsService {
	return &AnalyticsService{
		repo:     repo,
		articles: articles,
		cfg:      cfg,
		now:      time.Now,
	}
}

// NormalizeDays coerces the requested window to a usable value: non-positive
// falls back to the default, oversized windows are clamped.
func (s *AnalyticsService) NormalizeDays(days int) int {
	if days <= 0 {
		return s.cfg.DefaultWindowDays
	}
	if days > s.cfg.MaxWindowDays {
		return s.cfg.MaxWindowDays
	}
	return days
}

// ComputePeriods returns the current reporting window and the window of equal
// length immediately before it. The current window runs from the start of the
// day (days-1) days ago through the end of today.
func ComputePeriods(now time.Time, days int) (current, previous entities.Period) {
	current = entities.Period{
		Start: startOfDay(now.AddDate(0, 0, -(days - 1))),
		End:   endOfDay(now),
	}
	previous = entities.Period{
		Start: startOfDay(now.AddDate(0, 0, -(days*2 - 1))),
		End:   startOfDay(now.AddDate(0, 0, -days)),
	}
	return current, previous
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// CountByKey tallies occurrences per key.
func CountByKey(keys []string) map[string]int {
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		counts[k]++
	}
	return counts
}

// TopN returns the n highest-count keys, count descending. Ties are broken by
// lexical ascending order of the key so repeated runs over the same data
// produce the same list.
func TopN(counts map[string]int, n int) []entities.KeyCount {
	ranked := make([]entities.KeyCount, 0, len(counts))
	for key, count := range counts {
		ranked = append(ranked, entities.KeyCount{Key: key, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PercentChange returns the percentage change from previous to current. A
// zero or negative baseline yields 0, not an error; the dashboard renders a
// flat change for brand-new metrics.
func PercentChange(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	return 0
}

func roundPct(v float64) int {
	return int(math.Round(v))
}

// reportData carries every fetch result for one report. Each field is written
// by exactly one goroutine during the fan-out.
type reportData struct {
	totalArticles     entities.Metric
	totalUsers        entities.Metric
	totalSessions     entities.Metric
	totalViews        entities.Metric
	prevViews         entities.Metric
	profVisitors      entities.Metric
	profSignups       entities.Metric
	prevProfSignups   entities.Metric
	activeSubscribers entities.Metric
	chatSessions      entities.Metric
	activeUsers       entities.Metric
	professionalUsers entities.Metric

	viewSlugs    []string
	viewSlugsErr error

	searchQueries    []string
	searchQueriesErr error

	daily    []entities.DailyCount
	dailyErr error

	recent    []entities.SessionActivity
	recentErr error

	verifications    []*entities.ProfessionalVerification
	verificationsErr error

	prevVerifications    []*entities.ProfessionalVerification
	prevVerificationsErr error
}

// fetch runs every report query concurrently and waits for all of them.
// Failed queries are recorded, not propagated: one slow or broken table must
// not blank the whole dashboard.
func (s *AnalyticsService) fetch(ctx context.Context, current, previous entities.Period) *reportData {
	data := &reportData{}

	var wg sync.WaitGroup
	metric := metricFetcher(ctx, &wg)

	metric(&data.totalArticles, s.repo.CountPublishedArticles)
	metric(&data.totalUsers, s.repo.CountProfiles)
	metric(&data.totalSessions, s.repo.CountChatSessions)
	metric(&data.professionalUsers, s.repo.CountProfessionalUsers)
	metric(&data.activeSubscribers, s.repo.CountApprovedVerifications)

	metric(&data.totalViews, func(ctx context.Context) (int64, error) {
		return s.repo.CountArticleViews(ctx, current)
	})
	metric(&data.prevViews, func(ctx context.Context) (int64, error) {
		return s.repo.CountArticleViews(ctx, previous)
	})
	metric(&data.profVisitors, func(ctx context.Context) (int64, error) {
		return s.repo.CountProfessionalPageVisits(ctx, current)
	})
	metric(&data.profSignups, func(ctx context.Context) (int64, error) {
		return s.repo.CountProfessionalSignups(ctx, current)
	})
	metric(&data.prevProfSignups, func(ctx context.Context) (int64, error) {
		return s.repo.CountProfessionalSignups(ctx, previous)
	})
	metric(&data.chatSessions, func(ctx context.Context) (int64, error) {
		return s.repo.CountChatSessionsInPeriod(ctx, current)
	})
	metric(&data.activeUsers, func(ctx context.Context) (int64, error) {
		return s.repo.CountActiveUsers(ctx, current)
	})

	wg.Add(6)
	go func() {
		defer wg.Done()
		data.viewSlugs, data.viewSlugsErr = s.repo.ArticleViewSlugs(ctx, current)
	}()
	go func() {
		defer wg.Done()
		data.searchQueries, data.searchQueriesErr = s.repo.SearchQueries(ctx, current)
	}()
	go func() {
		defer wg.Done()
		data.daily, data.dailyErr = s.repo.DailyArticleViews(ctx, current)
	}()
	go func() {
		defer wg.Done()
		data.recent, data.recentErr = s.repo.RecentSessions(ctx, current.Start, recentActivityLimit)
	}()
	go func() {
		defer wg.Done()
		data.verifications, data.verificationsErr = s.repo.VerificationsInPeriod(ctx, current)
	}()
	go func() {
		defer wg.Done()
		data.prevVerifications, data.prevVerificationsErr = s.repo.VerificationsInPeriod(ctx, previous)
	}()

	wg.Wait()
	return data
}

// metricFetcher builds the goroutine launcher the fan-outs share. Each call
// runs one count query and stores its result without touching any other field.
func metricFetcher(ctx context.Context, wg *sync.WaitGroup) func(*entities.Metric, func(context.Context) (int64, error)) {
	return func(dst *entities.Metric, query func(context.Context) (int64, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := query(ctx)
			*dst = entities.Metric{Value: value, Err: err}
		}()
	}
}

// fetchFunnel runs only the queries the onboarding funnel reads.
func (s *AnalyticsService) fetchFunnel(ctx context.Context, current entities.Period) *reportData {
	data := &reportData{}

	var wg sync.WaitGroup
	metric := metricFetcher(ctx, &wg)

	metric(&data.activeSubscribers, s.repo.CountApprovedVerifications)
	metric(&data.totalViews, func(ctx context.Context) (int64, error) {
		return s.repo.CountArticleViews(ctx, current)
	})
	metric(&data.profVisitors, func(ctx context.Context) (int64, error) {
		return s.repo.CountProfessionalPageVisits(ctx, current)
	})
	metric(&data.profSignups, func(ctx context.Context) (int64, error) {
		return s.repo.CountProfessionalSignups(ctx, current)
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		data.verifications, data.verificationsErr = s.repo.VerificationsInPeriod(ctx, current)
	}()

	wg.Wait()
	return data
}

// degradedNames lists the metrics whose queries failed, in a fixed order.
func (d *reportData) degradedNames() []string {
	var names []string
	add := func(name string, err error) {
		if err != nil {
			names = append(names, name)
		}
	}

	add("totalArticles", d.totalArticles.Err)
	add("totalUsers", d.totalUsers.Err)
	add("totalSessions", d.totalSessions.Err)
	add("totalViews", d.totalViews.Err)
	add("previousViews", d.prevViews.Err)
	add("professionalVisitors", d.profVisitors.Err)
	add("professionalSignups", d.profSignups.Err)
	add("previousProfessionalSignups", d.prevProfSignups.Err)
	add("activeSubscribers", d.activeSubscribers.Err)
	add("chatSessions", d.chatSessions.Err)
	add("activeUsers", d.activeUsers.Err)
	add("professionalUsers", d.professionalUsers.Err)
	add("viewSlugs", d.viewSlugsErr)
	add("searchQueries", d.searchQueriesErr)
	add("dailyViews", d.dailyErr)
	add("recentActivity", d.recentErr)
	add("verifications", d.verificationsErr)
	add("previousVerifications", d.prevVerificationsErr)
	return names
}

// GetReport builds the full admin dashboard report for the given window.
func (s *AnalyticsService) GetReport(ctx context.Context, days int) (*entities.EnhancedReport, error) {
	days = s.NormalizeDays(days)
	now := s.now()
	current, previous := ComputePeriods(now, days)

	data := s.fetch(ctx, current, previous)

	basic := s.buildBasicReport(ctx, now, days, data)
	report := &entities.EnhancedReport{
		RevenueMetrics:     s.buildRevenueMetrics(data, basic),
		FunnelData:         buildFunnel(data),
		ContentPerformance: s.buildContentPerformance(ctx, data),
		BasicData:          basic,
		Degraded:           data.degradedNames(),
	}

	return report, nil
}

// GetFunnel builds only the professional onboarding funnel.
func (s *AnalyticsService) GetFunnel(ctx context.Context, days int) (*entities.FunnelData, error) {
	days = s.NormalizeDays(days)
	current, _ := ComputePeriods(s.now(), days)

	data := s.fetchFunnel(ctx, current)
	funnel := buildFunnel(data)
	return &funnel, nil
}

func (s *AnalyticsService) buildBasicReport(ctx context.Context, now time.Time, days int, data *reportData) entities.BasicReport {
	return entities.BasicReport{
		Overview: entities.Overview{
			TotalArticles: data.totalArticles.OrZero(),
			TotalUsers:    data.totalUsers.OrZero(),
			TotalSessions: data.totalSessions.OrZero(),
			TotalViews:    data.totalViews.OrZero(),
		},
		DailyViews:      zeroFillDaily(now, days, data.daily),
		PopularArticles: s.buildPopularArticles(ctx, data.viewSlugs),
		RecentActivity:  emptyIfNil(data.recent),
		TopSearches:     buildTopSearches(data.searchQueries),
	}
}

// zeroFillDaily expands the sparse per-day counts into exactly `days`
// entries, oldest first, with zero rows for days that had no views.
func zeroFillDaily(now time.Time, days int, counts []entities.DailyCount) []entities.DailyCount {
	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Date.Format("2006-01-02")] = c.Views
	}

	series := make([]entities.DailyCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := startOfDay(now.AddDate(0, 0, -i))
		series = append(series, entities.DailyCount{
			Date:  date,
			Label: date.Format("Jan 2"),
			Views: byDay[date.Format("2006-01-02")],
		})
	}
	return series
}

// buildPopularArticles joins the top viewed slugs with article rows. Slugs
// with no matching article are dropped.
func (s *AnalyticsService) buildPopularArticles(ctx context.Context, viewSlugs []string) []entities.PopularArticle {
	top := TopN(CountByKey(viewSlugs), popularArticleLimit)
	if len(top) == 0 {
		return []entities.PopularArticle{}
	}

	counts := make(map[string]int, len(top))
	slugs := make([]string, 0, len(top))
	for _, kc := range top {
		counts[kc.Key] = kc.Count
		slugs = append(slugs, kc.Key)
	}

	articles, err := s.articles.GetBySlugs(ctx, slugs)
	if err != nil {
		return []entities.PopularArticle{}
	}

	popular := make([]entities.PopularArticle, 0, len(articles))
	for _, article := range articles {
		popular = append(popular, entities.PopularArticle{
			ID:    article.ID,
			Title: article.Title,
			Slug:  article.Slug,
			Count: counts[article.Slug],
		})
	}

	// The IN query does not preserve rank order
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Count != popular[j].Count {
			return popular[i].Count > popular[j].Count
		}
		return popular[i].Slug < popular[j].Slug
	})

	return popular
}

func buildTopSearches(queries []string) []entities.SearchTerm {
	top := TopN(CountByKey(queries), topSearchLimit)
	terms := make([]entities.SearchTerm, 0, len(top))
	for _, kc := range top {
		terms = append(terms, entities.SearchTerm{Term: kc.Key, Count: kc.Count})
	}
	return terms
}

func (s *AnalyticsService) buildContentPerformance(ctx context.Context, data *reportData) []entities.ContentPerformance {
	top := TopN(CountByKey(data.viewSlugs), contentPerformanceLimit)
	if len(top) == 0 {
		return []entities.ContentPerformance{}
	}

	counts := make(map[string]int, len(top))
	slugs := make([]string, 0, len(top))
	for _, kc := range top {
		counts[kc.Key] = kc.Count
		slugs = append(slugs, kc.Key)
	}

	articles, err := s.articles.GetBySlugs(ctx, slugs)
	if err != nil {
		return []entities.ContentPerformance{}
	}

	h := s.cfg.Heuristics
	performance := make([]entities.ContentPerformance, 0, len(articles))
	for _, article := range articles {
		views := counts[article.Slug]

		wordCount := len(strings.Fields(article.Content))
		if wordCount == 0 {
			wordCount = fallbackWordCount
		}

		performance = append(performance, entities.ContentPerformance{
			ID:              article.ID,
			Title:           article.Title,
			Category:        article.Category,
			Views:           views,
			AvgTimeOnPage:   float64(wordCount) / h.ReadingWordsPerMin,
			ScrollDepth:     h.ScrollDepthPct,
			EngagementScore: minInt(100, views),
			RevenueValue:    float64(views) * h.RevenuePerView,
		})
	}

	sort.Slice(performance, func(i, j int) bool {
		if performance[i].Views != performance[j].Views {
			return performance[i].Views > performance[j].Views
		}
		return performance[i].Title < performance[j].Title
	})

	return performance
}

func (s *AnalyticsService) buildRevenueMetrics(data *reportData, basic entities.BasicReport) entities.RevenueMetrics {
	h := s.cfg.Heuristics

	totalViews := basic.Overview.TotalViews
	prevViews := data.prevViews.OrZero()

	_, submitted, verified := verificationStats(data.verifications)
	_, _, prevVerified := verificationStats(data.prevVerifications)

	avgEngagement := 0
	if totalViews > 0 {
		avgEngagement = roundPct(float64(data.chatSessions.OrZero()) / float64(totalViews) * 100)
	}

	verificationRate := 0
	if submitted > 0 {
		verificationRate = roundPct(float64(verified) / float64(submitted) * 100)
	}

	return entities.RevenueMetrics{
		AdRevenuePotential: entities.AdRevenue{
			Value:         float64(totalViews) * h.RevenuePerView,
			Change:        roundPct(PercentChange(float64(totalViews), float64(prevViews))),
			Pageviews:     totalViews,
			AvgEngagement: avgEngagement,
		},
		ProfessionalConversions: entities.ProfessionalConversions{
			Value:            verified,
			Change:           roundPct(PercentChange(float64(verified), float64(prevVerified))),
			VerificationRate: verificationRate,
			AvgTimeToConvert: roundPct(avgDaysToConvert(data.verifications)),
		},
		UserMetrics: entities.UserMetrics{
			TotalUsers:        basic.Overview.TotalUsers,
			ActiveUsers:       data.activeUsers.OrZero(),
			ProfessionalUsers: data.professionalUsers.OrZero(),
			Change:            roundPct(PercentChange(float64(data.profSignups.OrZero()), float64(data.prevProfSignups.OrZero()))),
		},
		ContentMetrics: entities.ContentMetrics{
			TotalArticles:     basic.Overview.TotalArticles,
			PublishedArticles: basic.Overview.TotalArticles,
			AvgReadTime:       h.DefaultAvgReadMin,
			Change:            0,
		},
	}
}

func buildFunnel(data *reportData) entities.FunnelData {
	started, submitted, verified := verificationStats(data.verifications)

	visitors := data.profVisitors.OrZero()
	if visitors == 0 {
		visitors = data.totalViews.OrZero()
	}

	return entities.FunnelData{
		Visitors:              visitors,
		Signups:               data.profSignups.OrZero(),
		VerificationStarted:   started,
		VerificationSubmitted: submitted,
		Verified:              verified,
		ActiveSubscribers:     data.activeSubscribers.OrZero(),
	}
}

func verificationStats(verifications []*entities.ProfessionalVerification) (started, submitted, verified int) {
	started = len(verifications)
	for _, v := range verifications {
		if v.Submitted() {
			submitted++
		}
		if v.Approved() {
			verified++
		}
	}
	return started, submitted, verified
}

// avgDaysToConvert averages the created-to-approved gap over approved
// verifications that carry an approval timestamp.
func avgDaysToConvert(verifications []*entities.ProfessionalVerification) float64 {
	var total float64
	var count int
	for _, v := range verifications {
		if !v.Approved() || v.ApprovedAt == nil {
			continue
		}
		total += v.ApprovedAt.Sub(v.CreatedAt).Hours() / 24
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func emptyIfNil(sessions []entities.SessionActivity) []entities.SessionActivity {
	if sessions == nil {
		return []entities.SessionActivity{}
	}
	return sessions
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
