package entities

import (
	"time"
)

// Period is a contiguous date range over which metrics are aggregated.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the period (inclusive bounds).
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && !ts.After(p.End)
}

// Metric is the result of a single analytics query: either a value or the
// error that prevented it. The dashboard renders failed metrics as zero, but
// the distinction between "confirmed zero" and "query failed" is preserved
// until the presentation boundary.
type Metric struct {
	Value int64
	Err   error
}

// OrZero returns the metric value, coalescing a failed query to zero.
func (m Metric) OrZero() int64 {
	if m.Err != nil {
		return 0
	}
	return m.Value
}

// KeyCount is one grouped tally, e.g. views per article slug.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DailyCount is one day of the daily-views series.
type DailyCount struct {
	Date  time.Time `json:"-"`
	Label string    `json:"date"`
	Views int64     `json:"views"`
}

// PopularArticle is a top-N article joined with its view count.
type PopularArticle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// SearchTerm is one entry of the top-searches list.
type SearchTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Overview holds the headline counters.
type Overview struct {
	TotalArticles int64 `json:"totalArticles"`
	TotalUsers    int64 `json:"totalUsers"`
	TotalSessions int64 `json:"totalSessions"`
	TotalViews    int64 `json:"totalViews"`
}

// BasicReport is the first-level dashboard payload.
type BasicReport struct {
	Overview        Overview          `json:"overview"`
	DailyViews      []DailyCount      `json:"dailyViews"`
	PopularArticles []PopularArticle  `json:"popularArticles"`
	RecentActivity  []SessionActivity `json:"recentActivity"`
	TopSearches     []SearchTerm      `json:"topSearches"`
}

// AdRevenue is the estimated ad revenue card.
type AdRevenue struct {
	Value         float64 `json:"value"`
	Change        int     `json:"change"`
	Pageviews     int64   `json:"pageviews"`
	AvgEngagement int     `json:"avgEngagement"`
}

// ProfessionalConversions is the verification conversion card.
type ProfessionalConversions struct {
	Value            int `json:"value"`
	Change           int `json:"change"`
	VerificationRate int `json:"verificationRate"`
	AvgTimeToConvert int `json:"avgTimeToConvert"`
}

// UserMetrics is the user population card.
type UserMetrics struct {
	TotalUsers        int64 `json:"totalUsers"`
	ActiveUsers       int64 `json:"activeUsers"`
	ProfessionalUsers int64 `json:"professionalUsers"`
	Change            int   `json:"change"`
}

// ContentMetrics is the content inventory card.
type ContentMetrics struct {
	TotalArticles     int64   `json:"totalArticles"`
	PublishedArticles int64   `json:"publishedArticles"`
	AvgReadTime       float64 `json:"avgReadTime"`
	Change            int     `json:"change"`
}

// RevenueMetrics groups the four KPI cards.
type RevenueMetrics struct {
	AdRevenuePotential      AdRevenue               `json:"adRevenuePotential"`
	ProfessionalConversions ProfessionalConversions `json:"professionalConversions"`
	UserMetrics             UserMetrics             `json:"userMetrics"`
	ContentMetrics          ContentMetrics          `json:"contentMetrics"`
}

// FunnelData is the professional onboarding funnel, ordered
// visitor -> signup -> started -> submitted -> verified -> active.
type FunnelData struct {
	Visitors              int64 `json:"visitors"`
	Signups               int64 `json:"signups"`
	VerificationStarted   int   `json:"verificationStarted"`
	VerificationSubmitted int   `json:"verificationSubmitted"`
	Verified              int   `json:"verified"`
	ActiveSubscribers     int64 `json:"activeSubscribers"`
}

// ContentPerformance is one row of the per-article engagement table. The
// avgTimeOnPage, scrollDepth, engagementScore and revenueValue figures are
// heuristic estimates, not measured values.
type ContentPerformance struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Category        string  `json:"category"`
	Views           int     `json:"views"`
	AvgTimeOnPage   float64 `json:"avgTimeOnPage"`
	ScrollDepth     int     `json:"scrollDepth"`
	EngagementScore int     `json:"engagementScore"`
	RevenueValue    float64 `json:"revenueValue"`
}

// EnhancedReport is the full admin dashboard payload. Degraded lists the
// metric names whose backing queries failed and were rendered as zero.
type EnhancedReport struct {
	RevenueMetrics     RevenueMetrics       `json:"revenueMetrics"`
	FunnelData         FunnelData           `json:"funnelData"`
	ContentPerformance []ContentPerformance `json:"contentPerformance"`
	BasicData          BasicReport          `json:"basicData"`
	Degraded           []string             `json:"degraded,omitempty"`
}
