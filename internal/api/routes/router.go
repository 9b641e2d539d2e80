package routes

import (
	"net/http"

	"github.com/dentara/backend/internal/api/handlers"
	"github.com/dentara/backend/internal/api/middleware"
	"github.com/dentara/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	articleHandler     *handlers.ArticleHandler
	glossaryHandler    *handlers.GlossaryHandler
	analyticsHandler   *handlers.AnalyticsHandler
	enhancementHandler *handlers.EnhancementHandler
	liveHandler        *handlers.LiveAnalyticsHandler

	authMiddleware  *middleware.AuthMiddleware
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	articleHandler *handlers.ArticleHandler,
	glossaryHandler *handlers.GlossaryHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	enhancementHandler *handlers.EnhancementHandler,
	liveHandler *handlers.LiveAnalyticsHandler,
	authMiddleware *middleware.AuthMiddleware,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		articleHandler:     articleHandler,
		glossaryHandler:    glossaryHandler,
		analyticsHandler:   analyticsHandler,
		enhancementHandler: enhancementHandler,
		liveHandler:        liveHandler,

		authMiddleware:  authMiddleware,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Article endpoints
	r.mux.HandleFunc("GET /api/articles", r.articleHandler.ListArticles)
	r.mux.HandleFunc("GET /api/articles/search", r.articleHandler.SearchArticles)
	r.mux.HandleFunc("GET /api/articles/{slug}", r.articleHandler.GetArticle)
	r.mux.HandleFunc("POST /api/articles/{slug}/view", r.articleHandler.TrackView)

	// Glossary endpoints
	r.mux.HandleFunc("GET /api/glossary/terms", r.glossaryHandler.ListTerms)
	r.mux.HandleFunc("POST /api/glossary/terms/{id}/interactions", r.glossaryHandler.RecordInteraction)

	// Admin analytics endpoints
	r.mux.Handle("GET /api/admin/analytics", r.authMiddleware.RequireAdmin(http.HandlerFunc(r.analyticsHandler.GetReport)))
	r.mux.Handle("GET /api/admin/analytics/funnel", r.authMiddleware.RequireAdmin(http.HandlerFunc(r.analyticsHandler.GetFunnel)))
	r.mux.Handle("GET /api/admin/analytics/live", r.authMiddleware.RequireAdmin(http.HandlerFunc(r.liveHandler.StreamEvents)))

	// Admin glossary enhancement endpoints. The streaming variant runs its
	// auth checks inside the handler so failures arrive as SSE error frames.
	r.mux.Handle("POST /api/admin/glossary/enhance-metadata", r.authMiddleware.RequireAdmin(http.HandlerFunc(r.enhancementHandler.Enhance)))
	r.mux.HandleFunc("POST /api/admin/glossary/enhance-metadata/stream", r.enhancementHandler.EnhanceStream)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
