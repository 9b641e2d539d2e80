package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	apperrors "github.com/dentara/backend/pkg/errors"
)

const defaultArticleLimit = 30

// ArticleReader defines the article operations used by the handler.
type ArticleReader interface {
	List(ctx context.Context, filter repositories.ArticleFilter) ([]*entities.Article, error)
	GetBySlug(ctx context.Context, slug string) (*entities.Article, error)
	Search(ctx context.Context, query string, limit int) ([]*entities.Article, error)
}

// ViewTracker defines the fire-and-forget tracking operations used by the handler.
type ViewTracker interface {
	TrackView(ctx context.Context, slug, sessionID string)
	TrackSearch(ctx context.Context, query string)
}

// ArticleHandler handles article-related HTTP requests
type ArticleHandler struct {
	articles ArticleReader
	tracker  ViewTracker
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articles ArticleReader, tracker ViewTracker) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		tracker:  tracker,
	}
}

// ListArticles handles GET /api/articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.ArticleFilter{
		Category: query.Get("category"),
		Limit:    defaultArticleLimit,
		Offset:   0,
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	articles, err := h.articles.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"articles": articles,
		"count":    len(articles),
	})
}

// GetArticle handles GET /api/articles/{slug}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "article slug is required")
		return
	}

	article, err := h.articles.GetBySlug(r.Context(), slug)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, article)
}

type trackViewRequest struct {
	SessionID string `json:"session_id"`
}

// TrackView handles POST /api/articles/{slug}/view
func (h *ArticleHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "article slug is required")
		return
	}

	var payload trackViewRequest
	if r.Body != nil {
		// A missing or malformed body just means an anonymous view
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	h.tracker.TrackView(r.Context(), slug, payload.SessionID)

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// SearchArticles handles GET /api/articles/search
func (h *ArticleHandler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := defaultArticleLimit
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 && parsed <= 100 {
		limit = parsed
	}

	articles, err := h.articles.Search(r.Context(), query, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to search articles")
		return
	}

	h.tracker.TrackSearch(r.Context(), query)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"articles": articles,
		"count":    len(articles),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
