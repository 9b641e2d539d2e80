package services

import (
	"context"
	"log"
	"time"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/providers"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/google/uuid"
)

// ViewTrackingService appends view and search events to the logs that the
// analytics pipeline aggregates, and publishes them for the live dashboard.
type ViewTrackingService struct {
	views    repositories.ArticleViewRepository
	searches repositories.SearchLogRepository
	bus      providers.EventBus
}

// NewViewTrackingService creates a new view tracking service
func NewViewTrackingService(views repositories.ArticleViewRepository, searches repositories.SearchLogRepository, bus providers.EventBus) *ViewTrackingService {
	return &ViewTrackingService{
		views:    views,
		searches: searches,
		bus:      bus,
	}
}

// TrackView records one article view. Runs in the background so the reader's
// request is never blocked on the log write.
func (s *ViewTrackingService) TrackView(ctx context.Context, slug, sessionID string) {
	view := &entities.ArticleView{
		ID:          uuid.New().String(),
		ArticleSlug: slug,
		SessionID:   sessionID,
		ViewedAt:    time.Now(),
	}

	go func() {
		// Use a fresh context since the request context might be cancelled
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.views.LogView(bgCtx, view); err != nil {
			log.Printf("Warning: failed to log article view: %v", err)
			return
		}

		s.publish(bgCtx, &entities.ViewEvent{
			ID:          view.ID,
			EventType:   entities.ViewEventArticleViewed,
			ArticleSlug: slug,
			OccurredAt:  view.ViewedAt,
		})
	}()
}

// TrackSearch records one site search the same way.
func (s *ViewTrackingService) TrackSearch(ctx context.Context, query string) {
	search := &entities.WebSearch{
		ID:        uuid.New().String(),
		Query:     query,
		CreatedAt: time.Now(),
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.searches.LogSearch(bgCtx, search); err != nil {
			log.Printf("Warning: failed to log search: %v", err)
			return
		}

		s.publish(bgCtx, &entities.ViewEvent{
			ID:         search.ID,
			EventType:  entities.ViewEventSearchLogged,
			Query:      query,
			OccurredAt: search.CreatedAt,
		})
	}()
}

func (s *ViewTrackingService) publish(ctx context.Context, event *entities.ViewEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, providers.EventChannelViews, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event.EventType, err)
	}
	if event.ArticleSlug != "" {
		if err := s.bus.Publish(ctx, providers.GetArticleChannel(event.ArticleSlug), event); err != nil {
			log.Printf("Warning: failed to publish article event: %v", err)
		}
	}
}
