package entities

import (
	"time"
)

// ViewEventType identifies the kind of live dashboard event.
type ViewEventType string

const (
	ViewEventArticleViewed ViewEventType = "article_viewed"
	ViewEventSearchLogged  ViewEventType = "search_logged"
)

// ViewEvent is the payload published on the event bus when a reader views an
// article or runs a search. The live admin dashboard consumes these over SSE.
type ViewEvent struct {
	ID          string        `json:"id"`
	EventType   ViewEventType `json:"event_type"`
	ArticleSlug string        `json:"article_slug,omitempty"`
	Query       string        `json:"query,omitempty"`
	OccurredAt  time.Time     `json:"occurred_at"`
}
