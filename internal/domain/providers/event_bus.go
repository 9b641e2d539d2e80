package providers

import (
	"context"

	"github.com/dentara/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to live
// dashboard events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ViewEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ViewEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants.
const (
	// EventChannelViews carries every article view and search event.
	EventChannelViews = "views:updates"

	// EventChannelArticlePrefix is the prefix for per-article channels.
	EventChannelArticlePrefix = "views:article:"
)

// GetArticleChannel returns the channel name for a specific article slug.
func GetArticleChannel(slug string) string {
	return EventChannelArticlePrefix + slug
}
