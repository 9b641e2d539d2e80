package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dentara/backend/internal/domain/providers"
	"github.com/dentara/backend/internal/infrastructure/observability"
)

const liveHeartbeatInterval = 30 * time.Second

// LiveAnalyticsHandler streams view and search events to the admin dashboard
type LiveAnalyticsHandler struct {
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// NewLiveAnalyticsHandler creates a new live analytics handler
func NewLiveAnalyticsHandler(eventBus providers.EventBus, metrics *observability.Metrics) *LiveAnalyticsHandler {
	return &LiveAnalyticsHandler{
		eventBus: eventBus,
		metrics:  metrics,
	}
}

// StreamEvents handles GET /api/admin/analytics/live
func (h *LiveAnalyticsHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "live updates are not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelViews)
	if err != nil {
		log.Printf("Failed to subscribe to channel %s: %v", providers.EventChannelViews, err)
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to live updates")
		return
	}

	observability.RecordSSEClient(r.Context(), h.metrics, "analytics_live", 1)
	defer observability.RecordSSEClient(r.Context(), h.metrics, "analytics_live", -1)

	h.sendEvent(w, "connected", map[string]interface{}{
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(liveHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected from live analytics stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-eventChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// sendEvent sends an SSE event to the client
func (h *LiveAnalyticsHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal event data: %v", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
