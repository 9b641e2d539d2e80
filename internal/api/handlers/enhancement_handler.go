package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/dentara/backend/internal/application/services"
	"github.com/dentara/backend/internal/domain/entities"
	apperrors "github.com/dentara/backend/pkg/errors"
)

// EnhancementRunner defines the metadata generation operations used by the handler.
type EnhancementRunner interface {
	Configured() bool
	Enhance(ctx context.Context, req *services.EnhancementRequest, emit func(services.EnhancementEvent)) (*services.EnhancementResult, error)
}

// Authenticator resolves a request's bearer token to a profile. The streaming
// endpoint runs these checks itself because by the time they fail the SSE
// response has already started.
type Authenticator interface {
	Authenticate(r *http.Request) (*entities.Profile, error)
}

// EnhancementHandler handles AI glossary enhancement requests
type EnhancementHandler struct {
	enhancer EnhancementRunner
	auth     Authenticator
}

// NewEnhancementHandler creates a new enhancement handler
func NewEnhancementHandler(enhancer EnhancementRunner, auth Authenticator) *EnhancementHandler {
	return &EnhancementHandler{
		enhancer: enhancer,
		auth:     auth,
	}
}

// Enhance handles POST /api/admin/glossary/enhance-metadata. It runs the whole
// enhancement synchronously and returns a single JSON response; auth is
// enforced by middleware on this route.
func (h *EnhancementHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	if !h.enhancer.Configured() {
		respondWithError(w, http.StatusServiceUnavailable, "AI enhancement is not configured")
		return
	}

	var req services.EnhancementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.enhancer.Enhance(r.Context(), &req, nil)
	if err != nil {
		log.Printf("Enhancement run failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "enhancement run failed")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// EnhanceStream handles POST /api/admin/glossary/enhance-metadata/stream. The
// connection is promoted to SSE immediately; every failure after that point
// is delivered as an error frame on the stream, not an HTTP status.
func (h *EnhancementHandler) EnhanceStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sessionID := uuid.New().String()
	h.sendFrame(w, flusher, map[string]interface{}{
		"type":      "connected",
		"sessionId": sessionID,
	})

	profile, err := h.auth.Authenticate(r)
	if err != nil {
		h.sendErrorFrame(w, flusher, "Unauthorized")
		return
	}
	if !profile.IsAdmin() {
		h.sendErrorFrame(w, flusher, "Admin access required")
		return
	}

	if !h.enhancer.Configured() {
		h.sendErrorFrame(w, flusher, "AI enhancement is not configured")
		return
	}

	var req services.EnhancementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendErrorFrame(w, flusher, "Invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		message := "Invalid request"
		if appErr, ok := err.(*apperrors.AppError); ok {
			message = appErr.Message
		}
		h.sendErrorFrame(w, flusher, message)
		return
	}

	result, err := h.enhancer.Enhance(r.Context(), &req, func(event services.EnhancementEvent) {
		h.sendFrame(w, flusher, event)
	})
	if err != nil {
		log.Printf("Enhancement stream %s failed: %v", sessionID, err)
		h.sendErrorFrame(w, flusher, "Enhancement run failed")
		return
	}

	h.sendFrame(w, flusher, map[string]interface{}{
		"type":        "complete",
		"suggestions": result.Suggestions,
		"metadata": map[string]interface{}{
			"totalTerms":       result.TotalTerms,
			"totalSuggestions": result.TotalSuggestions,
			"batchesProcessed": result.BatchesProcessed,
			"message":          result.Message,
		},
	})
}

// sendFrame writes a single data-only SSE frame and flushes it.
func (h *EnhancementHandler) sendFrame(w http.ResponseWriter, flusher http.Flusher, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal stream frame: %v", err)
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

func (h *EnhancementHandler) sendErrorFrame(w http.ResponseWriter, flusher http.Flusher, message string) {
	h.sendFrame(w, flusher, map[string]string{
		"type":    "error",
		"message": message,
	})
}
