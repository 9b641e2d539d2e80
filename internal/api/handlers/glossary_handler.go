package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dentara/backend/internal/domain/entities"
	apperrors "github.com/dentara/backend/pkg/errors"
)

// GlossaryReader defines the glossary operations used by the handler.
type GlossaryReader interface {
	List(ctx context.Context) ([]*entities.GlossaryTerm, error)
	RecordInteraction(ctx context.Context, termID, interactionType string) error
}

// GlossaryHandler handles glossary-related HTTP requests
type GlossaryHandler struct {
	glossary GlossaryReader
}

// NewGlossaryHandler creates a new glossary handler
func NewGlossaryHandler(glossary GlossaryReader) *GlossaryHandler {
	return &GlossaryHandler{glossary: glossary}
}

// ListTerms handles GET /api/glossary/terms
func (h *GlossaryHandler) ListTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.glossary.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list glossary terms")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"terms": terms,
		"count": len(terms),
	})
}

type interactionRequest struct {
	InteractionType string `json:"interaction_type"`
}

// RecordInteraction handles POST /api/glossary/terms/{id}/interactions
func (h *GlossaryHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	termID := r.PathValue("id")
	if termID == "" {
		respondWithError(w, http.StatusBadRequest, "term ID is required")
		return
	}

	var payload interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.glossary.RecordInteraction(r.Context(), termID, payload.InteractionType); err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to record interaction")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}
