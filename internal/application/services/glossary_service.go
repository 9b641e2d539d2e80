package services

import (
	"context"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	apperrors "github.com/dentara/backend/pkg/errors"
)

// Interaction types recorded against glossary terms.
var glossaryInteractionTypes = map[string]bool{
	"view":      true,
	"search":    true,
	"bookmark":  true,
	"pronounce": true,
}

// GlossaryService handles business logic for glossary terms
type GlossaryService struct {
	repo repositories.GlossaryRepository
}

// NewGlossaryService creates a new glossary service
func NewGlossaryService(repo repositories.GlossaryRepository) *GlossaryService {
	return &GlossaryService{repo: repo}
}

// List retrieves every glossary term
func (s *GlossaryService) List(ctx context.Context) ([]*entities.GlossaryTerm, error) {
	return s.repo.List(ctx)
}

// RecordInteraction logs one reader interaction with a term.
func (s *GlossaryService) RecordInteraction(ctx context.Context, termID, interactionType string) error {
	if termID == "" {
		return apperrors.NewValidationError("term id is required")
	}
	if !glossaryInteractionTypes[interactionType] {
		return apperrors.NewValidationError("unknown interaction type: " + interactionType)
	}

	return s.repo.LogInteraction(ctx, &entities.GlossaryInteraction{
		TermID:          termID,
		InteractionType: interactionType,
	})
}
