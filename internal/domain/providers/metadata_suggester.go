package providers

import (
	"context"
	"errors"

	"github.com/dentara/backend/internal/domain/entities"
)

// ErrSuggesterUnauthorized is returned when the AI proxy rejects our
// credentials; callers should not retry with the same key.
var ErrSuggesterUnauthorized = errors.New("metadata suggester unauthorized")

// MetadataSuggester produces metadata suggestions for a batch of glossary
// terms. existingTerms is the allowed vocabulary for related_terms; the
// suggester may return fewer suggestions than inputs.
type MetadataSuggester interface {
	SuggestMetadata(ctx context.Context, batch []entities.TermEnhancementInput, existingTerms []string) ([]entities.MetadataSuggestion, error)
}
