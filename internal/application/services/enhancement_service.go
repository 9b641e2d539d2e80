package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/providers"
	"github.com/dentara/backend/internal/domain/repositories"
	apperrors "github.com/dentara/backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const enhancementBatchSize = 10

// TermSelection is the parsed term_ids request field: either every term with
// missing metadata, or an explicit id list.
type TermSelection struct {
	All bool
	IDs []string
}

// UnmarshalJSON accepts "all" or a JSON array of ids.
func (s *TermSelection) UnmarshalJSON(data []byte) error {
	var all string
	if err := json.Unmarshal(data, &all); err == nil {
		if all != "all" {
			return fmt.Errorf("term_ids must be \"all\" or an array of ids")
		}
		s.All = true
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("term_ids must be \"all\" or an array of ids")
	}
	s.IDs = ids
	return nil
}

// EnhancementRequest is the enhance-metadata request body.
type EnhancementRequest struct {
	TermIDs TermSelection `json:"term_ids"`
	Fields  []string      `json:"fields,omitempty"`
}

// Validate rejects selections that name no terms and unknown field names.
func (r *EnhancementRequest) Validate() error {
	if !r.TermIDs.All && len(r.TermIDs.IDs) == 0 {
		return apperrors.NewValidationError("term_ids must be \"all\" or a non-empty array of ids")
	}
	for _, f := range r.Fields {
		if !validMetadataField(f) {
			return apperrors.NewValidationError(fmt.Sprintf("unknown metadata field: %s", f))
		}
	}
	return nil
}

func validMetadataField(name string) bool {
	for _, f := range entities.MetadataFieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// EnhancementEvent is one progress frame of an enhancement run. Only the
// fields relevant to the event type are set.
type EnhancementEvent struct {
	Type           string `json:"type"`
	Message        string `json:"message,omitempty"`
	TotalTerms     int    `json:"totalTerms,omitempty"`
	BatchNumber    int    `json:"batchNumber,omitempty"`
	TotalBatches   int    `json:"totalBatches,omitempty"`
	BatchSize      int    `json:"batchSize,omitempty"`
	Term           string `json:"term,omitempty"`
	TermID         string `json:"termId,omitempty"`
	ProcessedCount int    `json:"processedCount,omitempty"`
}

// Enhancement event types.
const (
	EventProgress      = "progress"
	EventBatchStart    = "batch-start"
	EventTermProcessed = "term-processed"
	EventBatchComplete = "batch-complete"
	EventBatchError    = "batch-error"
)

// EnhancementResult is the final outcome of a run: every suggestion that
// survived validation, plus run totals.
type EnhancementResult struct {
	Suggestions      []entities.MetadataSuggestion `json:"suggestions"`
	TotalTerms       int                           `json:"totalTerms"`
	TotalSuggestions int                           `json:"totalSuggestions"`
	BatchesProcessed int                           `json:"batchesProcessed"`
	Message          string                        `json:"message,omitempty"`
}

// EnhancementService drives AI metadata generation for glossary terms.
type EnhancementService struct {
	glossary  repositories.GlossaryRepository
	suggester providers.MetadataSuggester
	validate  *validator.Validate
	batchSize int
}

// NewEnhancementService creates a new enhancement service
func NewEnhancementService(glossary repositories.GlossaryRepository, suggester providers.MetadataSuggester) *EnhancementService {
	return &EnhancementService{
		glossary:  glossary,
		suggester: suggester,
		validate:  validator.New(),
		batchSize: enhancementBatchSize,
	}
}

// Configured reports whether an AI backend is wired up.
func (s *EnhancementService) Configured() bool {
	return s.suggester != nil
}

// Enhance runs metadata generation for the selected terms. Intermediate
// progress is delivered through emit (which may be nil for one-shot callers);
// a batch that fails is reported and skipped, not fatal. The error return is
// reserved for failures that abort the whole run.
func (s *EnhancementService) Enhance(ctx context.Context, req *EnhancementRequest, emit func(EnhancementEvent)) (*EnhancementResult, error) {
	if emit == nil {
		emit = func(EnhancementEvent) {}
	}

	emit(EnhancementEvent{Type: EventProgress, Message: "Fetching terms..."})

	terms, err := s.fetchTerms(ctx, req.TermIDs)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch terms", err)
	}

	if len(terms) == 0 {
		return &EnhancementResult{Suggestions: []entities.MetadataSuggestion{}}, nil
	}

	emit(EnhancementEvent{
		Type:       EventProgress,
		Message:    fmt.Sprintf("Found %d terms to process", len(terms)),
		TotalTerms: len(terms),
	})

	existingTerms, err := s.glossary.AllTermNames(ctx)
	if err != nil {
		log.Printf("Warning: failed to load term vocabulary: %v", err)
		existingTerms = nil
	}

	inputs := make([]entities.TermEnhancementInput, 0, len(terms))
	for _, term := range terms {
		if input, ok := term.EnhancementInput(req.Fields); ok {
			inputs = append(inputs, input)
		}
	}

	if len(inputs) == 0 {
		return &EnhancementResult{
			Suggestions: []entities.MetadataSuggestion{},
			Message:     "All selected terms already have values for the requested fields.",
		}, nil
	}

	batches := batchInputs(inputs, s.batchSize)
	var allSuggestions []entities.MetadataSuggestion

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		emit(EnhancementEvent{
			Type:         EventBatchStart,
			BatchNumber:  i + 1,
			TotalBatches: len(batches),
			BatchSize:    len(batch),
			Message:      fmt.Sprintf("Processing batch %d of %d...", i+1, len(batches)),
		})

		suggestions, err := s.suggester.SuggestMetadata(ctx, batch, existingTerms)
		if err != nil {
			log.Printf("Error processing batch %d: %v", i+1, err)
			emit(EnhancementEvent{
				Type:        EventBatchError,
				BatchNumber: i + 1,
				Message:     fmt.Sprintf("Failed to process batch %d", i+1),
			})
			continue
		}

		for _, suggestion := range suggestions {
			if err := s.validate.Struct(suggestion); err != nil {
				log.Printf("Invalid suggestion format for %q: %v", suggestion.Term, err)
				continue
			}
			allSuggestions = append(allSuggestions, suggestion)
			emit(EnhancementEvent{
				Type:   EventTermProcessed,
				Term:   suggestion.Term,
				TermID: suggestion.TermID,
			})
		}

		emit(EnhancementEvent{
			Type:           EventBatchComplete,
			BatchNumber:    i + 1,
			ProcessedCount: len(suggestions),
		})
	}

	if allSuggestions == nil {
		allSuggestions = []entities.MetadataSuggestion{}
	}

	return &EnhancementResult{
		Suggestions:      allSuggestions,
		TotalTerms:       len(inputs),
		TotalSuggestions: len(allSuggestions),
		BatchesProcessed: len(batches),
	}, nil
}

func (s *EnhancementService) fetchTerms(ctx context.Context, selection TermSelection) ([]*entities.GlossaryTerm, error) {
	if selection.All {
		return s.glossary.ListMissingMetadata(ctx)
	}
	return s.glossary.GetByIDs(ctx, selection.IDs)
}

func batchInputs(inputs []entities.TermEnhancementInput, size int) [][]entities.TermEnhancementInput {
	if size <= 0 {
		size = enhancementBatchSize
	}
	var batches [][]entities.TermEnhancementInput
	for start := 0; start < len(inputs); start += size {
		end := start + size
		if end > len(inputs) {
			end = len(inputs)
		}
		batches = append(batches, inputs[start:end])
	}
	return batches
}
