package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentara/backend/internal/application/services"
	"github.com/dentara/backend/internal/domain/entities"
)

type stubGlossaryRepo struct {
	terms        []*entities.GlossaryTerm
	missing      []*entities.GlossaryTerm
	names        []string
	interactions []*entities.GlossaryInteraction

	fetchErr error
}

func (s *stubGlossaryRepo) List(ctx context.Context) ([]*entities.GlossaryTerm, error) {
	return s.terms, nil
}
func (s *stubGlossaryRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.GlossaryTerm, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []*entities.GlossaryTerm
	for _, t := range s.terms {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}
func (s *stubGlossaryRepo) ListMissingMetadata(ctx context.Context) ([]*entities.GlossaryTerm, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.missing, nil
}
func (s *stubGlossaryRepo) AllTermNames(ctx context.Context) ([]string, error) {
	return s.names, nil
}
func (s *stubGlossaryRepo) LogInteraction(ctx context.Context, interaction *entities.GlossaryInteraction) error {
	s.interactions = append(s.interactions, interaction)
	return nil
}

// stubSuggester echoes one suggestion per input term, or fails for batches
// whose number is listed in failBatches.
type stubSuggester struct {
	calls       int
	batchSizes  []int
	failBatches map[int]bool
	extra       []entities.MetadataSuggestion
}

func (s *stubSuggester) SuggestMetadata(ctx context.Context, batch []entities.TermEnhancementInput, existingTerms []string) ([]entities.MetadataSuggestion, error) {
	s.calls++
	s.batchSizes = append(s.batchSizes, len(batch))
	if s.failBatches[s.calls] {
		return nil, errors.New("model overloaded")
	}

	category := "conditions"
	out := make([]entities.MetadataSuggestion, 0, len(batch))
	for _, input := range batch {
		out = append(out, entities.MetadataSuggestion{
			TermID:      input.TermID,
			Term:        input.Term,
			Suggestions: entities.SuggestedMetadata{Category: &category},
		})
	}
	return append(out, s.extra...), nil
}

func glossaryTerm(id, name string) *entities.GlossaryTerm {
	return &entities.GlossaryTerm{ID: id, Term: name, Definition: name + " definition"}
}

func collectEvents() (*[]services.EnhancementEvent, func(services.EnhancementEvent)) {
	var events []services.EnhancementEvent
	return &events, func(e services.EnhancementEvent) {
		events = append(events, e)
	}
}

func eventTypes(events []services.EnhancementEvent) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestEnhancementRequest_UnmarshalTermIDs(t *testing.T) {
	var req services.EnhancementRequest
	require.NoError(t, json.Unmarshal([]byte(`{"term_ids":"all"}`), &req))
	assert.True(t, req.TermIDs.All)

	req = services.EnhancementRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"term_ids":["id-1","id-2"],"fields":["category"]}`), &req))
	assert.False(t, req.TermIDs.All)
	assert.Equal(t, []string{"id-1", "id-2"}, req.TermIDs.IDs)
	assert.Equal(t, []string{"category"}, req.Fields)

	assert.Error(t, json.Unmarshal([]byte(`{"term_ids":"some"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"term_ids":42}`), &req))
}

func TestEnhancementRequest_Validate(t *testing.T) {
	req := &services.EnhancementRequest{}
	assert.Error(t, req.Validate(), "empty selection should be rejected")

	req = &services.EnhancementRequest{TermIDs: services.TermSelection{All: true}, Fields: []string{"category", "example"}}
	assert.NoError(t, req.Validate())

	req = &services.EnhancementRequest{TermIDs: services.TermSelection{All: true}, Fields: []string{"nonsense"}}
	assert.Error(t, req.Validate())
}

func TestEnhance_BatchesOfTen(t *testing.T) {
	var missing []*entities.GlossaryTerm
	for i := 0; i < 23; i++ {
		missing = append(missing, glossaryTerm(uuidLike(i), termName(i)))
	}

	repo := &stubGlossaryRepo{missing: missing}
	suggester := &stubSuggester{}
	svc := services.NewEnhancementService(repo, suggester)

	events, emit := collectEvents()
	result, err := svc.Enhance(context.Background(), &services.EnhancementRequest{TermIDs: services.TermSelection{All: true}}, emit)

	require.NoError(t, err)
	assert.Equal(t, 3, suggester.calls)
	assert.Equal(t, []int{10, 10, 3}, suggester.batchSizes)
	assert.Equal(t, 23, result.TotalTerms)
	assert.Equal(t, 23, result.TotalSuggestions)
	assert.Equal(t, 3, result.BatchesProcessed)

	types := eventTypes(*events)
	assert.Contains(t, types, services.EventBatchStart)
	assert.Contains(t, types, services.EventBatchComplete)
	assert.NotContains(t, types, services.EventBatchError)
}

func TestEnhance_FailedBatchSkippedNotFatal(t *testing.T) {
	var missing []*entities.GlossaryTerm
	for i := 0; i < 25; i++ {
		missing = append(missing, glossaryTerm(uuidLike(i), termName(i)))
	}

	repo := &stubGlossaryRepo{missing: missing}
	suggester := &stubSuggester{failBatches: map[int]bool{2: true}}
	svc := services.NewEnhancementService(repo, suggester)

	events, emit := collectEvents()
	result, err := svc.Enhance(context.Background(), &services.EnhancementRequest{TermIDs: services.TermSelection{All: true}}, emit)

	require.NoError(t, err, "one failed batch must not abort the run")
	assert.Equal(t, 3, suggester.calls)
	assert.Equal(t, 15, result.TotalSuggestions)

	var batchErrors int
	for _, e := range *events {
		if e.Type == services.EventBatchError {
			batchErrors++
			assert.Equal(t, 2, e.BatchNumber)
		}
	}
	assert.Equal(t, 1, batchErrors)
}

func TestEnhance_InvalidSuggestionsDropped(t *testing.T) {
	repo := &stubGlossaryRepo{missing: []*entities.GlossaryTerm{glossaryTerm(uuidLike(1), "Crown")}}
	badDifficulty := "expert"
	suggester := &stubSuggester{
		extra: []entities.MetadataSuggestion{
			{TermID: "not-a-uuid", Term: "Bad ID", Suggestions: entities.SuggestedMetadata{}},
			{TermID: uuidLike(2), Term: "Bad Difficulty", Suggestions: entities.SuggestedMetadata{Difficulty: &badDifficulty}},
		},
	}
	svc := services.NewEnhancementService(repo, suggester)

	result, err := svc.Enhance(context.Background(), &services.EnhancementRequest{TermIDs: services.TermSelection{All: true}}, nil)

	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "Crown", result.Suggestions[0].Term)
}

func TestEnhance_AlreadyCompleteTermsShortCircuit(t *testing.T) {
	complete := glossaryTerm(uuidLike(1), "Crown")
	complete.Category = "prosthetics"
	repo := &stubGlossaryRepo{terms: []*entities.GlossaryTerm{complete}}
	suggester := &stubSuggester{}
	svc := services.NewEnhancementService(repo, suggester)

	result, err := svc.Enhance(context.Background(), &services.EnhancementRequest{
		TermIDs: services.TermSelection{IDs: []string{complete.ID}},
		Fields:  []string{"category"},
	}, nil)

	require.NoError(t, err)
	assert.Zero(t, suggester.calls)
	assert.Empty(t, result.Suggestions)
	assert.NotEmpty(t, result.Message)
}

func TestEnhance_FetchFailureIsFatal(t *testing.T) {
	repo := &stubGlossaryRepo{fetchErr: errors.New("connection refused")}
	svc := services.NewEnhancementService(repo, &stubSuggester{})

	_, err := svc.Enhance(context.Background(), &services.EnhancementRequest{TermIDs: services.TermSelection{All: true}}, nil)
	assert.Error(t, err)
}

func TestEnhance_CancelledContextStopsRun(t *testing.T) {
	var missing []*entities.GlossaryTerm
	for i := 0; i < 15; i++ {
		missing = append(missing, glossaryTerm(uuidLike(i), termName(i)))
	}
	repo := &stubGlossaryRepo{missing: missing}
	svc := services.NewEnhancementService(repo, &stubSuggester{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Enhance(ctx, &services.EnhancementRequest{TermIDs: services.TermSelection{All: true}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func uuidLike(i int) string {
	const digits = "0123456789abcdef"
	return "3f2504e0-4f89-41d3-9a0c-0305e82c33" + string(digits[(i/16)%16]) + string(digits[i%16])
}

func termName(i int) string {
	return "term-" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26))
}
