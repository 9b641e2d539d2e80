package entities

import (
	"time"
)

// Glossary categories accepted for AI-suggested metadata.
var GlossaryCategories = []string{
	"anatomy", "conditions", "procedures", "materials", "orthodontics",
	"pediatric", "costs", "prosthetics", "specialties",
}

// Glossary difficulty levels.
const (
	DifficultyBasic    = "basic"
	DifficultyAdvanced = "advanced"
)

// GlossaryTerm represents one dictionary entry. The metadata columns are
// nullable; the enhancement flow only fills fields that are missing.
type GlossaryTerm struct {
	ID            string    `json:"id" db:"id"`
	Term          string    `json:"term" db:"term"`
	Definition    string    `json:"definition" db:"definition"`
	Category      string    `json:"category,omitempty" db:"category"`
	Difficulty    string    `json:"difficulty,omitempty" db:"difficulty"`
	Pronunciation string    `json:"pronunciation,omitempty" db:"pronunciation"`
	AlsoKnownAs   []string  `json:"also_known_as,omitempty" db:"also_known_as"`
	RelatedTerms  []string  `json:"related_terms,omitempty" db:"related_terms"`
	Example       string    `json:"example,omitempty" db:"example"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// MetadataFieldNames lists the enhanceable metadata fields in prompt order.
var MetadataFieldNames = []string{
	"category", "difficulty", "pronunciation", "also_known_as",
	"related_terms", "example",
}

// MissingFields returns which of the requested metadata fields the term has
// no value for. A nil request means all fields are considered.
func (t *GlossaryTerm) MissingFields(requested []string) []string {
	wanted := func(name string) bool {
		if len(requested) == 0 {
			return true
		}
		for _, f := range requested {
			if f == name {
				return true
			}
		}
		return false
	}

	var missing []string
	if wanted("category") && t.Category == "" {
		missing = append(missing, "category")
	}
	if wanted("difficulty") && t.Difficulty == "" {
		missing = append(missing, "difficulty")
	}
	if wanted("pronunciation") && t.Pronunciation == "" {
		missing = append(missing, "pronunciation")
	}
	if wanted("also_known_as") && len(t.AlsoKnownAs) == 0 {
		missing = append(missing, "also_known_as")
	}
	if wanted("related_terms") && len(t.RelatedTerms) == 0 {
		missing = append(missing, "related_terms")
	}
	if wanted("example") && t.Example == "" {
		missing = append(missing, "example")
	}
	return missing
}

// MetadataSuggestion is one validated AI suggestion for a glossary term.
type MetadataSuggestion struct {
	TermID      string            `json:"term_id" validate:"required,uuid4|uuid"`
	Term        string            `json:"term" validate:"required"`
	Suggestions SuggestedMetadata `json:"suggestions" validate:"required"`
}

// SuggestedMetadata carries the per-field suggestions; fields the model was
// not asked to generate come back null.
type SuggestedMetadata struct {
	Category      *string  `json:"category" validate:"omitempty,oneof=anatomy conditions procedures materials orthodontics pediatric costs prosthetics specialties"`
	Difficulty    *string  `json:"difficulty" validate:"omitempty,oneof=basic advanced"`
	Pronunciation *string  `json:"pronunciation"`
	AlsoKnownAs   []string `json:"also_known_as"`
	RelatedTerms  []string `json:"related_terms"`
	Example       *string  `json:"example"`
}

// TermEnhancementInput is one glossary term prepared for the AI prompt:
// current metadata plus the fields the model should generate.
type TermEnhancementInput struct {
	TermID           string          `json:"term_id"`
	Term             string          `json:"term"`
	Definition       string          `json:"definition"`
	CurrentMetadata  CurrentMetadata `json:"current_metadata"`
	FieldsToGenerate []string        `json:"fields_to_generate"`
}

// CurrentMetadata mirrors the term's existing metadata in the prompt so the
// model does not regenerate fields that already have values.
type CurrentMetadata struct {
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	Pronunciation string   `json:"pronunciation"`
	AlsoKnownAs   []string `json:"also_known_as"`
	RelatedTerms  []string `json:"related_terms"`
	Example       string   `json:"example"`
}

// EnhancementInput builds the prompt payload for a term, limited to the
// requested fields. Returns false when nothing needs generating.
func (t *GlossaryTerm) EnhancementInput(requested []string) (TermEnhancementInput, bool) {
	missing := t.MissingFields(requested)
	if len(missing) == 0 {
		return TermEnhancementInput{}, false
	}
	return TermEnhancementInput{
		TermID:     t.ID,
		Term:       t.Term,
		Definition: t.Definition,
		CurrentMetadata: CurrentMetadata{
			Category:      t.Category,
			Difficulty:    t.Difficulty,
			Pronunciation: t.Pronunciation,
			AlsoKnownAs:   t.AlsoKnownAs,
			RelatedTerms:  t.RelatedTerms,
			Example:       t.Example,
		},
		FieldsToGenerate: missing,
	}, true
}

// GlossaryInteraction is one row of the glossary interaction log.
type GlossaryInteraction struct {
	ID              string    `json:"id" db:"id"`
	TermID          string    `json:"term_id" db:"term_id"`
	InteractionType string    `json:"interaction_type" db:"interaction_type"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
