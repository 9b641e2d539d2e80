package litellm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dentara/backend/internal/domain/entities"
)

const suggestionSystemPrompt = `You are a UK dental terminology expert. Always respond with valid JSON.`

func buildSuggestionPrompt(batch []entities.TermEnhancementInput, existingTerms []string) (string, error) {
	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode enhancement batch: %w", err)
	}

	return fmt.Sprintf(`You are a UK dental terminology expert. Analyze these dental glossary terms and suggest metadata ONLY for the specified missing fields.

For each term, you will see:
- term_id, term, definition
- current_metadata (existing values - DO NOT regenerate these)
- fields_to_generate (ONLY generate suggestions for these fields)

Terms to analyze:
%s

Available terms for related_terms (only use exact matches from this list):
%s

Guidelines:
1. ONLY generate values for fields listed in "fields_to_generate" for each term
2. For fields NOT in "fields_to_generate", return null
3. For category: choose from %s
4. For difficulty: assess if basic (patient would know) or advanced (professional terminology)
5. For pronunciation: provide phonetic spelling only for complex/unusual terms
6. For also_known_as: include common alternatives, abbreviations, or patient-friendly names
7. For related_terms: ONLY use terms that exist in the provided list above
8. For example: provide a simple sentence showing the term in context

Respond with a JSON object in this format:
{
  "suggestions": [
    {
      "term_id": "uuid",
      "term": "term name",
      "suggestions": {
        "category": "value or null",
        "difficulty": "value or null",
        "pronunciation": "value or null",
        "also_known_as": ["array"] or null,
        "related_terms": ["array"] or null,
        "example": "value or null"
      }
    }
  ]
}`,
		string(payload),
		strings.Join(existingTerms, ", "),
		strings.Join(entities.GlossaryCategories, ", "),
	), nil
}
