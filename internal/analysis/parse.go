package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseSuggestionJSON parses the model response into a Suggestion.
// Fields are accepted exactly as returned: the category is not checked against
// the closed list and the date is not checked for formatting. Validating those
// is the trust boundary's job, not the wire parser's.
func parseSuggestionJSON(text string) (*Suggestion, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code fences if the model ignored instructions
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrBadResponse)
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("%w: unterminated JSON object in response", ErrBadResponse)
	}

	text = text[startIdx : endIdx+1]

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	suggestion.Vendor = strings.TrimSpace(suggestion.Vendor)
	suggestion.Category = strings.TrimSpace(suggestion.Category)
	suggestion.Date = strings.TrimSpace(suggestion.Date)

	return &suggestion, nil
}
