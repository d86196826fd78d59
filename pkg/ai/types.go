package ai

import "context"

// SuggestionInput contains the context the assistant needs to review an
// algorithm draft before a teacher does.
type SuggestionInput struct {
	ProgramTitle string
	Description  string
	Constraints  string
	Draft        string
}

// SuggestionResult is the structured feedback returned by the assistant.
type SuggestionResult struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
	Model       string   `json:"model,omitempty"`
}

// Assistant describes an AI model capable of reviewing algorithm drafts.
type Assistant interface {
	Suggest(ctx context.Context, input SuggestionInput) (SuggestionResult, error)
}
