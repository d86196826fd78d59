package dto

// AssistantRequest asks the draft assistant for hints on an algorithm draft.
type AssistantRequest struct {
	ProgramID string `json:"program_id" validate:"required,uuid4"`
	Content   string `json:"content" validate:"required"`
}

// AssistantResponse carries the assistant's structured suggestions.
type AssistantResponse struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
	Model       string   `json:"model"`
}
