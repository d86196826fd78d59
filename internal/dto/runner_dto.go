package dto

// RunRequest describes a code execution request forwarded to the hosted
// execution service.
type RunRequest struct {
	Language string `json:"language" validate:"required"`
	Source   string `json:"source" validate:"required"`
	Stdin    string `json:"stdin"`
}

// RunResponse carries the captured execution output back to the client.
type RunResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// LanguageResponse describes one supported execution language.
type LanguageResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Version string `json:"version"`
}
