package models

type TokenUsage struct {
	Prompt     int `json:"prompt_tokens"`
	Completion int `json:"completion_tokens"`
	Total      int `json:"total_tokens"`
}

// CompletionResult is produced exactly once per summarization call.
// An empty Summary means no summary was produced; a nil Tokens means the
// provider did not report usage.
type CompletionResult struct {
	Success   bool        `json:"success"`
	Summary   string      `json:"summary,omitempty"`
	ModelUsed string      `json:"model_used"`
	Tokens    *TokenUsage `json:"tokens_used,omitempty"`
	Error     string      `json:"error,omitempty"`
}
