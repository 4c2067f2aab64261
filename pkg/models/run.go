package models

import "time"

// DocumentInfo is the metadata used to build the initial task payload.
type DocumentInfo struct {
	Title    string   `json:"title"`
	Authors  string   `json:"authors"`
	Abstract string   `json:"abstract"`
	Sections []string `json:"sections"`
	Path     string   `json:"path,omitempty"`
	Chars    int      `json:"chars"`
}

// Complexity is the outcome of assessing a document.
type Complexity struct {
	// Score is in [0,1].
	Score float64 `json:"score"`
	// Degraded is true when the assessment failed and Score is the default.
	Degraded bool `json:"degraded"`
	// Reason describes why the assessment degraded.
	Reason string `json:"reason,omitempty"`
}

// Usage summarizes token consumption for a run.
type Usage struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Calls        int     `json:"calls"`
	CostUSD      float64 `json:"cost_usd"`
}

// RunResult is the consolidated output of a review run.
type RunResult struct {
	RunID       string          `json:"run_id"`
	Document    DocumentInfo    `json:"document"`
	Complexity  Complexity      `json:"complexity"`
	Results     ResultMap       `json:"results"`
	Decision    TaskResult      `json:"decision"`
	Tiers       map[TaskID]Tier `json:"tiers"`
	Models      map[Tier]string `json:"models"`
	Usage       Usage           `json:"usage"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
