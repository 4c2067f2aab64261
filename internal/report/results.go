package report

import (
	"time"

	"github.com/ShayCichocki/panel/pkg/models"
)

// ResultsDocument is the JSON form of a run.
type ResultsDocument struct {
	RunID          string                               `json:"run_id"`
	PaperInfo      models.DocumentInfo                  `json:"paper_info"`
	Reviews        map[models.TaskID]string             `json:"reviews"`
	Failures       map[models.TaskID]models.TaskFailure `json:"failures,omitempty"`
	EditorDecision string                               `json:"editor_decision"`
	Timestamp      time.Time                            `json:"timestamp"`
	Complexity     models.Complexity                    `json:"complexity"`
	Tiers          map[models.TaskID]models.Tier        `json:"tiers"`
	Config         ResultsConfig                        `json:"config"`
	Usage          models.Usage                         `json:"usage"`
	DurationMS     int64                                `json:"duration_ms"`
}

// ResultsConfig records what the run was executed with.
type ResultsConfig struct {
	ModelsUsed   map[models.Tier]string `json:"models_used"`
	NumReviewers int                    `json:"num_reviewers"`
	Order        []models.TaskID        `json:"order"`
}

// NewResultsDocument converts run into its JSON form. Failed tasks keep
// their error line in Reviews and their typed failure in Failures.
func NewResultsDocument(run *models.RunResult, order []models.TaskID) ResultsDocument {
	doc := ResultsDocument{
		RunID:          run.RunID,
		PaperInfo:      run.Document,
		Reviews:        make(map[models.TaskID]string, len(run.Results)),
		EditorDecision: run.Decision.Text(),
		Timestamp:      run.CompletedAt,
		Complexity:     run.Complexity,
		Tiers:          run.Tiers,
		Usage:          run.Usage,
		DurationMS:     run.Duration().Milliseconds(),
		Config: ResultsConfig{
			ModelsUsed:   run.Models,
			NumReviewers: len(run.Results),
			Order:        order,
		},
	}
	for id, r := range run.Results {
		doc.Reviews[id] = r.Text()
		if r.Failure != nil {
			if doc.Failures == nil {
				doc.Failures = make(map[models.TaskID]models.TaskFailure)
			}
			doc.Failures[id] = *r.Failure
		}
	}
	if run.Decision.Failure != nil {
		if doc.Failures == nil {
			doc.Failures = make(map[models.TaskID]models.TaskFailure)
		}
		doc.Failures[run.Decision.TaskID] = *run.Decision.Failure
	}
	return doc
}
