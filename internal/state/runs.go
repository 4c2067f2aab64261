package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/panel/pkg/models"
)

// ErrAmbiguousID is returned when a run ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("run id prefix matches more than one run")

// RunSummary is one row of run history.
type RunSummary struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Authors            string    `json:"authors"`
	DocumentPath       string    `json:"document_path"`
	DocumentChars      int       `json:"document_chars"`
	Complexity         float64   `json:"complexity"`
	ComplexityDegraded bool      `json:"complexity_degraded"`
	DecisionOK         bool      `json:"decision_ok"`
	OutputDir          string    `json:"output_dir"`
	InputTokens        int64     `json:"input_tokens"`
	OutputTokens       int64     `json:"output_tokens"`
	Cost               float64   `json:"cost"`
	StartedAt          time.Time `json:"started_at"`
	CompletedAt        time.Time `json:"completed_at"`
	Failed             int       `json:"failed"`
}

// Duration returns the wall time of the run.
func (r RunSummary) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// TaskRecord is one stored task result.
type TaskRecord struct {
	TaskID         models.TaskID      `json:"task_id"`
	Tier           models.Tier        `json:"tier"`
	Model          string             `json:"model"`
	Content        string             `json:"content"`
	FailureKind    models.FailureKind `json:"failure_kind,omitempty"`
	FailureMessage string             `json:"failure_message,omitempty"`
	Attempts       int                `json:"attempts"`
	Duration       time.Duration      `json:"duration"`
}

// OK returns true if the task produced content.
func (t TaskRecord) OK() bool {
	return t.FailureKind == ""
}

// RunRecord is a stored run with its task results in canonical order.
type RunRecord struct {
	RunSummary
	Decision string       `json:"decision"`
	Tasks    []TaskRecord `json:"tasks"`
}

// SaveOptions carries run details that live outside the RunResult.
type SaveOptions struct {
	DocumentPath string
	OutputDir    string
}

// SaveRun stores run and every task result, including the decision, in one
// transaction. order fixes the position of each result.
func (db *DB) SaveRun(run *models.RunResult, order []models.TaskID, opts SaveOptions) error {
	results := run.Results.Ordered(order)
	results = append(results, run.Decision)

	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, title, authors, document_path, document_chars, complexity,
				complexity_degraded, decision, decision_ok, output_dir, input_tokens, output_tokens,
				cost, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.RunID, run.Document.Title, run.Document.Authors, opts.DocumentPath, run.Document.Chars,
			run.Complexity.Score, run.Complexity.Degraded, run.Decision.Text(), run.Decision.OK(),
			opts.OutputDir, run.Usage.InputTokens, run.Usage.OutputTokens, run.Usage.CostUSD,
			formatTime(run.StartedAt), formatTime(run.CompletedAt))
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, r := range results {
			var kind, msg sql.NullString
			if r.Failure != nil {
				kind = sql.NullString{String: string(r.Failure.Kind), Valid: true}
				msg = sql.NullString{String: r.Failure.Message, Valid: true}
			}
			_, err := tx.Exec(`
				INSERT INTO task_results (run_id, task_id, position, tier, model, content,
					failure_kind, failure_message, attempts, duration_ms)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, run.RunID, string(r.TaskID), i, string(r.Tier), r.Model, r.Content,
				kind, msg, r.Attempts, r.Duration.Milliseconds())
			if err != nil {
				return fmt.Errorf("insert task result %s: %w", r.TaskID, err)
			}
		}
		return nil
	})
}

const summaryColumns = `
	r.id, r.title, r.authors, r.document_path, r.document_chars, r.complexity,
	r.complexity_degraded, r.decision_ok, r.output_dir, r.input_tokens, r.output_tokens,
	r.cost, r.started_at, r.completed_at,
	(SELECT COUNT(*) FROM task_results t WHERE t.run_id = r.id AND t.failure_kind IS NOT NULL)
`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, extra ...any) (RunSummary, error) {
	var s RunSummary
	var startedAt, completedAt string
	dest := []any{
		&s.ID, &s.Title, &s.Authors, &s.DocumentPath, &s.DocumentChars, &s.Complexity,
		&s.ComplexityDegraded, &s.DecisionOK, &s.OutputDir, &s.InputTokens, &s.OutputTokens,
		&s.Cost, &startedAt, &completedAt, &s.Failed,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return s, err
	}
	s.StartedAt, _ = parseTime(startedAt)
	s.CompletedAt, _ = parseTime(completedAt)
	return s, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM runs r ORDER BY r.completed_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run by ID or unique ID prefix. It returns nil, nil
// when nothing matches.
func (db *DB) GetRun(idOrPrefix string) (*RunRecord, error) {
	rows, err := db.Query(`
		SELECT `+summaryColumns+`, r.decision
		FROM runs r WHERE r.id = ? OR r.id LIKE ? || '%'
		ORDER BY (r.id = ?) DESC LIMIT 2
	`, idOrPrefix, idOrPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	var matches []RunRecord
	for rows.Next() {
		var rec RunRecord
		s, err := scanSummary(rows, &rec.Decision)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.RunSummary = s
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("get run: %w", err)
	}
	rows.Close()

	switch {
	case len(matches) == 0:
		return nil, nil
	case len(matches) > 1 && matches[0].ID != idOrPrefix:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
	}

	rec := matches[0]
	tasks, err := db.listTasks(rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Tasks = tasks
	return &rec, nil
}

func (db *DB) listTasks(runID string) ([]TaskRecord, error) {
	rows, err := db.Query(`
		SELECT task_id, tier, model, content, failure_kind, failure_message, attempts, duration_ms
		FROM task_results WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list task results: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRecord
	for rows.Next() {
		var t TaskRecord
		var kind, msg sql.NullString
		var durationMS int64
		if err := rows.Scan(&t.TaskID, &t.Tier, &t.Model, &t.Content, &kind, &msg, &t.Attempts, &durationMS); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		t.FailureKind = models.FailureKind(kind.String)
		t.FailureMessage = msg.String
		t.Duration = time.Duration(durationMS) * time.Millisecond
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
