package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/panel/internal/logging"
	"github.com/ShayCichocki/panel/internal/reviewers"
	"github.com/ShayCichocki/panel/pkg/models"
)

func sampleRun() *models.RunResult {
	completed := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	results := models.ResultMap{}
	tiers := map[models.TaskID]models.Tier{}
	for _, d := range reviewers.Default().All() {
		tiers[d.ID] = models.TierStandard
		if d.Role == models.RoleDecision {
			continue
		}
		results[d.ID] = models.TaskResult{TaskID: d.ID, Tier: models.TierStandard, Content: "text from " + string(d.ID)}
	}
	results[models.TaskEthics] = models.TaskResult{
		TaskID: models.TaskEthics, Tier: models.TierStandard,
		Failure: &models.TaskFailure{Kind: models.FailureExhaustedRetries, Message: "overloaded"},
	}

	return &models.RunResult{
		RunID: "run-1",
		Document: models.DocumentInfo{
			Title: "Widgets", Authors: "Jane Doe", Abstract: "About widgets.",
			Sections: []string{"1. Introduction", "2. Methods"}, Chars: 123456,
		},
		Complexity: models.Complexity{Score: 0.7},
		Results:    results,
		Decision:   models.TaskResult{TaskID: models.TaskEditor, Tier: models.TierPowerful, Content: "Accept with minor revisions."},
		Tiers:      tiers,
		Models: map[models.Tier]string{
			models.TierBasic: "haiku", models.TierStandard: "sonnet", models.TierPowerful: "opus",
		},
		StartedAt:   completed.Add(-time.Minute),
		CompletedAt: completed,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(dir, reviewers.Default(), logging.Discard())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	files, err := w.WriteAll(sampleRun())
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	// 11 results plus the decision, minus the failed ethics review.
	if got := len(files.Reviews); got != 11 {
		t.Errorf("review files = %d, want 11", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "review_ethics.txt")); !os.IsNotExist(err) {
		t.Error("review file written for failed task")
	}
	if got := readFile(t, filepath.Join(dir, "review_editor.txt")); got != "Accept with minor revisions." {
		t.Errorf("editor review = %q", got)
	}

	if filepath.Base(files.Results) != "review_results_20250314_150926.json" {
		t.Errorf("Results = %s", files.Results)
	}
	if filepath.Base(files.Report) != "review_report_20250314_150926.md" {
		t.Errorf("Report = %s", files.Report)
	}
	if filepath.Base(files.Summary) != "executive_summary_20250314_150926.md" {
		t.Errorf("Summary = %s", files.Summary)
	}
	for _, p := range files.All() {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("stat %s: %v", p, err)
		}
	}
}

func TestWriteAll_MarkdownReport(t *testing.T) {
	w, err := NewWriter(t.TempDir(), nil, logging.Discard())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	files, err := w.WriteAll(sampleRun())
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	report := readFile(t, files.Report)
	for _, want := range []string{
		"# Peer Review Report",
		"**Title:** Widgets",
		"**Document Length:** 123,456 characters",
		"**Identified Sections:** 1. Introduction, 2. Methods",
		"- Powerful: opus",
		"## Editorial Decision\n\nAccept with minor revisions.",
		"## Coordinator Assessment\n\ntext from coordinator",
		"## Author & Editor Summary\n\ntext from author_editor_summary",
		"### Methodology Expert\n\ntext from methodology",
		"Error during review: overloaded",
		"failed (exhausted_retries)",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	summary := readFile(t, files.Summary)
	for _, want := range []string{
		"# Executive Summary",
		"reviewed by 9 specialized reviewers",
		"1. **Methodology Expert**",
		"(review unavailable)",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestWriteAll_ResultsJSON(t *testing.T) {
	w, err := NewWriter(t.TempDir(), nil, logging.Discard())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	files, err := w.WriteAll(sampleRun())
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	var doc ResultsDocument
	if err := json.Unmarshal([]byte(readFile(t, files.Results)), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.RunID != "run-1" || doc.EditorDecision != "Accept with minor revisions." {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Reviews[models.TaskEthics] != "Error during review: overloaded" {
		t.Errorf("ethics review = %q", doc.Reviews[models.TaskEthics])
	}
	if f, ok := doc.Failures[models.TaskEthics]; !ok || f.Kind != models.FailureExhaustedRetries {
		t.Errorf("Failures = %+v", doc.Failures)
	}
	if doc.Config.NumReviewers != 11 || doc.DurationMS != 60000 {
		t.Errorf("Config = %+v, DurationMS = %d", doc.Config, doc.DurationMS)
	}

	var info models.DocumentInfo
	if err := json.Unmarshal([]byte(readFile(t, files.Info)), &info); err != nil {
		t.Fatalf("unmarshal info: %v", err)
	}
	if info.Title != "Widgets" {
		t.Errorf("info.Title = %q", info.Title)
	}
}

func TestDefaultDir(t *testing.T) {
	got := DefaultDir(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if got != "output_20240102_030405" {
		t.Errorf("DefaultDir() = %q", got)
	}
}
