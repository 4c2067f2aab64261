// Package report writes the artifacts of a review run to an output
// directory.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ShayCichocki/panel/internal/reviewers"
	"github.com/ShayCichocki/panel/pkg/models"
)

// TimestampLayout is used in artifact file names and default output
// directories.
const TimestampLayout = "20060102_150405"

// InfoFile holds the document metadata of the last run.
const InfoFile = "paper_info.json"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.tmpl"))

// Files lists the paths written for one run.
type Files struct {
	Reviews []string `json:"reviews"`
	Info    string   `json:"info"`
	Results string   `json:"results"`
	Report  string   `json:"report"`
	Summary string   `json:"summary"`
}

// All returns every written path.
func (f Files) All() []string {
	out := append([]string(nil), f.Reviews...)
	for _, p := range []string{f.Info, f.Results, f.Report, f.Summary} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Writer renders run results into a directory.
type Writer struct {
	dir      string
	registry *reviewers.Registry
	logger   *slog.Logger
}

// NewWriter creates dir if needed and returns a Writer for it.
func NewWriter(dir string, registry *reviewers.Registry, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if registry == nil {
		registry = reviewers.Default()
	}
	return &Writer{dir: dir, registry: registry, logger: logger.With("component", "report")}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// DefaultDir returns the output directory name used when none is
// configured.
func DefaultDir(now time.Time) string {
	return "output_" + now.Format(TimestampLayout)
}

// SaveReview writes one review as review_<id>.txt.
func (w *Writer) SaveReview(id models.TaskID, content string) (string, error) {
	name := "review_" + strings.ReplaceAll(string(id), " ", "_") + ".txt"
	return name, w.saveText(name, content)
}

// SaveDocumentInfo writes the document metadata as paper_info.json.
func (w *Writer) SaveDocumentInfo(info models.DocumentInfo) (string, error) {
	return InfoFile, w.saveJSON(InfoFile, info)
}

// WriteAll writes every artifact of run: one file per successful review,
// the metadata, the JSON results, the Markdown report and the executive
// summary. It stops at the first write error.
func (w *Writer) WriteAll(run *models.RunResult) (Files, error) {
	var files Files
	order := w.registry.Order()

	results := append(run.Results.Ordered(order), run.Decision)
	for _, r := range results {
		if !r.OK() {
			w.logger.Warn("skipping review file for failed task", "task", r.TaskID, "kind", r.Failure.Kind)
			continue
		}
		name, err := w.SaveReview(r.TaskID, r.Content)
		if err != nil {
			return files, err
		}
		files.Reviews = append(files.Reviews, w.path(name))
	}

	name, err := w.SaveDocumentInfo(run.Document)
	if err != nil {
		return files, err
	}
	files.Info = w.path(name)

	ts := run.CompletedAt.Format(TimestampLayout)
	data := w.buildData(run)

	name = "review_results_" + ts + ".json"
	if err := w.saveJSON(name, NewResultsDocument(run, order)); err != nil {
		return files, err
	}
	files.Results = w.path(name)

	name = "review_report_" + ts + ".md"
	if err := w.render("report.md.tmpl", name, data); err != nil {
		return files, err
	}
	files.Report = w.path(name)

	name = "executive_summary_" + ts + ".md"
	if err := w.render("summary.md.tmpl", name, data); err != nil {
		return files, err
	}
	files.Summary = w.path(name)

	w.logger.Info("reports written", "dir", w.dir, "files", len(files.All()))
	return files, nil
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *Writer) saveText(name, content string) error {
	if err := os.WriteFile(w.path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.logger.Debug("text file saved", "file", name)
	return nil
}

func (w *Writer) saveJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return w.saveText(name, string(data))
}

func (w *Writer) render(tmpl, name string, data reportData) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return w.saveText(name, buf.String())
}

type entry struct {
	ID          models.TaskID
	Name        string
	Tier        models.Tier
	Text        string
	Failed      bool
	FailureKind models.FailureKind
}

type modelsUsed struct {
	Basic, Standard, Powerful string
}

type reportData struct {
	RunID       string
	Generated   string
	Document    models.DocumentInfo
	Length      string
	Sections    string
	Complexity  models.Complexity
	Models      modelsUsed
	Reviewers   int
	Entries     []entry
	Primary     []entry
	Decision    string
	Coordinator string
	Summary     string
}

func (w *Writer) buildData(run *models.RunResult) reportData {
	sections := run.Document.Sections
	if len(sections) > 10 {
		sections = sections[:10]
	}

	data := reportData{
		RunID:      run.RunID,
		Generated:  run.CompletedAt.Format(time.RFC3339),
		Document:   run.Document,
		Length:     humanize.Comma(int64(run.Document.Chars)),
		Sections:   strings.Join(sections, ", "),
		Complexity: run.Complexity,
		Models: modelsUsed{
			Basic:    run.Models[models.TierBasic],
			Standard: run.Models[models.TierStandard],
			Powerful: run.Models[models.TierPowerful],
		},
		Reviewers:   len(run.Results),
		Decision:    run.Decision.Text(),
		Coordinator: "No coordinator assessment available",
		Summary:     "No summary available",
	}

	for _, r := range append(run.Results.Ordered(w.registry.Order()), run.Decision) {
		e := entry{ID: r.TaskID, Name: string(r.TaskID), Tier: run.Tiers[r.TaskID], Text: r.Text(), Failed: !r.OK()}
		if r.Failure != nil {
			e.FailureKind = r.Failure.Kind
		}
		d, ok := w.registry.Get(r.TaskID)
		if ok && d.Name != "" {
			e.Name = d.Name
		}
		data.Entries = append(data.Entries, e)

		switch {
		case ok && d.Role == models.RolePrimary:
			data.Primary = append(data.Primary, e)
		case ok && d.Role == models.RoleAggregator:
			data.Coordinator = e.Text
		case ok && d.Role == models.RoleSummarizer:
			data.Summary = e.Text
		}
	}
	return data
}
