package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/ShayCichocki/panel/internal/reviewers"
	"github.com/ShayCichocki/panel/internal/state"
	"github.com/ShayCichocki/panel/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = cellStyle.Foreground(lipgloss.Color("10"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// newTable returns a table in the CLI's house style. statusCol, if not
// negative, is colored by its OK/FAILED value.
func newTable(headers []string, rows [][]string, statusCol int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusCol && row >= 0 && row < len(rows) {
				if rows[row][col] == "OK" {
					return okStyle
				}
				return failStyle
			}
			return cellStyle
		})
}

func statusText(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAILED"
}

func printRunSummary(run *models.RunResult, registry *reviewers.Registry) {
	fmt.Println()
	complexity := fmt.Sprintf("%.2f", run.Complexity.Score)
	if run.Complexity.Degraded {
		complexity += color.YellowString(" (default)")
	}
	fmt.Printf("Run %s\n", run.RunID)
	fmt.Printf("  Complexity: %s\n", complexity)
	fmt.Printf("  Duration:   %s\n", run.Duration().Round(time.Second))
	fmt.Printf("  Tokens:     %s in / %s out over %d calls (~$%.2f)\n",
		humanize.Comma(run.Usage.InputTokens), humanize.Comma(run.Usage.OutputTokens),
		run.Usage.Calls, run.Usage.CostUSD)
	fmt.Println()

	var rows [][]string
	for _, id := range registry.Order() {
		res, ok := run.Results[id]
		if !ok && id == run.Decision.TaskID {
			res, ok = run.Decision, true
		}
		if !ok {
			continue
		}
		name := string(id)
		if desc, found := registry.Get(id); found {
			name = desc.Name
		}
		rows = append(rows, []string{name, string(res.Tier), res.Model, statusText(res.OK()), res.Duration.Round(time.Millisecond).String()})
	}
	fmt.Println(newTable([]string{"Reviewer", "Tier", "Model", "Status", "Time"}, rows, 3))

	fmt.Println()
	fmt.Println(color.New(color.Bold).Sprint("Editorial decision"))
	fmt.Println(indent(firstLines(run.Decision.Text(), 12), "  "))
}

func printHistory(runs []state.RunSummary) {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			truncate(r.Title, 40),
			fmt.Sprintf("%.2f", r.Complexity),
			statusText(r.DecisionOK && r.Failed == 0),
			humanize.Time(r.CompletedAt),
			r.Duration().Round(time.Second).String(),
		})
	}
	fmt.Println(newTable([]string{"ID", "Title", "Complexity", "Status", "Completed", "Duration"}, rows, 3))
}

func printRunRecord(rec *state.RunRecord, registry *reviewers.Registry, full bool) {
	fmt.Printf("Run %s\n", rec.ID)
	fmt.Printf("  Title:      %s\n", rec.Title)
	fmt.Printf("  Authors:    %s\n", rec.Authors)
	fmt.Printf("  Document:   %s (%s chars)\n", rec.DocumentPath, humanize.Comma(int64(rec.DocumentChars)))
	fmt.Printf("  Output:     %s\n", rec.OutputDir)
	fmt.Printf("  Complexity: %.2f\n", rec.Complexity)
	fmt.Printf("  Completed:  %s (%s)\n", rec.CompletedAt.Local().Format(time.DateTime), humanize.Time(rec.CompletedAt))
	fmt.Printf("  Tokens:     %s in / %s out (~$%.2f)\n",
		humanize.Comma(rec.InputTokens), humanize.Comma(rec.OutputTokens), rec.Cost)
	fmt.Println()

	rows := make([][]string, 0, len(rec.Tasks))
	for _, t := range rec.Tasks {
		name := string(t.TaskID)
		if desc, ok := registry.Get(t.TaskID); ok {
			name = desc.Name
		}
		detail := t.Duration.Round(time.Millisecond).String()
		if !t.OK() {
			detail = truncate(t.FailureMessage, 50)
		}
		rows = append(rows, []string{name, string(t.Tier), statusText(t.OK()), fmt.Sprint(t.Attempts), detail})
	}
	fmt.Println(newTable([]string{"Reviewer", "Tier", "Status", "Attempts", "Detail"}, rows, 2))

	fmt.Println()
	fmt.Println(color.New(color.Bold).Sprint("Editorial decision"))
	decision := rec.Decision
	if !full {
		decision = firstLines(decision, 12)
	}
	fmt.Println(indent(decision, "  "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:n], "\n") + "\n…"
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
