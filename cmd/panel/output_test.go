package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/panel/internal/agent"
	"github.com/ShayCichocki/panel/internal/api"
	"github.com/ShayCichocki/panel/internal/config"
	"github.com/ShayCichocki/panel/internal/orchestrator"
	"github.com/ShayCichocki/panel/pkg/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 8, "a longe…"},
		{"ümlaut über", 6, "ümlau…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestFirstLines(t *testing.T) {
	text := "one\ntwo\nthree\nfour"
	if got := firstLines(text, 4); got != text {
		t.Errorf("firstLines kept %q", got)
	}
	if got := firstLines(text, 2); got != "one\ntwo\n…" {
		t.Errorf("firstLines(2) = %q", got)
	}
}

func TestIndent(t *testing.T) {
	if got := indent("a\nb", "  "); got != "  a\n  b" {
		t.Errorf("indent = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}

func TestDisplayValue_MasksAPIKey(t *testing.T) {
	got := displayValue("anthropic.api_key", "sk-ant-REDACTED")
	if strings.Contains(got, "abcdefghij") {
		t.Errorf("api key not masked: %q", got)
	}
	if got := displayValue("concurrency.max_parallel", 3); got != "3" {
		t.Errorf("displayValue = %q, want 3", got)
	}
}

func TestUsageFrom(t *testing.T) {
	tracker := api.NewTokenTracker()
	tracker.Add(1000, 200)
	tracker.Add(500, 100)

	usage := usageFrom(tracker)()
	if usage.InputTokens != 1500 || usage.OutputTokens != 300 {
		t.Errorf("tokens = %d/%d, want 1500/300", usage.InputTokens, usage.OutputTokens)
	}
	if usage.Calls != 2 {
		t.Errorf("calls = %d, want 2", usage.Calls)
	}
	if usage.CostUSD <= 0 {
		t.Errorf("cost = %v, want positive", usage.CostUSD)
	}
}

func TestNewTable_RendersRows(t *testing.T) {
	out := newTable([]string{"Reviewer", "Status"}, [][]string{{"Ethics", "OK"}, {"Impact", "FAILED"}}, 1).String()
	for _, want := range []string{"Reviewer", "Ethics", "Impact", "FAILED"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestStageProgress(t *testing.T) {
	if got := stageProgress(orchestrator.StageAssess); got != "[1/7] assess" {
		t.Errorf("stageProgress(assess) = %q", got)
	}
	if got := stageProgress(orchestrator.StageDecide); got != "[6/7] decide" {
		t.Errorf("stageProgress(decide) = %q", got)
	}
}

func TestFailureDetail(t *testing.T) {
	tests := []struct {
		name string
		kind models.FailureKind
		want bool
	}{
		{"rejected", models.FailureRequestRejected, true},
		{"exhausted", models.FailureExhaustedRetries, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := orchestrator.OrchestratorEvent{
				Tier:  models.TierBasic,
				Error: &agent.TaskError{Kind: tt.kind, TaskID: models.TaskEthics, Err: errors.New("bad request")},
			}
			got := failureDetail("Ethics", ev)
			if strings.HasSuffix(got, "(not retried)") != tt.want {
				t.Errorf("failureDetail = %q", got)
			}
			if !strings.HasPrefix(got, "Ethics [basic]") {
				t.Errorf("failureDetail = %q, want name and tier first", got)
			}
		})
	}
}

func TestApplyLogLevel(t *testing.T) {
	tests := []struct {
		flag    string
		want    string
		wantErr bool
	}{
		{"", "info", false},
		{"debug", "debug", false},
		{"WARN", "warn", false},
		{"verbose", "info", true},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Level = "info"
			err := applyLogLevel(cfg, tt.flag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyLogLevel(%q) error = %v, wantErr %v", tt.flag, err, tt.wantErr)
			}
			if cfg.Logging.Level != tt.want {
				t.Errorf("logging.level = %q, want %q", cfg.Logging.Level, tt.want)
			}
		})
	}
}
