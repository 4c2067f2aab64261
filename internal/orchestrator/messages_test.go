package orchestrator

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/panel/pkg/models"
)

func TestRenderReviews(t *testing.T) {
	results := models.ResultMap{
		models.TaskResults:     {TaskID: models.TaskResults, Content: "solid results"},
		models.TaskMethodology: {TaskID: models.TaskMethodology, Content: "sound methods"},
		models.TaskEthics: {TaskID: models.TaskEthics, Failure: &models.TaskFailure{
			Kind: models.FailureExhaustedRetries, Message: "timeout",
		}},
	}
	order := []models.TaskID{models.TaskMethodology, models.TaskResults, models.TaskLiterature, models.TaskEthics}

	got := RenderReviews(results, order)
	want := "=== METHODOLOGY REVIEW ===\nsound methods\n\n" +
		"=== RESULTS REVIEW ===\nsolid results\n\n" +
		"=== ETHICS REVIEW ===\nError during review: timeout"
	if got != want {
		t.Errorf("RenderReviews() =\n%q\nwant\n%q", got, want)
	}
}

func TestFanInInputs(t *testing.T) {
	results := models.ResultMap{
		models.TaskMethodology: {TaskID: models.TaskMethodology, Content: "m"},
	}
	order := []models.TaskID{models.TaskMethodology}

	tests := []struct {
		name   string
		build  func(models.ResultMap, []models.TaskID) string
		prefix string
		suffix string
	}{
		{"aggregate", AggregateInput, "Here are all the expert reviews for the paper:\n\n", "coordinator assessment based on all these reviews."},
		{"summary", SummaryInput, "Here are all the expert reviews and the coordinator's assessment for the paper:\n\n", "two requested summaries as per your instructions."},
		{"decision", DecisionInput, "Here are all the reviews including the coordinator's assessment:\n\n", "editorial decision based on all these reviews."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build(results, order)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("missing prefix in %q", got)
			}
			if !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("missing suffix in %q", got)
			}
			if !strings.Contains(got, "=== METHODOLOGY REVIEW ===\nm\n\n") {
				t.Errorf("missing review block in %q", got)
			}
		})
	}
}

func TestInitialPayload(t *testing.T) {
	info := models.DocumentInfo{Title: "Deep Things", Authors: "Ada, Bob", Abstract: "We study things."}
	got := InitialPayload(info, "BODY TEXT")

	for _, want := range []string{
		"Title: Deep Things\n",
		"Authors: Ada, Bob\n",
		"Abstract: We study things.\n",
		"All reviewers should provide their comments IN ENGLISH.",
		"The paper content is as follows:\n\nBODY TEXT\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"abcdef", 3, "abc"},
		{"abc", 10, "abc"},
		{"héllo", 2, "hé"},
		{"abc", 0, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := excerpt(tt.text, tt.n); got != tt.want {
			t.Errorf("excerpt(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}
