package orchestrator

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/panel/pkg/models"
)

// LargePayloadChars is the payload size above which a run logs a note.
// Payloads are never truncated.
const LargePayloadChars = 25000

const initialPayloadTemplate = `Paper to be analyzed:

Title: %s
Authors: %s
Abstract: %s

Please conduct a comprehensive and thorough review of this scientific paper.
All reviewers should provide their comments IN ENGLISH.
Each reviewer should analyze the paper from their own expert perspective.

The paper content is as follows:

%s
`

// InitialPayload builds the message every primary task receives.
func InitialPayload(info models.DocumentInfo, text string) string {
	return fmt.Sprintf(initialPayloadTemplate, info.Title, info.Authors, info.Abstract, text)
}

// RenderReviews concatenates results in order as labelled blocks. Failed
// entries contribute their error text so a missing review is never silent.
func RenderReviews(results models.ResultMap, order []models.TaskID) string {
	var b strings.Builder
	for i, r := range results.Ordered(order) {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "=== %s REVIEW ===\n%s", r.TaskID.Upper(), r.Text())
	}
	return b.String()
}

// AggregateInput is the coordinator's message: every primary review.
func AggregateInput(results models.ResultMap, order []models.TaskID) string {
	return "Here are all the expert reviews for the paper:\n\n" +
		RenderReviews(results, order) +
		"\n\nPlease provide your comprehensive coordinator assessment based on all these reviews."
}

// SummaryInput is the summarizer's message: primaries plus the coordinator.
func SummaryInput(results models.ResultMap, order []models.TaskID) string {
	return "Here are all the expert reviews and the coordinator's assessment for the paper:\n\n" +
		RenderReviews(results, order) +
		"\n\nPlease provide the two requested summaries as per your instructions."
}

// DecisionInput is the editor's message: every prior result.
func DecisionInput(results models.ResultMap, order []models.TaskID) string {
	return "Here are all the reviews including the coordinator's assessment:\n\n" +
		RenderReviews(results, order) +
		"\n\nPlease provide your editorial decision based on all these reviews."
}

// excerpt returns at most n runes of text.
func excerpt(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
