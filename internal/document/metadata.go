package document

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ShayCichocki/panel/internal/api"
	"github.com/ShayCichocki/panel/pkg/models"
)

// Placeholders used when a field cannot be found.
const (
	UnknownTitle     = "Unknown title"
	UnknownAuthors   = "Unknown authors"
	AbstractNotFound = "Abstract not found"
)

// MetadataChars is the default bound on text sent to the model for
// metadata extraction.
const MetadataChars = 15000

const notFound = "Not Found"

const metadataSystem = "You are an expert assistant for scientific literature analysis. Your output must be a single, valid JSON object."

const metadataPrompt = `Extract the title, the authors and the abstract from the beginning of the scientific paper below.

Return a JSON object with the keys "title", "authors" and "abstract".
- "title": the full title of the paper
- "authors": every author, separated by commas
- "abstract": the full text of the abstract

Use the value "Not Found" for anything you cannot find.

--- PAPER TEXT ---
%s
--- END OF TEXT ---

Return only the JSON object.`

var authorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)(?:Authors?|by|Autori|di):\s*([^\n]+)`),
	regexp.MustCompile(`(?m)^\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+(?:,\s*[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)*)`),
	regexp.MustCompile(`(?:^|\n)([A-Z][a-z]+\s+[A-Z]\.\s*[A-Z][a-z]+(?:,\s*[A-Z][a-z]+\s+[A-Z]\.\s*[A-Z][a-z]+)*)`),
}

var abstractPattern = regexp.MustCompile(`(?is)(?:Abstract|Summary|Riassunto|Sommario)[:.\n]\s*([^\n]+(?:\n[^\n]+)*?)(?:\n\n|\n[A-Z]|\n\d+\.|$)`)

// Metadata is the bibliographic header of a document.
type Metadata struct {
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Abstract string `json:"abstract"`
}

// authorList accepts either a string or a list of names.
type authorList string

func (a *authorList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = authorList(s)
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("authors: %w", err)
	}
	*a = authorList(strings.Join(names, ", "))
	return nil
}

type metadataReply struct {
	Title    string     `json:"title"`
	Authors  authorList `json:"authors"`
	Abstract string     `json:"abstract"`
}

// Analyzer derives DocumentInfo from document text.
type Analyzer struct {
	gen      api.Generator
	model    string
	maxChars int
	logger   *slog.Logger
}

// NewAnalyzer creates an Analyzer. With a nil generator only the regex
// extraction is used.
func NewAnalyzer(gen api.Generator, model string, logger *slog.Logger) *Analyzer {
	return &Analyzer{gen: gen, model: model, maxChars: MetadataChars, logger: logger.With("component", "document")}
}

// WithMaxChars sets how much leading text the model sees.
func (a *Analyzer) WithMaxChars(n int) *Analyzer {
	if n > 0 {
		a.maxChars = n
	}
	return a
}

// Analyze extracts metadata and sections from text. It never fails; fields
// that cannot be found hold placeholder values.
func (a *Analyzer) Analyze(ctx context.Context, text string) models.DocumentInfo {
	meta := a.extract(ctx, text)
	return models.DocumentInfo{
		Title:    meta.Title,
		Authors:  meta.Authors,
		Abstract: meta.Abstract,
		Sections: DetectSections(text),
		Chars:    len(text),
	}
}

func (a *Analyzer) extract(ctx context.Context, text string) Metadata {
	ai, ok := a.extractWithModel(ctx, text)
	if ok {
		a.logger.Info("extracted document metadata with model")
		return withDefaults(ai)
	}

	a.logger.Info("extracting document metadata with patterns")
	re := ExtractMetadata(text)
	merged := Metadata{
		Title:    prefer(re.Title, UnknownTitle, ai.Title),
		Authors:  prefer(re.Authors, UnknownAuthors, ai.Authors),
		Abstract: prefer(re.Abstract, AbstractNotFound, ai.Abstract),
	}
	return withDefaults(merged)
}

// extractWithModel asks the model for metadata. ok is false when the call
// fails or no usable title comes back; partial fields are still returned.
func (a *Analyzer) extractWithModel(ctx context.Context, text string) (Metadata, bool) {
	if a.gen == nil {
		return Metadata{}, false
	}

	resp, err := a.gen.Generate(ctx, api.Request{
		Model:       a.model,
		System:      metadataSystem,
		Prompt:      fmt.Sprintf(metadataPrompt, Excerpt(text, a.maxChars)),
		Temperature: 0,
		MaxTokens:   2000,
	})
	if err != nil {
		a.logger.Warn("model metadata extraction failed, falling back to patterns", "error", err)
		return Metadata{}, false
	}

	var reply metadataReply
	if err := api.ExtractJSON(resp.Text, &reply); err != nil {
		a.logger.Warn("unparseable metadata reply, falling back to patterns", "error", err)
		return Metadata{}, false
	}

	meta := Metadata{
		Title:    strings.TrimSpace(reply.Title),
		Authors:  strings.TrimSpace(string(reply.Authors)),
		Abstract: strings.TrimSpace(reply.Abstract),
	}
	if meta.Title == "" || meta.Title == notFound || meta.Title == UnknownTitle {
		a.logger.Warn("model found no title, falling back to patterns")
		return meta, false
	}
	return meta, true
}

// ExtractMetadata finds metadata with patterns alone. The title is the
// first non-blank line.
func ExtractMetadata(text string) Metadata {
	meta := Metadata{Title: UnknownTitle, Authors: UnknownAuthors, Abstract: AbstractNotFound}

	for _, line := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			meta.Title = l
			break
		}
	}

	for _, re := range authorPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			meta.Authors = strings.TrimSpace(m[1])
			break
		}
	}

	if m := abstractPattern.FindStringSubmatch(text); m != nil {
		meta.Abstract = strings.TrimSpace(m[1])
	}
	return meta
}

// prefer returns primary unless it is the placeholder, then fallback if
// set.
func prefer(primary, placeholder, fallback string) string {
	if primary != placeholder {
		return primary
	}
	if fallback != "" && fallback != notFound {
		return fallback
	}
	return placeholder
}

func withDefaults(m Metadata) Metadata {
	if m.Title == "" || m.Title == notFound {
		m.Title = UnknownTitle
	}
	if m.Authors == "" || m.Authors == notFound {
		m.Authors = UnknownAuthors
	}
	if m.Abstract == "" || m.Abstract == notFound {
		m.Abstract = AbstractNotFound
	}
	return m
}
