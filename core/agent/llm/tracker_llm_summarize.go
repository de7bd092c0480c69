package llm

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/textutil"
)

const (
	summarizeMaxContent = 2000
	maxSummaryRunes     = 240
	maxActionItems      = 3
	defaultSummaryText  = "Processed by AI"
)

const summarizeSystemPrompt = `You are a job application assistant. Analyze this job-related email and extract:
1. A concise 1-line summary (max 20 words)
2. Up to 3 action items
3. The application status: one of [Applied, Interviewing, Offer, Rejected]

Respond in JSON format:
{"summary": "...", "actionItems": ["..."], "suggestedStatus": "Applied"}`

// Summarizer turns one email into a summary, action items and a status.
type Summarizer struct {
	llm Completer
}

func NewSummarizer(llm Completer) *Summarizer {
	return &Summarizer{llm: llm}
}

var _ out.Summarizer = (*Summarizer)(nil)

func (s *Summarizer) Summarize(ctx context.Context, emailContent string) (*domain.AISummary, error) {
	if strings.TrimSpace(emailContent) == "" {
		return &domain.AISummary{
			Summary:     "Empty email",
			ActionItems: []string{},
			Status:      domain.StatusApplied,
		}, nil
	}

	text, err := s.llm.CompleteWithSystem(ctx, summarizeSystemPrompt, textutil.Truncate(emailContent, summarizeMaxContent))
	if err != nil {
		return nil, err
	}
	return ParseSummary(text)
}

// ParseSummary extracts and validates the summary payload from raw model output.
func ParseSummary(text string) (*domain.AISummary, error) {
	block, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return nil, apperr.MalformedModelOutput("summary payload is not a JSON object")
	}

	summary := strings.TrimSpace(textutil.CollapseWhitespace(stringField(fields, "summary")))
	if summary == "" {
		summary = defaultSummaryText
	}

	status := stringField(fields, "suggestedStatus", "suggested_status")
	if status == "" {
		status = stringField(fields, "status")
	}

	return &domain.AISummary{
		Summary:     textutil.Truncate(summary, maxSummaryRunes),
		ActionItems: actionItems(fields),
		Status:      domain.ParseStatus(status),
	}, nil
}

// stringField returns the first key present as a string. Values of other types are ignored.
func stringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return ""
}

// actionItems accepts either a list of strings or a single string.
func actionItems(fields map[string]json.RawMessage) []string {
	var raw json.RawMessage
	for _, k := range []string{"actionItems", "action_items"} {
		if v, ok := fields[k]; ok {
			raw = v
			break
		}
	}

	var list []string
	if raw != nil {
		if json.Unmarshal(raw, &list) != nil {
			var single string
			if json.Unmarshal(raw, &single) == nil {
				list = []string{single}
			}
		}
	}

	items := make([]string, 0, maxActionItems)
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
		if len(items) == maxActionItems {
			break
		}
	}
	return items
}
