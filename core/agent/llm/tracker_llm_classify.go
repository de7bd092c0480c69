package llm

import (
	"context"
	"strings"

	"jobtracker_server/core/port/out"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/textutil"
)

const classifyMaxContent = 1500

const classifySystemPrompt = `You classify emails for a personal job application tracker.
Answer YES when the email is about the recipient's own job application: an application
confirmation, an interview or assessment invitation, an offer, a rejection, or a recruiter
following up on a specific role.
Answer NO for newsletters, job alerts, marketing, social notifications and anything else.
Reply with exactly one word: YES or NO.`

// Classifier answers the yes/no relevance question with one completion.
type Classifier struct {
	llm Completer
}

func NewClassifier(llm Completer) *Classifier {
	return &Classifier{llm: llm}
}

var _ out.RelevanceClassifier = (*Classifier)(nil)

func (c *Classifier) IsJobRelated(ctx context.Context, emailContent string) (bool, error) {
	answer, err := c.llm.CompleteWithSystem(ctx, classifySystemPrompt, textutil.Truncate(emailContent, classifyMaxContent))
	if err != nil {
		return false, err
	}
	return ParseYesNo(answer)
}

// ParseYesNo reads the first word of a model answer.
func ParseYesNo(answer string) (bool, error) {
	word := strings.TrimSpace(answer)
	word = strings.TrimLeft(word, "`*\"' ")
	if i := strings.IndexFunc(word, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}); i >= 0 {
		word = word[:i]
	}

	switch strings.ToUpper(word) {
	case "YES", "TRUE":
		return true, nil
	case "NO", "FALSE":
		return false, nil
	}
	return false, apperr.MalformedModelOutput("classifier answer is neither YES nor NO").
		WithDetail("answer", textutil.Truncate(answer, 80))
}
