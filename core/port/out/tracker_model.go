package out

import (
	"context"

	"jobtracker_server/core/domain"
)

// RelevanceClassifier answers whether an email is about a job application.
type RelevanceClassifier interface {
	IsJobRelated(ctx context.Context, emailContent string) (bool, error)
}

// Summarizer extracts summary, action items and status from an email.
type Summarizer interface {
	Summarize(ctx context.Context, emailContent string) (*domain.AISummary, error)
}
