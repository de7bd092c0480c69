package email

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jobtracker_server/core/domain"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/metrics"
	"jobtracker_server/pkg/textutil"
)

const (
	fallbackSummaryRunes = 100
	fallbackActionItem   = "Review email manually"

	stageClassify  = "classify"
	stageSummarize = "summarize"
)

// stageErrors collects provider failures from concurrent calls.
type stageErrors struct {
	mu            sync.Mutex
	debug         *domain.SyncDebug
	notConfigured bool
}

func (e *stageErrors) add(stage, messageID string, err error) {
	metrics.ProviderFailures.WithLabelValues(stage).Inc()

	e.mu.Lock()
	defer e.mu.Unlock()
	if errors.Is(err, apperr.ErrModelNotConfigured) {
		if e.notConfigured {
			return
		}
		e.notConfigured = true
		e.debug.AddError(stage, apperr.CodeModelNotConfigured, "", err.Error())
		return
	}
	stageErr := stageError(stage, messageID, err)
	e.debug.AddError(stage, stageErr.Code, messageID, stageErr.Error())
}

// stageError wraps a model failure in its stage code. Malformed output keeps its own code.
func stageError(stage, messageID string, err error) *apperr.AppError {
	var wrapped *apperr.AppError
	if stage == stageSummarize {
		wrapped = apperr.SummarizationFailed(messageID, err)
	} else {
		wrapped = apperr.ClassificationFailed(messageID, err)
	}
	if apperr.HasCode(err, apperr.CodeMalformedModelOutput) {
		wrapped.Code = apperr.CodeMalformedModelOutput
	}
	return wrapped
}

// classifyAll asks the classifier about every candidate at once and keeps the
// relevant ones in input order. Any classifier error keeps the candidate.
func (p *SyncPipeline) classifyAll(ctx context.Context, candidates []*domain.Candidate, progress *Progress, errs *stageErrors) []*domain.Candidate {
	total := len(candidates)
	keep := make([]bool, total)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c *domain.Candidate) {
			defer wg.Done()

			related, err := p.classifier.IsJobRelated(ctx, c.EmailContent)
			if err != nil {
				p.log.Warn().Err(err).Str("message_id", c.MessageID).Msg("classifier failed, keeping candidate")
				errs.add(stageClassify, c.MessageID, err)
				related = true
			} else if !related {
				p.log.Debug().Str("subject", c.Subject).Msg("classifier rejected candidate")
			}
			keep[i] = related

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			progress.Status(fmt.Sprintf("Classifying… %d/%d", n, total))
		}(i, c)
	}
	wg.Wait()

	kept := make([]*domain.Candidate, 0, total)
	for i, c := range candidates {
		if keep[i] {
			kept = append(kept, c)
		}
	}
	return kept
}

// summarizeAll summarizes every candidate at once. Failures fall back to a
// heuristic suggestion with AIProcessed=false.
func (p *SyncPipeline) summarizeAll(ctx context.Context, candidates []*domain.Candidate, progress *Progress, errs *stageErrors) []*domain.Suggestion {
	total := len(candidates)
	out := make([]*domain.Suggestion, total)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c *domain.Candidate) {
			defer wg.Done()

			summary, err := p.summarizer.Summarize(ctx, c.EmailContent)
			if err == nil && summary == nil {
				err = apperr.MalformedModelOutput("summarizer returned no payload")
			}
			if err != nil {
				p.log.Warn().Err(err).Str("message_id", c.MessageID).Msg("summarizer failed, using heuristic fallback")
				errs.add(stageSummarize, c.MessageID, err)
				out[i] = fallbackSuggestion(c)
			} else {
				out[i] = processedSuggestion(c, summary)
			}

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			progress.Status(fmt.Sprintf("Summarizing… %d/%d", n, total))
		}(i, c)
	}
	wg.Wait()

	return out
}

func processedSuggestion(c *domain.Candidate, summary *domain.AISummary) *domain.Suggestion {
	s := &domain.Suggestion{
		Candidate:       *c,
		AISummary:       summary.Summary,
		AIActionItems:   append([]string{}, summary.ActionItems...),
		HeuristicStatus: c.Status,
		AIProcessed:     true,
	}
	s.Status = domain.ParseStatus(string(summary.Status))
	return s
}

func fallbackSuggestion(c *domain.Candidate) *domain.Suggestion {
	return &domain.Suggestion{
		Candidate:       *c,
		AISummary:       textutil.Truncate(c.EmailContent, fallbackSummaryRunes) + "...",
		AIActionItems:   []string{fallbackActionItem},
		HeuristicStatus: c.Status,
		AIProcessed:     false,
	}
}
