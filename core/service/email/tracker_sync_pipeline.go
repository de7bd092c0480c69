// Package email runs the mailbox sync pipeline.
package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
	"jobtracker_server/core/port/out"
	"jobtracker_server/core/service/classification"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/metrics"
)

// SessionProvider resolves the currently connected mailbox.
type SessionProvider interface {
	Session(ctx context.Context) (*domain.MailboxSession, error)
}

// RefsProvider exposes the confirmed-application ids.
type RefsProvider interface {
	ConfirmedRefs(ctx context.Context) (*domain.ConfirmedRefs, error)
}

// ResultSink is told about every connected result before it is emitted.
type ResultSink interface {
	SyncCompleted(ctx context.Context, session *domain.MailboxSession, result *domain.SyncResult)
}

type PipelineConfig struct {
	MaxMessages     int
	FetchWindow     int
	AcceptAnyWindow int
	Query           string
	EventBuffer     int
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxMessages:     100,
		FetchWindow:     80,
		AcceptAnyWindow: 10,
		Query:           "newer_than:90d",
		EventBuffer:     16,
	}
}

// SyncPipeline turns the recent mailbox window into suggestions.
type SyncPipeline struct {
	sessions   SessionProvider
	mailbox    out.MailboxProvider
	classifier out.RelevanceClassifier
	summarizer out.Summarizer
	refs       RefsProvider
	reports    out.SyncReportRepository
	sink       ResultSink

	cfg   PipelineConfig
	tiers []classification.Tier
	log   zerolog.Logger
	now   func() time.Time
}

func NewSyncPipeline(
	sessions SessionProvider,
	mailbox out.MailboxProvider,
	classifier out.RelevanceClassifier,
	summarizer out.Summarizer,
	refs RefsProvider,
	cfg PipelineConfig,
	log zerolog.Logger,
) *SyncPipeline {
	def := DefaultPipelineConfig()
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = def.MaxMessages
	}
	if cfg.FetchWindow <= 0 {
		cfg.FetchWindow = def.FetchWindow
	}
	if cfg.AcceptAnyWindow <= 0 {
		cfg.AcceptAnyWindow = def.AcceptAnyWindow
	}
	if cfg.Query == "" {
		cfg.Query = def.Query
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}

	return &SyncPipeline{
		sessions:   sessions,
		mailbox:    mailbox,
		classifier: classifier,
		summarizer: summarizer,
		refs:       refs,
		cfg:        cfg,
		tiers:      classification.DefaultTiers(cfg.AcceptAnyWindow),
		log:        log.With().Str("component", "sync_pipeline").Logger(),
		now:        time.Now,
	}
}

// WithReports stores a report of every run.
func (p *SyncPipeline) WithReports(reports out.SyncReportRepository) *SyncPipeline {
	p.reports = reports
	return p
}

// WithSink registers the receiver of connected results.
func (p *SyncPipeline) WithSink(sink ResultSink) *SyncPipeline {
	p.sink = sink
	return p
}

// Sync starts a run and returns its event stream. Cancelling ctx only stops
// delivery; the run and its provider calls finish on a detached context.
func (p *SyncPipeline) Sync(ctx context.Context, opts domain.SyncOptions) <-chan domain.SyncEvent {
	progress := NewProgress(p.cfg.EventBuffer, ctx.Done())
	go p.run(context.WithoutCancel(ctx), opts, progress)
	return progress.Events()
}

func (p *SyncPipeline) run(ctx context.Context, opts domain.SyncOptions, progress *Progress) {
	started := p.now()
	debug := &domain.SyncDebug{}

	report := &domain.SyncReport{
		ID:        uuid.NewString(),
		StartedAt: started,
		Debug:     debug,
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("sync pipeline panicked")
			report.Outcome = metrics.OutcomeFailed
			report.Error = fmt.Sprintf("internal error: %v", r)
			p.finish(ctx, report)
			progress.Fail("Sync failed: internal error")
		}
	}()

	session, result, err := p.execute(ctx, opts, progress, debug)
	if session != nil {
		report.MailboxIdentity = session.Identity
	}

	if err != nil {
		report.Outcome = metrics.OutcomeFailed
		report.Error = err.Error()
		p.finish(ctx, report)
		p.log.Error().Err(err).Msg("sync failed")
		progress.Fail(userMessage(err))
		return
	}

	report.Connected = result.Connected
	report.SuggestionCount = len(result.Suggestions)
	switch {
	case !result.Connected:
		report.Outcome = metrics.OutcomeDisconnected
	case debug.ListedCount == 0:
		report.Outcome = metrics.OutcomeEmpty
	default:
		report.Outcome = metrics.OutcomeSuccess
	}
	p.finish(ctx, report)

	if !opts.Debug {
		result.Debug = nil
	}
	if result.Connected && p.sink != nil {
		p.sink.SyncCompleted(ctx, session, result)
	}
	progress.Complete(result)
}

func (p *SyncPipeline) finish(ctx context.Context, report *domain.SyncReport) {
	report.FinishedAt = p.now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	metrics.SyncRunsTotal.WithLabelValues(report.Outcome).Inc()
	metrics.SyncDuration.Observe(report.Duration.Seconds())

	p.log.Info().
		Str("outcome", report.Outcome).
		Int("suggestions", report.SuggestionCount).
		Dur("duration", report.Duration).
		Msg("sync finished")

	if p.reports == nil {
		return
	}
	if err := p.reports.Save(ctx, report); err != nil {
		p.log.Warn().Err(err).Msg("failed to save sync report")
	}
}

func (p *SyncPipeline) execute(ctx context.Context, opts domain.SyncOptions, progress *Progress, debug *domain.SyncDebug) (*domain.MailboxSession, *domain.SyncResult, error) {
	disconnected := &domain.SyncResult{Connected: false, Suggestions: []*domain.Suggestion{}, Debug: debug}

	session, err := p.sessions.Session(ctx)
	if err != nil || session == nil {
		if err != nil {
			debug.AddError("session", codeOf(err, apperr.CodeMailboxUnavailable), "", err.Error())
		}
		return nil, disconnected, nil
	}

	limit := opts.MaxMessages
	if limit <= 0 {
		limit = p.cfg.MaxMessages
	}

	// 1. list
	progress.Status("Listing inbox messages…")
	ids, err := p.mailbox.ListRecentMessageIDs(ctx, session, limit, p.cfg.Query)
	if err != nil {
		var perr *out.ProviderError
		if errors.As(err, &perr) && perr.IsAuth() {
			debug.AddError("list", apperr.CodeMailboxUnavailable, "", err.Error())
			return session, disconnected, nil
		}
		return session, nil, apperr.SyncFailed("listing messages", err)
	}
	debug.ListedCount = len(ids)
	metrics.StageMessages.WithLabelValues(metrics.StageListed).Add(float64(len(ids)))

	if len(ids) == 0 {
		debug.Note = apperr.ErrEmptyMailbox.Message
		return session, &domain.SyncResult{Connected: true, Suggestions: []*domain.Suggestion{}, Debug: debug}, nil
	}

	// 2. fetch + heuristic filter
	window := ids
	if len(window) > p.cfg.FetchWindow {
		window = window[:p.cfg.FetchWindow]
	}
	progress.Status(fmt.Sprintf("Reading %d emails…", len(window)))

	msgs := p.fetchAll(ctx, session, window, debug)
	debug.FetchedCount = len(msgs)
	metrics.StageMessages.WithLabelValues(metrics.StageFetched).Add(float64(len(msgs)))

	candidates, tier := p.selectCandidates(msgs)
	debug.Tier = tier
	debug.KeywordMatchedCount = len(candidates)
	metrics.StageMessages.WithLabelValues(metrics.StageKeyword).Add(float64(len(candidates)))

	refs := p.confirmedRefs(ctx, debug)
	before := len(candidates)
	candidates = CrossReferenceCandidates(candidates, refs)
	debug.CrossReferencedCount = before - len(candidates)

	progress.Status(fmt.Sprintf("Keyword-matched %d emails, classifying with AI…", len(candidates)))

	// 3. classify
	errs := &stageErrors{debug: debug}
	classified := p.classifyAll(ctx, candidates, progress, errs)
	debug.AIClassifiedCount = len(classified)
	metrics.StageMessages.WithLabelValues(metrics.StageClassified).Add(float64(len(classified)))

	// 4. summarize
	if len(classified) > 0 {
		progress.Status(fmt.Sprintf("Summarizing %d emails…", len(classified)))
	}
	suggestions := p.summarizeAll(ctx, classified, progress, errs)
	for _, s := range suggestions {
		if s.AIProcessed {
			debug.SummarizedCount++
		}
	}
	metrics.StageMessages.WithLabelValues(metrics.StageSummarized).Add(float64(debug.SummarizedCount))

	// 5. confirmed set may have changed while the model stages ran
	if latest := p.confirmedRefs(ctx, debug); latest != nil {
		refs = latest
	}
	before = len(suggestions)
	suggestions = CrossReference(suggestions, refs)
	debug.CrossReferencedCount += before - len(suggestions)
	metrics.StageMessages.WithLabelValues(metrics.StageFinal).Add(float64(len(suggestions)))

	return session, &domain.SyncResult{Connected: true, Suggestions: suggestions, Debug: debug}, nil
}

func (p *SyncPipeline) fetchAll(ctx context.Context, session *domain.MailboxSession, ids []string, debug *domain.SyncDebug) []*domain.NormalizedMessage {
	msgs := make([]*domain.NormalizedMessage, 0, len(ids))
	for _, id := range ids {
		raw, err := p.mailbox.GetFullMessage(ctx, session, id)
		if err != nil {
			p.log.Warn().Err(err).Str("message_id", id).Msg("failed to fetch message")
			metrics.ProviderFailures.WithLabelValues("fetch").Inc()
			fetchErr := apperr.MessageFetchFailed(id, err)
			debug.AddError("fetch", fetchErr.Code, id, fetchErr.Error())
			continue
		}
		msgs = append(msgs, Normalize(raw))
	}
	return msgs
}

// selectCandidates evaluates the tiers in order and returns the first non-empty result.
func (p *SyncPipeline) selectCandidates(msgs []*domain.NormalizedMessage) ([]*domain.Candidate, domain.SyncTier) {
	now := p.now()
	for _, tier := range p.tiers {
		dedup := NewThreadDeduper()
		var found []*domain.Candidate
		for _, m := range tier.Apply(msgs) {
			c := classification.Evaluate(m, tier.Match, now)
			if c == nil || !dedup.Add(c) {
				continue
			}
			found = append(found, c)
		}
		if len(found) > 0 {
			return found, tier.Name
		}
	}
	return nil, domain.TierNone
}

func (p *SyncPipeline) confirmedRefs(ctx context.Context, debug *domain.SyncDebug) *domain.ConfirmedRefs {
	if p.refs == nil {
		return nil
	}
	refs, err := p.refs.ConfirmedRefs(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to load confirmed applications")
		refErr := apperr.CrossReferenceFailed(err)
		debug.AddError("cross_reference", refErr.Code, "", refErr.Error())
		return nil
	}
	return refs
}

// codeOf returns the taxonomy code carried by err, or fallback.
func codeOf(err error, fallback string) string {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

func userMessage(err error) string {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
		return appErr.Message
	}
	return err.Error()
}

var _ in.SyncService = (*SyncPipeline)(nil)
