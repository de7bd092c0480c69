// Package suggestion holds the reviewable suggestion list between syncs.
package suggestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
	"jobtracker_server/core/port/out"
	"jobtracker_server/core/service/email"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/metrics"
)

// ApplicationCreator confirms a suggestion into the application store.
type ApplicationCreator interface {
	Create(ctx context.Context, app *domain.ConfirmedApplication) (*domain.ConfirmedApplication, error)
}

type Service struct {
	// acceptMu serialises Accept and AcceptAll so a suggestion is confirmed once.
	acceptMu sync.Mutex

	mu       sync.Mutex
	list     []*domain.Suggestion
	identity string

	store    out.SuggestionCacheStore
	refs     email.RefsProvider
	sessions email.SessionProvider
	creator  ApplicationCreator
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(
	store out.SuggestionCacheStore,
	refs email.RefsProvider,
	sessions email.SessionProvider,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:    store,
		refs:     refs,
		sessions: sessions,
		log:      log.With().Str("component", "suggestions").Logger(),
		now:      time.Now,
	}
}

// SetCreator wires the application service. It is set after construction
// because the application service reconciles back into this one.
func (s *Service) SetCreator(creator ApplicationCreator) {
	s.creator = creator
}

// Load restores the persisted list for the connected mailbox. An entry saved
// for another mailbox is discarded.
func (s *Service) Load(ctx context.Context) ([]*domain.Suggestion, error) {
	identity := ""
	if s.sessions != nil {
		if session, err := s.sessions.Session(ctx); err == nil && session != nil {
			identity = session.Identity
		}
	}

	entry, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion cache: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !entry.ValidFor(identity) {
		if entry != nil {
			s.log.Info().
				Str("cached_for", entry.MailboxIdentity).
				Str("connected", identity).
				Msg("discarding suggestion cache of another mailbox")
			metrics.SuggestionActions.WithLabelValues(metrics.ActionDiscard).Inc()
			if err := s.store.Clear(ctx); err != nil {
				s.log.Warn().Err(err).Msg("failed to clear suggestion cache")
			}
		}
		s.list = nil
		s.identity = identity
		return []*domain.Suggestion{}, nil
	}

	s.identity = identity
	s.list = entry.Suggestions
	if refs := s.confirmedRefs(ctx); refs != nil {
		before := len(s.list)
		s.list = email.CrossReference(s.list, refs)
		if len(s.list) != before {
			s.persistLocked(ctx)
		}
	}
	return s.snapshotLocked(), nil
}

// Current returns a copy of the in-memory list.
func (s *Service) Current() []*domain.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SyncCompleted replaces the list with the result of a connected sync.
func (s *Service) SyncCompleted(ctx context.Context, session *domain.MailboxSession, result *domain.SyncResult) {
	if result == nil || !result.Connected {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = append([]*domain.Suggestion(nil), result.Suggestions...)
	if session != nil {
		s.identity = session.Identity
	}
	s.persistLocked(ctx)
}

// Accept confirms one suggestion and drops it, with any sibling of the same
// conversation, from the list.
func (s *Service) Accept(ctx context.Context, messageID string, overrides domain.AcceptOverrides) (*domain.ConfirmedApplication, error) {
	s.acceptMu.Lock()
	defer s.acceptMu.Unlock()

	sg := s.find(messageID)
	if sg == nil {
		return nil, apperr.NotFound("suggestion")
	}

	app, err := s.confirm(ctx, sg, overrides)
	if err != nil {
		return nil, err
	}

	refs := domain.NewConfirmedRefs()
	refs.Add(app.ThreadID, app.MessageID)
	s.prune(ctx, refs)

	metrics.SuggestionActions.WithLabelValues(metrics.ActionAccept).Inc()
	return app, nil
}

// AcceptAll confirms every pending suggestion in order. On failure the ones
// already confirmed are returned with the error and removed from the list.
func (s *Service) AcceptAll(ctx context.Context) ([]*domain.ConfirmedApplication, error) {
	s.acceptMu.Lock()
	defer s.acceptMu.Unlock()

	pending := s.Current()
	refs := domain.NewConfirmedRefs()
	created := make([]*domain.ConfirmedApplication, 0, len(pending))

	var firstErr error
	for _, sg := range pending {
		if refs.Contains(sg.ThreadID, sg.MessageID) {
			continue
		}
		app, err := s.confirm(ctx, sg, domain.AcceptOverrides{})
		if err != nil {
			firstErr = err
			break
		}
		refs.Add(app.ThreadID, app.MessageID)
		created = append(created, app)
	}

	if len(created) > 0 {
		s.prune(ctx, refs)
		metrics.SuggestionActions.WithLabelValues(metrics.ActionAccept).Add(float64(len(created)))
	}
	return created, firstErr
}

// Dismiss drops a suggestion without confirming it.
func (s *Service) Dismiss(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sg := range s.list {
		if sg.MessageID == messageID {
			s.list = append(s.list[:i:i], s.list[i+1:]...)
			s.persistLocked(ctx)
			metrics.SuggestionActions.WithLabelValues(metrics.ActionDismiss).Inc()
			return nil
		}
	}
	return apperr.NotFound("suggestion")
}

// Reconcile removes suggestions that became confirmed through the applications API.
func (s *Service) Reconcile(ctx context.Context) error {
	refs, err := s.refs.ConfirmedRefs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load confirmed applications: %w", err)
	}
	if removed := s.prune(ctx, refs); removed > 0 {
		metrics.SuggestionActions.WithLabelValues(metrics.ActionReconcile).Add(float64(removed))
	}
	return nil
}

func (s *Service) confirm(ctx context.Context, sg *domain.Suggestion, overrides domain.AcceptOverrides) (*domain.ConfirmedApplication, error) {
	if s.creator == nil {
		return nil, apperr.Internal("application store is not wired")
	}
	app, err := s.creator.Create(ctx, domain.FromSuggestion(sg, overrides))
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("message_id", sg.MessageID).
		Str("company", app.Company).
		Str("role", app.Role).
		Msg("suggestion accepted")
	return app, nil
}

func (s *Service) find(messageID string) *domain.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sg := range s.list {
		if sg.MessageID == messageID {
			return sg
		}
	}
	return nil
}

// prune cross-references the list against refs and rewrites the store when
// anything was removed.
func (s *Service) prune(ctx context.Context, refs *domain.ConfirmedRefs) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.list)
	s.list = email.CrossReference(s.list, refs)
	removed := before - len(s.list)
	if removed > 0 {
		s.persistLocked(ctx)
	}
	return removed
}

func (s *Service) confirmedRefs(ctx context.Context) *domain.ConfirmedRefs {
	if s.refs == nil {
		return nil
	}
	refs, err := s.refs.ConfirmedRefs(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load confirmed applications")
		return nil
	}
	return refs
}

func (s *Service) persistLocked(ctx context.Context) {
	entry := &domain.CacheEntry{
		Suggestions:     s.snapshotLocked(),
		SavedAt:         s.now(),
		MailboxIdentity: s.identity,
	}
	if err := s.store.Save(ctx, entry); err != nil {
		s.log.Warn().Err(err).Msg("failed to save suggestion cache")
	}
}

func (s *Service) snapshotLocked() []*domain.Suggestion {
	list := make([]*domain.Suggestion, len(s.list))
	copy(list, s.list)
	return list
}

var (
	_ in.SuggestionService = (*Service)(nil)
	_ email.ResultSink     = (*Service)(nil)
)
