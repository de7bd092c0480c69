// Package application manages confirmed job applications.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
	"jobtracker_server/core/port/out"
	"jobtracker_server/pkg/apperr"
)

// Reconciler is told whenever the confirmed set changes.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// Service implements in.ApplicationService
type Service struct {
	repo       out.ApplicationRepository
	reconciler Reconciler
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(repo out.ApplicationRepository, reconciler Reconciler, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		reconciler: reconciler,
		log:        log.With().Str("component", "applications").Logger(),
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.ConfirmedApplication, error) {
	if filter.Status != "" {
		st, ok := domain.LookupStatus(string(filter.Status))
		if !ok {
			return nil, apperr.InvalidInput("status", "must be one of Applied, Interviewing, Offer, Rejected")
		}
		filter.Status = st
	}
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.DatabaseError("list applications", err)
	}
	return apps, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ConfirmedApplication, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.DatabaseError("get application", err)
	}
	if app == nil {
		return nil, apperr.NotFound("application")
	}
	return app, nil
}

func (s *Service) Create(ctx context.Context, app *domain.ConfirmedApplication) (*domain.ConfirmedApplication, error) {
	if app == nil {
		return nil, apperr.BadRequest("application is required")
	}

	app.Company = strings.TrimSpace(app.Company)
	app.Role = strings.TrimSpace(app.Role)
	if app.Company == "" {
		return nil, apperr.MissingField("company")
	}
	if app.Role == "" {
		return nil, apperr.MissingField("role")
	}

	if app.Status == "" {
		app.Status = domain.StatusApplied
	} else {
		st, ok := domain.LookupStatus(string(app.Status))
		if !ok {
			return nil, apperr.InvalidInput("status", fmt.Sprintf("unknown status %q", app.Status))
		}
		app.Status = st
	}

	now := s.now()
	date, err := normalizeDate(app.AppliedDate, now)
	if err != nil {
		return nil, err
	}
	app.AppliedDate = date

	app.ID = uuid.NewString()
	app.CreatedAt = now
	app.UpdatedAt = now

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, apperr.DatabaseError("create application", err)
	}

	s.log.Info().Str("id", app.ID).Str("company", app.Company).Msg("application created")
	s.reconcile(ctx)
	return app, nil
}

func (s *Service) Update(ctx context.Context, id string, patch *domain.ApplicationPatch) (*domain.ConfirmedApplication, error) {
	if patch == nil || patch.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Company != nil {
		v := strings.TrimSpace(*patch.Company)
		if v == "" {
			return nil, apperr.InvalidInput("company", "must not be empty")
		}
		app.Company = v
	}
	if patch.Role != nil {
		v := strings.TrimSpace(*patch.Role)
		if v == "" {
			return nil, apperr.InvalidInput("role", "must not be empty")
		}
		app.Role = v
	}
	if patch.Status != nil {
		st, ok := domain.LookupStatus(string(*patch.Status))
		if !ok {
			return nil, apperr.InvalidInput("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		app.Status = st
	}
	if patch.AppliedDate != nil {
		date, err := normalizeDate(*patch.AppliedDate, s.now())
		if err != nil {
			return nil, err
		}
		app.AppliedDate = date
	}
	if patch.Notes != nil {
		app.Notes = *patch.Notes
	}
	if patch.Link != nil {
		app.Link = strings.TrimSpace(*patch.Link)
	}
	app.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, app); err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("application")
		}
		return nil, apperr.DatabaseError("update application", err)
	}
	return app, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return apperr.NotFound("application")
		}
		return apperr.DatabaseError("delete application", err)
	}
	s.log.Info().Str("id", id).Msg("application deleted")
	return nil
}

// reconcile is best effort; a stale suggestion is cleaned up on the next load.
func (s *Service) reconcile(ctx context.Context) {
	if s.reconciler == nil {
		return
	}
	if err := s.reconciler.Reconcile(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to reconcile suggestions")
	}
}

// normalizeDate defaults an empty date to today and rejects anything but YYYY-MM-DD.
func normalizeDate(date string, now time.Time) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return now.Format(time.DateOnly), nil
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", apperr.InvalidInput("applied_date", "must be YYYY-MM-DD")
	}
	return t.Format(time.DateOnly), nil
}

var _ in.ApplicationService = (*Service)(nil)
