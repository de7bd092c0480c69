package in

import (
	"context"

	"jobtracker_server/core/domain"
)

// SyncService runs the mailbox pipeline. The returned channel yields status
// events then exactly one terminal event, and is closed after it.
type SyncService interface {
	Sync(ctx context.Context, opts domain.SyncOptions) <-chan domain.SyncEvent
}

type ApplicationService interface {
	List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.ConfirmedApplication, error)
	Get(ctx context.Context, id string) (*domain.ConfirmedApplication, error)
	Create(ctx context.Context, app *domain.ConfirmedApplication) (*domain.ConfirmedApplication, error)
	Update(ctx context.Context, id string, patch *domain.ApplicationPatch) (*domain.ConfirmedApplication, error)
	Delete(ctx context.Context, id string) error
}

type SuggestionService interface {
	// Load restores the cached list for the currently connected mailbox.
	Load(ctx context.Context) ([]*domain.Suggestion, error)
	Current() []*domain.Suggestion
	Accept(ctx context.Context, messageID string, overrides domain.AcceptOverrides) (*domain.ConfirmedApplication, error)
	AcceptAll(ctx context.Context) ([]*domain.ConfirmedApplication, error)
	Dismiss(ctx context.Context, messageID string) error
	Reconcile(ctx context.Context) error
}

type OAuthService interface {
	IsConfigured() bool
	// NewState issues a state parameter; ConsumeState accepts it once on the callback.
	NewState(frontend string) string
	ConsumeState(state string) bool
	AuthURL(state string) (string, error)
	HandleCallback(ctx context.Context, code string) (string, error)
	// Session returns apperr MAILBOX_UNAVAILABLE when no usable token is stored.
	Session(ctx context.Context) (*domain.MailboxSession, error)
	Status(ctx context.Context) *domain.MailboxStatus
	Disconnect(ctx context.Context) error
}
