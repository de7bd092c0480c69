package out

import (
	"context"
	"errors"

	"jobtracker_server/core/domain"
)

// ErrNotFound is returned by Update and Delete for unknown ids.
var ErrNotFound = errors.New("not found")

// ApplicationRepository stores confirmed applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.ConfirmedApplication) error
	// Get returns (nil, nil) when the id is unknown.
	Get(ctx context.Context, id string) (*domain.ConfirmedApplication, error)
	List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.ConfirmedApplication, error)
	Update(ctx context.Context, app *domain.ConfirmedApplication) error
	Delete(ctx context.Context, id string) error

	// ConfirmedRefs returns the thread and message ids of every stored record.
	ConfirmedRefs(ctx context.Context) (*domain.ConfirmedRefs, error)
}

// SuggestionCacheStore persists the last suggestion list.
// Load returns (nil, nil) when nothing is stored.
type SuggestionCacheStore interface {
	Load(ctx context.Context) (*domain.CacheEntry, error)
	Save(ctx context.Context, entry *domain.CacheEntry) error
	Clear(ctx context.Context) error
}

// SyncReportRepository keeps a history of sync runs.
type SyncReportRepository interface {
	Save(ctx context.Context, report *domain.SyncReport) error
	Recent(ctx context.Context, limit int) ([]*domain.SyncReport, error)
}
