package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", filepath.Join(t.TempDir(), "test.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func testApplication(id, company string, status domain.Status, date string) *domain.ConfirmedApplication {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	return &domain.ConfirmedApplication{
		ID:            id,
		Company:       company,
		Role:          "Backend Engineer",
		Status:        status,
		AppliedDate:   date,
		ThreadID:      "thread-" + id,
		MessageID:     "msg-" + id,
		AISummary:     "summary",
		AIActionItems: []string{"Reply", "Prepare, carefully"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestApplicationRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testApplication("a1", "Acme", domain.StatusApplied, "2026-03-01")))
	require.NoError(t, repo.Create(ctx, testApplication("a2", "Globex", domain.StatusRejected, "2026-03-05")))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, []string{"Reply", "Prepare, carefully"}, got.AIActionItems)
	assert.True(t, got.CreatedAt.Equal(time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)))

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.List(ctx, domain.ApplicationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a2", all[0].ID, "newest applied date first")

	rejected, err := repo.List(ctx, domain.ApplicationFilter{Status: domain.StatusRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "Globex", rejected[0].Company)

	got.Status = domain.StatusInterviewing
	got.Notes = "Phone screen"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterviewing, got.Status)
	assert.Equal(t, "Phone screen", got.Notes)

	refs, err := repo.ConfirmedRefs(ctx)
	require.NoError(t, err)
	assert.True(t, refs.Contains("thread-a1", ""))
	assert.True(t, refs.Contains("", "msg-a2"))
	assert.False(t, refs.Contains("thread-zz", "msg-zz"))

	require.NoError(t, repo.Delete(ctx, "a1"))
	assert.ErrorIs(t, repo.Delete(ctx, "a1"), out.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, testApplication("zz", "X", domain.StatusApplied, "2026-01-01")), out.ErrNotFound)
}

func TestApplicationRepositoryEmptyActionItems(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := testApplication("a1", "Acme", domain.StatusApplied, "2026-03-01")
	app.AIActionItems = nil
	require.NoError(t, repo.Create(ctx, app))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, got.AIActionItems)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
}

func TestTokenFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "gmail-token.json")
	store := NewTokenFileStore(path)
	ctx := context.Background()

	tok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, tok)

	require.NoError(t, store.Save(ctx, &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "r", tok.RefreshToken)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clearing twice is fine")
	tok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestSuggestionFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	store := NewSuggestionFileStore(path)
	ctx := context.Background()

	entry, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)

	saved := &domain.CacheEntry{
		MailboxIdentity: "me@example.com",
		SavedAt:         time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
		Suggestions: []*domain.Suggestion{{
			Candidate:       domain.Candidate{MessageID: "m1", ThreadID: "t1", Company: "Acme", Status: domain.StatusRejected},
			AISummary:       "Rejected",
			AIActionItems:   []string{},
			HeuristicStatus: domain.StatusRejected,
			AIProcessed:     true,
		}},
	}
	require.NoError(t, store.Save(ctx, saved))

	entry, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.ValidFor("me@example.com"))
	require.Len(t, entry.Suggestions, 1)
	assert.Equal(t, "Acme", entry.Suggestions[0].Company)
	assert.True(t, entry.Suggestions[0].AIProcessed)

	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o644))
	_, err = store.Load(ctx)
	assert.Error(t, err)
}

func TestMemoryReportStore(t *testing.T) {
	store := NewMemoryReportStore(2)
	ctx := context.Background()
	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, store.Save(ctx, &domain.SyncReport{ID: id}))
	}

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r3", recent[0].ID)
	assert.Equal(t, "r2", recent[1].ID)

	recent, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
