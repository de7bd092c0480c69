package http

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/service/auth"
	"jobtracker_server/infra/middleware"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/response"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeApps struct {
	mu   sync.Mutex
	apps map[string]*domain.ConfirmedApplication
}

func newFakeApps() *fakeApps {
	return &fakeApps{apps: make(map[string]*domain.ConfirmedApplication)}
}

func (f *fakeApps) List(_ context.Context, filter domain.ApplicationFilter) ([]*domain.ConfirmedApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ConfirmedApplication
	for _, a := range f.apps {
		if filter.Status == "" || a.Status == filter.Status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApps) Get(_ context.Context, id string) (*domain.ConfirmedApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return nil, apperr.NotFound("application")
	}
	return a, nil
}

func (f *fakeApps) Create(_ context.Context, app *domain.ConfirmedApplication) (*domain.ConfirmedApplication, error) {
	if app.Company == "" {
		return nil, apperr.MissingField("company")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	app.ID = "app-" + app.Company
	if app.Status == "" {
		app.Status = domain.StatusApplied
	}
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeApps) Update(_ context.Context, id string, patch *domain.ApplicationPatch) (*domain.ConfirmedApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return nil, apperr.NotFound("application")
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	return a, nil
}

func (f *fakeApps) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.apps[id]; !ok {
		return apperr.NotFound("application")
	}
	delete(f.apps, id)
	return nil
}

type fakeOAuth struct {
	configured  bool
	callbackErr error
	codes       []string
	status      domain.MailboxStatus
	states      map[string]bool
}

func (f *fakeOAuth) IsConfigured() bool { return f.configured }

func (f *fakeOAuth) NewState(frontend string) string {
	state := auth.EncodeState(frontend)
	if f.states == nil {
		f.states = make(map[string]bool)
	}
	f.states[state] = true
	return state
}

func (f *fakeOAuth) ConsumeState(state string) bool {
	ok := f.states[state]
	delete(f.states, state)
	return ok
}

func (f *fakeOAuth) AuthURL(state string) (string, error) {
	if !f.configured {
		return "", apperr.ErrMailboxNotConfigured
	}
	return "https://accounts.example.com/auth?state=" + state, nil
}

func (f *fakeOAuth) HandleCallback(_ context.Context, code string) (string, error) {
	f.codes = append(f.codes, code)
	if f.callbackErr != nil {
		return "", f.callbackErr
	}
	return "me@example.com", nil
}

func (f *fakeOAuth) Session(context.Context) (*domain.MailboxSession, error) {
	return nil, apperr.ErrMailboxUnavailable
}

func (f *fakeOAuth) Status(context.Context) *domain.MailboxStatus {
	s := f.status
	return &s
}

func (f *fakeOAuth) Disconnect(context.Context) error {
	f.status.Connected = false
	f.status.Email = ""
	return nil
}

type fakeSync struct {
	mu     sync.Mutex
	events []domain.SyncEvent
	opts   []domain.SyncOptions
}

func (f *fakeSync) Sync(_ context.Context, opts domain.SyncOptions) <-chan domain.SyncEvent {
	f.mu.Lock()
	f.opts = append(f.opts, opts)
	f.mu.Unlock()

	ch := make(chan domain.SyncEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func (f *fakeSync) lastOpts() domain.SyncOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts[len(f.opts)-1]
}

type fakeReports struct {
	reports []*domain.SyncReport
	limit   int
}

func (f *fakeReports) Save(context.Context, *domain.SyncReport) error { return nil }

func (f *fakeReports) Recent(_ context.Context, limit int) ([]*domain.SyncReport, error) {
	f.limit = limit
	return f.reports, nil
}

type fakeSuggestions struct {
	loads     int
	list      []*domain.Suggestion
	overrides domain.AcceptOverrides
	acceptErr error
}

func (f *fakeSuggestions) Load(context.Context) ([]*domain.Suggestion, error) {
	f.loads++
	return f.list, nil
}

func (f *fakeSuggestions) Current() []*domain.Suggestion   { return f.list }
func (f *fakeSuggestions) Reconcile(context.Context) error { return nil }

func (f *fakeSuggestions) Accept(_ context.Context, id string, o domain.AcceptOverrides) (*domain.ConfirmedApplication, error) {
	for i, s := range f.list {
		if s.MessageID == id {
			f.overrides = o
			f.list = append(f.list[:i], f.list[i+1:]...)
			return domain.FromSuggestion(s, o), nil
		}
	}
	return nil, apperr.NotFound("suggestion")
}

func (f *fakeSuggestions) AcceptAll(context.Context) ([]*domain.ConfirmedApplication, error) {
	var apps []*domain.ConfirmedApplication
	for len(f.list) > 0 {
		if f.acceptErr != nil && len(apps) == 1 {
			return apps, f.acceptErr
		}
		s := f.list[0]
		f.list = f.list[1:]
		apps = append(apps, domain.FromSuggestion(s, domain.AcceptOverrides{}))
	}
	return apps, nil
}

func (f *fakeSuggestions) Dismiss(_ context.Context, id string) error {
	for i, s := range f.list {
		if s.MessageID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("suggestion")
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type breaker string

func (b breaker) CircuitState() string { return string(b) }

// =============================================================================
// Helpers
// =============================================================================

func newTestApp(register ...func(fiber.Router)) *fiber.App {
	log := zerolog.Nop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(middleware.RequestID())
	for _, r := range register {
		r(app)
	}
	return app
}

type envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

func do[T any](t *testing.T, app *fiber.App, method, target, body string) (int, envelope[T]) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var env envelope[T]
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func redirect(t *testing.T, app *fiber.App, target string) *url.URL {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)
	return loc
}

// =============================================================================
// Applications
// =============================================================================

func TestApplicationRoutes(t *testing.T) {
	apps := newFakeApps()
	app := newTestApp(NewApplicationHandler(apps).Register)

	status, created := do[domain.ConfirmedApplication](t, app, fiber.MethodPost, "/api/applications",
		`{"company":"Acme","role":"Backend Engineer","applied_date":"2024-03-05"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "app-Acme", created.Data.ID)
	assert.Equal(t, domain.StatusApplied, created.Data.Status)

	status, missing := do[any](t, app, fiber.MethodPost, "/api/applications", `{"role":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeMissingField, missing.Error.Code)

	status, list := do[[]domain.ConfirmedApplication](t, app, fiber.MethodGet, "/api/applications", "")
	assert.Equal(t, fiber.StatusOK, status)
	require.Len(t, list.Data, 1)
	assert.Equal(t, 1, list.Meta.Total)

	_, filtered := do[[]domain.ConfirmedApplication](t, app, fiber.MethodGet, "/api/applications?status=Offer", "")
	assert.Empty(t, filtered.Data)
	assert.Equal(t, 0, filtered.Meta.Total)

	status, patched := do[domain.ConfirmedApplication](t, app, fiber.MethodPatch, "/api/applications/app-Acme",
		`{"status":"Interviewing","notes":"call on monday"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, domain.StatusInterviewing, patched.Data.Status)
	assert.Equal(t, "call on monday", patched.Data.Notes)

	status, notFound := do[any](t, app, fiber.MethodGet, "/api/applications/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, apperr.CodeNotFound, notFound.Error.Code)

	status, _ = do[any](t, app, fiber.MethodDelete, "/api/applications/app-Acme", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = do[any](t, app, fiber.MethodDelete, "/api/applications/app-Acme", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestApplicationBadBody(t *testing.T) {
	app := newTestApp(NewApplicationHandler(newFakeApps()).Register)

	status, env := do[any](t, app, fiber.MethodPost, "/api/applications", `{"company":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeBadRequest, env.Error.Code)
}

// =============================================================================
// OAuth
// =============================================================================

func TestOAuthConnect(t *testing.T) {
	t.Run("not configured redirects with config error", func(t *testing.T) {
		app := newTestApp(NewOAuthHandler(&fakeOAuth{}, "http://localhost:5173", zerolog.Nop()).Register)

		loc := redirect(t, app, "/api/auth/gmail?frontend="+url.QueryEscape("http://localhost:5176/"))
		assert.Equal(t, "localhost:5176", loc.Host)
		assert.Equal(t, "config", loc.Query().Get("gmail_error"))
	})

	t.Run("configured redirects to consent with state", func(t *testing.T) {
		oauth := &fakeOAuth{configured: true}
		app := newTestApp(NewOAuthHandler(oauth, "http://localhost:5173", zerolog.Nop()).Register)

		loc := redirect(t, app, "/api/auth/gmail?frontend="+url.QueryEscape("http://localhost:5176"))
		assert.Equal(t, "accounts.example.com", loc.Host)
		state := loc.Query().Get("state")
		assert.Equal(t, "http://localhost:5176", auth.ReturnURL(state, "fallback"))
		assert.True(t, oauth.ConsumeState(state), "the consent redirect carries an issued state")
	})

	t.Run("non-local frontend is ignored", func(t *testing.T) {
		app := newTestApp(NewOAuthHandler(&fakeOAuth{}, "http://localhost:5173", zerolog.Nop()).Register)

		loc := redirect(t, app, "/api/auth/gmail?frontend="+url.QueryEscape("https://evil.example.com"))
		assert.Equal(t, "localhost:5173", loc.Host)
	})
}

func TestOAuthCallback(t *testing.T) {
	foreign := auth.EncodeState("http://localhost:5176")

	// {state} is replaced by a state issued through the handler's service.
	tests := []struct {
		name      string
		query     string
		oauthErr  error
		wantKey   string
		wantValue string
		wantHost  string
		exchanged bool
	}{
		{"success", "code=abc&state={state}", nil, "gmail_connected", "1", "localhost:5176", true},
		{"provider denied", "error=access_denied", nil, "gmail_error", "denied", "localhost:5173", false},
		{"redirect mismatch", "error=redirect_uri_mismatch&state={state}", nil, "gmail_error", "redirect_uri_mismatch", "localhost:5176", false},
		{"no code", "state={state}", nil, "gmail_error", "no_code", "localhost:5176", false},
		{"missing state", "code=abc", nil, "gmail_error", "state", "localhost:5173", false},
		{"state not issued here", "code=abc&state=" + foreign, nil, "gmail_error", "state", "localhost:5176", false},
		{"exchange failure", "code=abc&state={state}", apperr.OAuthFailed("gmail", errors.New("bad code")), "gmail_error", "exchange", "localhost:5176", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oauth := &fakeOAuth{configured: true, callbackErr: tt.oauthErr}
			app := newTestApp(NewOAuthHandler(oauth, "http://localhost:5173", zerolog.Nop()).Register)

			query := strings.ReplaceAll(tt.query, "{state}", oauth.NewState("http://localhost:5176"))
			loc := redirect(t, app, "/api/auth/gmail/callback?"+query)
			assert.Equal(t, tt.wantHost, loc.Host)
			assert.Equal(t, tt.wantValue, loc.Query().Get(tt.wantKey))
			assert.Equal(t, tt.exchanged, len(oauth.codes) > 0)
		})
	}
}

func TestOAuthCallbackStateIsSingleUse(t *testing.T) {
	oauth := &fakeOAuth{configured: true}
	app := newTestApp(NewOAuthHandler(oauth, "http://localhost:5173", zerolog.Nop()).Register)

	path := "/api/auth/gmail/callback?code=abc&state=" + oauth.NewState("http://localhost:5176")
	assert.Equal(t, "1", redirect(t, app, path).Query().Get("gmail_connected"))
	assert.Equal(t, "state", redirect(t, app, path).Query().Get("gmail_error"))
	assert.Len(t, oauth.codes, 1)
}

func TestOAuthStatusAndDisconnect(t *testing.T) {
	oauth := &fakeOAuth{configured: true, status: domain.MailboxStatus{Configured: true, Connected: true, Email: "me@example.com"}}
	app := newTestApp(NewOAuthHandler(oauth, "http://localhost:5173", zerolog.Nop()).Register)

	_, cfg := do[map[string]any](t, app, fiber.MethodGet, "/api/config", "")
	assert.Equal(t, true, cfg.Data["gmail_configured"])

	_, st := do[domain.MailboxStatus](t, app, fiber.MethodGet, "/api/auth/gmail/status", "")
	assert.True(t, st.Data.Connected)
	assert.Equal(t, "me@example.com", st.Data.Email)

	status, after := do[domain.MailboxStatus](t, app, fiber.MethodPost, "/api/auth/gmail/disconnect", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.False(t, after.Data.Connected)
}

func TestOAuthReloadsSuggestions(t *testing.T) {
	oauth := &fakeOAuth{configured: true}
	suggestions := &fakeSuggestions{}
	app := newTestApp(NewOAuthHandler(oauth, "http://localhost:5173", zerolog.Nop()).WithSuggestions(suggestions).Register)

	redirect(t, app, "/api/auth/gmail/callback?code=abc&state="+oauth.NewState(""))
	assert.Equal(t, 1, suggestions.loads)

	redirect(t, app, "/api/auth/gmail/callback?error=access_denied")
	assert.Equal(t, 1, suggestions.loads)

	do[any](t, app, fiber.MethodPost, "/api/auth/gmail/disconnect", "")
	assert.Equal(t, 2, suggestions.loads)
}

// =============================================================================
// Sync
// =============================================================================

func resultEvents() []domain.SyncEvent {
	now := time.Now()
	return []domain.SyncEvent{
		{Seq: 1, Type: domain.SyncEventStatus, Message: "Listing inbox messages…", Timestamp: now},
		{Seq: 2, Type: domain.SyncEventResult, Timestamp: now, Result: &domain.SyncResult{
			Connected: true,
			Suggestions: []*domain.Suggestion{{Candidate: domain.Candidate{
				Company: "Acme", Role: "Backend Engineer", MessageID: "m1", Status: domain.StatusApplied,
			}}},
		}},
	}
}

func TestSyncStream(t *testing.T) {
	syncer := &fakeSync{events: resultEvents()}
	app := newTestApp(NewSyncHandler(syncer, nil, zerolog.Nop()).Register)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/gmail/sync?max=25", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "event: status\n")
	assert.Contains(t, text, `data: {"message":"Listing inbox messages…"}`)
	assert.Contains(t, text, "event: result\n")
	assert.Contains(t, text, `"company":"Acme"`)
	assert.Less(t, strings.Index(text, "event: status"), strings.Index(text, "event: result"))

	assert.Equal(t, 25, syncer.lastOpts().MaxMessages)
	assert.True(t, syncer.lastOpts().Debug)
}

func TestSyncJSON(t *testing.T) {
	t.Run("result", func(t *testing.T) {
		syncer := &fakeSync{events: resultEvents()}
		app := newTestApp(NewSyncHandler(syncer, nil, zerolog.Nop()).Register)

		status, env := do[domain.SyncResult](t, app, fiber.MethodPost, "/api/gmail/sync?stream=false",
			`{"max_messages":10,"debug":false}`)
		assert.Equal(t, fiber.StatusOK, status)
		assert.True(t, env.Data.Connected)
		require.Len(t, env.Data.Suggestions, 1)
		assert.Equal(t, "m1", env.Data.Suggestions[0].MessageID)

		opts := syncer.lastOpts()
		assert.Equal(t, 10, opts.MaxMessages)
		assert.False(t, opts.Debug)
	})

	t.Run("terminal error", func(t *testing.T) {
		syncer := &fakeSync{events: []domain.SyncEvent{
			{Seq: 1, Type: domain.SyncEventError, Error: "mailbox sync failed while listing messages"},
		}}
		app := newTestApp(NewSyncHandler(syncer, nil, zerolog.Nop()).Register)

		status, env := do[any](t, app, fiber.MethodPost, "/api/gmail/sync?stream=false", "")
		assert.Equal(t, fiber.StatusBadGateway, status)
		assert.Equal(t, apperr.CodeSyncFailed, env.Error.Code)
		assert.Equal(t, "mailbox sync failed while listing messages", env.Error.Message)
	})

	t.Run("oversized max is capped", func(t *testing.T) {
		syncer := &fakeSync{events: resultEvents()}
		app := newTestApp(NewSyncHandler(syncer, nil, zerolog.Nop()).Register)

		do[any](t, app, fiber.MethodPost, "/api/gmail/sync?stream=false&max=10000", "")
		assert.Equal(t, maxSyncMessages, syncer.lastOpts().MaxMessages)
	})
}

func TestSyncReports(t *testing.T) {
	reports := &fakeReports{reports: []*domain.SyncReport{{ID: "r1", Outcome: "success"}}}
	app := newTestApp(NewSyncHandler(&fakeSync{}, reports, zerolog.Nop()).Register)

	status, env := do[[]domain.SyncReport](t, app, fiber.MethodGet, "/api/gmail/sync/reports?limit=500", "")
	assert.Equal(t, fiber.StatusOK, status)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "r1", env.Data[0].ID)
	assert.Equal(t, maxReportLimit, reports.limit)
}

// =============================================================================
// Suggestions
// =============================================================================

func suggestionList() []*domain.Suggestion {
	return []*domain.Suggestion{
		{Candidate: domain.Candidate{Company: "Acme", Role: "Backend Engineer", MessageID: "m1", Status: domain.StatusApplied}},
		{Candidate: domain.Candidate{Company: "Globex", Role: "SRE", MessageID: "m2", Status: domain.StatusInterviewing}},
	}
}

func TestSuggestionRoutes(t *testing.T) {
	svc := &fakeSuggestions{list: suggestionList()}
	app := newTestApp(NewSuggestionHandler(svc).Register)

	_, list := do[[]domain.Suggestion](t, app, fiber.MethodGet, "/api/suggestions", "")
	require.Len(t, list.Data, 2)

	status, accepted := do[domain.ConfirmedApplication](t, app, fiber.MethodPost, "/api/suggestions/m1/accept",
		`{"company":"Acme Corp","status":"Offer"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Acme Corp", accepted.Data.Company)
	assert.Equal(t, domain.StatusOffer, accepted.Data.Status)
	assert.Equal(t, "m1", accepted.Data.MessageID)

	status, _ = do[any](t, app, fiber.MethodPost, "/api/suggestions/m1/accept", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, bad := do[any](t, app, fiber.MethodPost, "/api/suggestions/m2/accept", `{"status":"Ghosted"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeInvalidInput, bad.Error.Code)

	status, _ = do[any](t, app, fiber.MethodDelete, "/api/suggestions/m2", "")
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Empty(t, svc.list)
}

func TestSuggestionAcceptAll(t *testing.T) {
	t.Run("all accepted", func(t *testing.T) {
		svc := &fakeSuggestions{list: suggestionList()}
		app := newTestApp(NewSuggestionHandler(svc).Register)

		status, env := do[acceptAllResponse](t, app, fiber.MethodPost, "/api/suggestions/accept-all", "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, env.Data.Accepted, 2)
		assert.Empty(t, env.Data.Remaining)
	})

	t.Run("partial failure", func(t *testing.T) {
		svc := &fakeSuggestions{list: suggestionList(), acceptErr: apperr.DatabaseError("insert", errors.New("disk full"))}
		app := newTestApp(NewSuggestionHandler(svc).Register)

		status, env := do[acceptAllResponse](t, app, fiber.MethodPost, "/api/suggestions/accept-all", "")
		assert.Equal(t, fiber.StatusMultiStatus, status)
		assert.False(t, env.Success)
		assert.Len(t, env.Data.Accepted, 1)
		assert.Len(t, env.Data.Remaining, 1)
		assert.Equal(t, apperr.CodeDatabaseError, env.Error.Code)
	})
}

// =============================================================================
// Health
// =============================================================================

func TestReady(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		app := newTestApp(NewHealthHandler(pinger{}, nil, nil, breaker("closed")).Register)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ready", body.Status)
		assert.Equal(t, "healthy", body.Checks["database"])
		assert.Equal(t, "not configured", body.Checks["redis"])
		assert.Equal(t, "closed", body.Checks["mailbox_circuit"])
	})

	t.Run("database down", func(t *testing.T) {
		app := newTestApp(NewHealthHandler(pinger{err: errors.New("connection refused")}, nil, nil, nil).Register)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("health", func(t *testing.T) {
		app := newTestApp(NewHealthHandler(nil, nil, nil, nil).Register)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
