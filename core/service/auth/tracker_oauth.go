package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
	"jobtracker_server/core/port/out"
	"jobtracker_server/pkg/apperr"
)

// MailboxOAuth connects a single mailbox and hands out sessions for it.
type MailboxOAuth struct {
	auth  out.MailboxAuthenticator
	creds out.CredentialStore
	log   zerolog.Logger

	mu       sync.Mutex
	identity string
	states   map[string]time.Time // nonce -> issued at
	now      func() time.Time
}

// stateTTL bounds how long a consent screen may stay open.
const stateTTL = 10 * time.Minute

// NewMailboxOAuth builds the service. auth is nil when the OAuth client is not configured.
func NewMailboxOAuth(auth out.MailboxAuthenticator, creds out.CredentialStore, log zerolog.Logger) *MailboxOAuth {
	return &MailboxOAuth{
		auth:   auth,
		creds:  creds,
		log:    log.With().Str("component", "mailbox_oauth").Logger(),
		states: make(map[string]time.Time),
		now:    time.Now,
	}
}

// NewState issues a state parameter and remembers its nonce for the callback.
func (s *MailboxOAuth) NewState(frontend string) string {
	st := newState(frontend)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for nonce, issued := range s.states {
		if now.Sub(issued) > stateTTL {
			delete(s.states, nonce)
		}
	}
	s.states[st.Nonce] = now
	return st.encode()
}

// ConsumeState reports whether state was issued here and has not expired.
// A state is accepted once.
func (s *MailboxOAuth) ConsumeState(state string) bool {
	st, ok := decodeState(state)
	if !ok || st.Nonce == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	issued, ok := s.states[st.Nonce]
	if !ok {
		return false
	}
	delete(s.states, st.Nonce)
	return s.now().Sub(issued) <= stateTTL
}

func (s *MailboxOAuth) IsConfigured() bool {
	return s.auth != nil
}

func (s *MailboxOAuth) AuthURL(state string) (string, error) {
	if s.auth == nil {
		return "", apperr.ErrMailboxNotConfigured
	}
	return s.auth.AuthURL(state), nil
}

// HandleCallback exchanges the code, stores the token and returns the mailbox address.
func (s *MailboxOAuth) HandleCallback(ctx context.Context, code string) (string, error) {
	if s.auth == nil {
		return "", apperr.ErrMailboxNotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return "", apperr.MissingField("code")
	}

	token, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return "", apperr.OAuthFailed("gmail", err)
	}
	if err := s.creds.Save(ctx, token); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternalError, "failed to store mailbox token", http.StatusInternalServerError)
	}

	email, err := s.auth.Profile(ctx, s.tokenSource(ctx, token))
	if err != nil {
		return "", apperr.OAuthFailed("gmail", err)
	}

	s.mu.Lock()
	s.identity = email
	s.mu.Unlock()

	s.log.Info().Str("email", email).Msg("mailbox connected")
	return email, nil
}

// Session resolves the stored token into a session. Any failure means the
// mailbox is not usable right now.
func (s *MailboxOAuth) Session(ctx context.Context) (*domain.MailboxSession, error) {
	if s.auth == nil {
		return nil, apperr.ErrMailboxNotConfigured
	}

	token, err := s.creds.Load(ctx)
	if err != nil {
		return nil, apperr.MailboxUnavailable("failed to read mailbox token", err)
	}
	if token == nil {
		return nil, apperr.ErrMailboxUnavailable
	}

	ts := s.tokenSource(ctx, token)

	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()

	if identity == "" {
		identity, err = s.auth.Profile(ctx, ts)
		if err != nil {
			if isTokenExpiredError(err) {
				s.log.Warn().Err(err).Msg("mailbox token revoked")
				return nil, apperr.MailboxUnavailable("mailbox token expired or revoked", err)
			}
			return nil, apperr.MailboxUnavailable("failed to read mailbox profile", err)
		}
		s.mu.Lock()
		s.identity = identity
		s.mu.Unlock()
	}

	return &domain.MailboxSession{Identity: identity, TokenSource: ts}, nil
}

func (s *MailboxOAuth) Status(ctx context.Context) *domain.MailboxStatus {
	status := &domain.MailboxStatus{Configured: s.IsConfigured()}
	session, err := s.Session(ctx)
	if err != nil {
		return status
	}
	status.Connected = true
	status.Email = session.Identity
	return status
}

func (s *MailboxOAuth) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.identity = ""
	s.mu.Unlock()

	if err := s.creds.Clear(ctx); err != nil {
		return apperr.Wrap(err, apperr.CodeInternalError, "failed to remove mailbox token", http.StatusInternalServerError)
	}
	s.log.Info().Msg("mailbox disconnected")
	return nil
}

func (s *MailboxOAuth) tokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return &persistingTokenSource{
		base:  oauth2.ReuseTokenSource(token, s.auth.TokenSource(ctx, token)),
		store: s.creds,
		ctx:   context.WithoutCancel(ctx),
		last:  token.AccessToken,
		log:   s.log,
	}
}

// persistingTokenSource saves refreshed tokens back to the credential store.
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store out.CredentialStore
	ctx   context.Context
	log   zerolog.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.store.Save(p.ctx, token); err != nil {
			p.log.Warn().Err(err).Msg("failed to persist refreshed token")
		}
	}
	return token, nil
}

// isTokenExpiredError checks if the error indicates a permanent token failure.
func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && (re.ErrorCode == "invalid_grant" || re.ErrorCode == "invalid_client") {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "invalid_client") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "Token has been expired or revoked") ||
		strings.Contains(errStr, "Token has been revoked")
}

// =============================================================================
// OAuth state
// =============================================================================

type oauthState struct {
	Nonce    string `json:"n"`
	Frontend string `json:"f,omitempty"`
}

// EncodeState builds the state parameter. frontend is kept only when it is a
// localhost origin.
func EncodeState(frontend string) string {
	return newState(frontend).encode()
}

func newState(frontend string) oauthState {
	st := oauthState{Nonce: uuid.NewString()}
	if IsLocalOrigin(frontend) {
		st.Frontend = strings.TrimRight(frontend, "/")
	}
	return st
}

func (st oauthState) encode() string {
	b, _ := json.Marshal(st)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeState(state string) (oauthState, bool) {
	var st oauthState
	b, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return st, false
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, false
	}
	return st, true
}

// ReturnURL extracts the frontend origin from state, or returns fallback.
func ReturnURL(state, fallback string) string {
	st, ok := decodeState(state)
	if !ok || !IsLocalOrigin(st.Frontend) {
		return fallback
	}
	return st.Frontend
}

// IsLocalOrigin accepts http(s) origins on localhost or a loopback address.
func IsLocalOrigin(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

var _ in.OAuthService = (*MailboxOAuth)(nil)
