// Package provider implements mail provider adapters.
package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
	"jobtracker_server/pkg/metrics"
)

const (
	providerName    = "gmail"
	inboxLabel      = "INBOX"
	maxListPageSize = 500
	callTimeout     = 30 * time.Second
)

// =============================================================================
// Gmail Adapter
// =============================================================================

// GmailAdapter reads one mailbox through the Gmail API.
type GmailAdapter struct {
	config   *oauth2.Config
	cb       *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

// GmailConfig holds Gmail configuration.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// FetchRPS paces message fetches. Zero disables pacing.
	FetchRPS float64

	// Endpoint overrides the API base URL (tests).
	Endpoint string
	// HTTPClient is the base transport under the OAuth transport.
	HTTPClient *http.Client
}

// NewGmailAdapter creates a new Gmail adapter.
func NewGmailAdapter(cfg *GmailConfig, log zerolog.Logger) *GmailAdapter {
	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	log = log.With().Str("component", "gmail").Logger()

	cbSettings := gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,                // Half-open 상태에서 허용할 요청 수
		Interval:    60 * time.Second, // Closed 상태에서 카운터 리셋 간격
		Timeout:     30 * time.Second, // Open 상태 유지 시간 (이후 Half-open)
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.FetchRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.FetchRPS), 1)
	}

	return &GmailAdapter{
		config:   config,
		cb:       gobreaker.NewCircuitBreaker(cbSettings),
		limiter:  limiter,
		endpoint: cfg.Endpoint,
		client:   cfg.HTTPClient,
		log:      log,
	}
}

// =============================================================================
// Authentication
// =============================================================================

// AuthURL returns the consent URL. Offline access with forced consent so a
// refresh token is always issued.
func (a *GmailAdapter) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (a *GmailAdapter) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(a.oauthContext(ctx), code)
	if err != nil {
		return nil, a.wrapError(err, "failed to exchange code")
	}
	return token, nil
}

func (a *GmailAdapter) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return a.config.TokenSource(a.oauthContext(ctx), token)
}

// Profile returns the mailbox address.
func (a *GmailAdapter) Profile(ctx context.Context, ts oauth2.TokenSource) (string, error) {
	svc, err := a.getService(ctx, ts)
	if err != nil {
		return "", err
	}

	var email string
	err = a.call(ctx, "profile", func(ctx context.Context) error {
		profile, err := svc.Users.GetProfile("me").Context(ctx).Do()
		if err != nil {
			return err
		}
		email = profile.EmailAddress
		return nil
	})
	if err != nil {
		return "", a.wrapError(err, "failed to get profile")
	}
	return email, nil
}

// =============================================================================
// Messages
// =============================================================================

// ListRecentMessageIDs lists inbox ids matching query, newest first.
func (a *GmailAdapter) ListRecentMessageIDs(ctx context.Context, session *domain.MailboxSession, max int, query string) ([]string, error) {
	svc, err := a.getService(ctx, session.TokenSource)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, max)
	pageToken := ""
	for len(ids) < max {
		pageSize := min(max-len(ids), maxListPageSize)

		var resp *gmail.ListMessagesResponse
		err := a.call(ctx, "list", func(ctx context.Context) error {
			req := svc.Users.Messages.List("me").
				LabelIds(inboxLabel).
				MaxResults(int64(pageSize)).
				Context(ctx)
			if query != "" {
				req = req.Q(query)
			}
			if pageToken != "" {
				req = req.PageToken(pageToken)
			}
			var err error
			resp, err = req.Do()
			return err
		})
		if err != nil {
			return nil, a.wrapError(err, "failed to list messages")
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" || len(resp.Messages) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

// GetFullMessage fetches one message with its full MIME payload.
func (a *GmailAdapter) GetFullMessage(ctx context.Context, session *domain.MailboxSession, id string) (*domain.RawMessage, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, out.NewProviderError(providerName, out.ProviderErrNetwork, "fetch cancelled", err, false)
	}

	svc, err := a.getService(ctx, session.TokenSource)
	if err != nil {
		return nil, err
	}

	var msg *gmail.Message
	err = a.call(ctx, "get", func(ctx context.Context) error {
		var err error
		msg, err = svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, a.wrapError(err, "failed to get message")
	}
	return convertMessage(msg), nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (a *GmailAdapter) getService(ctx context.Context, ts oauth2.TokenSource) (*gmail.Service, error) {
	if ts == nil {
		return nil, out.NewProviderError(providerName, out.ProviderErrAuth, "no token source", nil, false)
	}
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}
	svc, err := gmail.NewService(a.oauthContext(ctx), opts...)
	if err != nil {
		return nil, out.NewProviderError(providerName, out.ProviderErrServer, "failed to create gmail client", err, false)
	}
	return svc, nil
}

// oauthContext carries the base HTTP client to the oauth2 transport.
func (a *GmailAdapter) oauthContext(ctx context.Context) context.Context {
	if a.client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.client)
}

// call runs fn through the circuit breaker with a per-call timeout.
// Client errors do not count as breaker failures. Nothing is retried.
func (a *GmailAdapter) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		if err := fn(callCtx); err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				switch apiErr.Code {
				case 400, 401, 403, 404:
					return nil, &nonCircuitError{err: err}
				}
			}
			var rErr *oauth2.RetrieveError
			if errors.As(err, &rErr) {
				return nil, &nonCircuitError{err: err}
			}
			return nil, err
		}
		return nil, nil
	})

	var nce *nonCircuitError
	if errors.As(err, &nce) {
		return nce.err
	}

	if err != nil {
		metrics.ProviderFailures.WithLabelValues(operation).Inc()
		a.log.Warn().Err(err).Str("operation", operation).Str("state", a.cb.State().String()).Msg("gmail call failed")
	}
	return err
}

// nonCircuitError wraps errors that should not trip the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

// CircuitState is reported by the readiness endpoint.
func (a *GmailAdapter) CircuitState() string {
	return a.cb.State().String()
}

func (a *GmailAdapter) wrapError(err error, defaultMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return out.NewProviderError(providerName, out.ProviderErrCircuitOpen, "Gmail temporarily unavailable", err, true)
	}

	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		return out.NewProviderError(providerName, out.ProviderErrAuth, "Token refresh rejected", err, false)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401:
			return out.NewProviderError(providerName, out.ProviderErrTokenExpired, "Token expired", err, false)
		case 403:
			if strings.Contains(apiErr.Message, "Rate Limit") {
				return out.NewProviderError(providerName, out.ProviderErrRateLimit, "Rate limit exceeded", err, true)
			}
			return out.NewProviderError(providerName, out.ProviderErrAuth, "Access denied", err, false)
		case 404:
			return out.NewProviderError(providerName, out.ProviderErrNotFound, "Not found", err, false)
		case 429:
			return out.NewProviderError(providerName, out.ProviderErrRateLimit, "Too many requests", err, true)
		case 500, 502, 503:
			return out.NewProviderError(providerName, out.ProviderErrServer, "Server error", err, true)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return out.NewProviderError(providerName, out.ProviderErrNetwork, defaultMsg, err, true)
	}

	return out.NewProviderError(providerName, out.ProviderErrServer, defaultMsg, err, true)
}

func convertMessage(msg *gmail.Message) *domain.RawMessage {
	return &domain.RawMessage{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		Snippet:      msg.Snippet,
		InternalDate: msg.InternalDate,
		LabelIDs:     msg.LabelIds,
		Payload:      convertPart(msg.Payload),
	}
}

func convertPart(p *gmail.MessagePart) *domain.MessagePart {
	if p == nil {
		return nil
	}
	part := &domain.MessagePart{
		PartID:   p.PartId,
		MimeType: p.MimeType,
		Filename: p.Filename,
	}
	for _, h := range p.Headers {
		part.Headers = append(part.Headers, domain.Header{Name: h.Name, Value: h.Value})
	}
	if p.Body != nil {
		part.Body = &domain.PartBody{Data: p.Body.Data, Size: p.Body.Size}
	}
	for _, child := range p.Parts {
		part.Parts = append(part.Parts, convertPart(child))
	}
	return part
}

// =============================================================================
// Interface Compliance
// =============================================================================

var (
	_ out.MailboxProvider      = (*GmailAdapter)(nil)
	_ out.MailboxAuthenticator = (*GmailAdapter)(nil)
)
