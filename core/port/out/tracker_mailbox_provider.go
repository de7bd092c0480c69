// Package out defines outbound ports (driven ports) for the application.
package out

import (
	"context"

	"jobtracker_server/core/domain"

	"golang.org/x/oauth2"
)

// =============================================================================
// Mailbox Port
// =============================================================================

// MailboxProvider lists and fetches messages of one authenticated mailbox.
// 구현체: Gmail 어댑터
type MailboxProvider interface {
	// ListRecentMessageIDs returns ids, newest first, within the query window.
	ListRecentMessageIDs(ctx context.Context, session *domain.MailboxSession, max int, query string) ([]string, error)
	GetFullMessage(ctx context.Context, session *domain.MailboxSession, id string) (*domain.RawMessage, error)
}

// MailboxAuthenticator handles the OAuth handshake with the mailbox provider.
type MailboxAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource
	// Profile returns the mailbox address the token belongs to.
	Profile(ctx context.Context, ts oauth2.TokenSource) (string, error)
}

// CredentialStore persists the OAuth token.
// Load returns (nil, nil) when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
	Clear(ctx context.Context) error
}

// =============================================================================
// Provider errors
// =============================================================================

// ProviderErrorCode represents error codes.
type ProviderErrorCode string

const (
	ProviderErrAuth         ProviderErrorCode = "auth_error"
	ProviderErrTokenExpired ProviderErrorCode = "token_expired"
	ProviderErrRateLimit    ProviderErrorCode = "rate_limit"
	ProviderErrNotFound     ProviderErrorCode = "not_found"
	ProviderErrNetwork      ProviderErrorCode = "network_error"
	ProviderErrServer       ProviderErrorCode = "server_error"
	ProviderErrInvalidInput ProviderErrorCode = "invalid_input"
	ProviderErrCircuitOpen  ProviderErrorCode = "circuit_open"
)

// ProviderError represents a provider error.
type ProviderError struct {
	Provider  string
	Code      ProviderErrorCode
	Message   string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the mailbox rejected the credential.
func (e *ProviderError) IsAuth() bool {
	return e.Code == ProviderErrAuth || e.Code == ProviderErrTokenExpired
}

// NewProviderError creates a new provider error.
func NewProviderError(provider string, code ProviderErrorCode, message string, err error, retryable bool) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}
