package http

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"jobtracker_server/core/port/in"
	"jobtracker_server/core/service/auth"
	"jobtracker_server/pkg/response"
)

// Callback error keys understood by the frontend.
const (
	gmailErrConfig      = "config"
	gmailErrDenied      = "denied"
	gmailErrRedirectURI = "redirect_uri_mismatch"
	gmailErrNoCode      = "no_code"
	gmailErrExchange    = "exchange"
	gmailErrState       = "state"
)

type OAuthHandler struct {
	oauth       in.OAuthService
	suggestions in.SuggestionService
	frontendURL string
	log         zerolog.Logger
}

func NewOAuthHandler(oauth in.OAuthService, frontendURL string, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauth:       oauth,
		frontendURL: frontendURL,
		log:         log.With().Str("component", "oauth_handler").Logger(),
	}
}

// WithSuggestions reloads the suggestion list whenever the connected mailbox changes.
func (h *OAuthHandler) WithSuggestions(suggestions in.SuggestionService) *OAuthHandler {
	h.suggestions = suggestions
	return h
}

func (h *OAuthHandler) Register(app fiber.Router) {
	app.Get("/api/config", h.Config)

	gmail := app.Group("/api/auth/gmail")
	gmail.Get("/", h.Connect)
	gmail.Get("/callback", h.Callback)
	gmail.Get("/status", h.Status)
	gmail.Post("/disconnect", h.Disconnect)
}

func (h *OAuthHandler) Config(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"frontend_url":     h.frontendURL,
		"gmail_configured": h.oauth.IsConfigured(),
	})
}

// Connect redirects to the consent screen. ?frontend= picks the localhost
// origin the callback returns to.
func (h *OAuthHandler) Connect(c *fiber.Ctx) error {
	frontend := c.Query("frontend")
	returnTo := h.frontendURL
	if auth.IsLocalOrigin(frontend) {
		returnTo = strings.TrimRight(frontend, "/")
	}

	authURL, err := h.oauth.AuthURL(h.oauth.NewState(frontend))
	if err != nil {
		h.log.Warn().Err(err).Msg("gmail connect requested but OAuth is not configured")
		return c.Redirect(withQuery(returnTo, "gmail_error", gmailErrConfig, ""), fiber.StatusFound)
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	returnTo := auth.ReturnURL(c.Query("state"), h.frontendURL)

	if oauthErr := c.Query("error"); oauthErr != "" {
		key := gmailErrDenied
		if oauthErr == gmailErrRedirectURI {
			key = gmailErrRedirectURI
		}
		msg := c.Query("error_description", oauthErr)
		h.log.Warn().Str("error", oauthErr).Msg("OAuth error from provider")
		return c.Redirect(withQuery(returnTo, "gmail_error", key, msg), fiber.StatusFound)
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect(withQuery(returnTo, "gmail_error", gmailErrNoCode, ""), fiber.StatusFound)
	}

	if !h.oauth.ConsumeState(c.Query("state")) {
		h.log.Warn().Msg("OAuth callback with unknown or expired state")
		return c.Redirect(withQuery(returnTo, "gmail_error", gmailErrState, ""), fiber.StatusFound)
	}

	email, err := h.oauth.HandleCallback(c.UserContext(), code)
	if err != nil {
		h.log.Error().Err(err).Msg("token exchange failed")
		return c.Redirect(withQuery(returnTo, "gmail_error", gmailErrExchange, err.Error()), fiber.StatusFound)
	}

	h.log.Info().Str("email", email).Msg("gmail connected")
	h.reloadSuggestions(c)
	return c.Redirect(withQuery(returnTo, "gmail_connected", "1", ""), fiber.StatusFound)
}

func (h *OAuthHandler) Status(c *fiber.Ctx) error {
	return response.OK(c, h.oauth.Status(c.UserContext()))
}

func (h *OAuthHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.oauth.Disconnect(c.UserContext()); err != nil {
		return err
	}
	h.reloadSuggestions(c)
	return response.OK(c, h.oauth.Status(c.UserContext()))
}

func (h *OAuthHandler) reloadSuggestions(c *fiber.Ctx) {
	if h.suggestions == nil {
		return
	}
	if _, err := h.suggestions.Load(c.UserContext()); err != nil {
		h.log.Warn().Err(err).Msg("failed to reload suggestions")
	}
}

func withQuery(base, key, value, msg string) string {
	q := url.Values{}
	q.Set(key, value)
	if msg != "" {
		q.Set("msg", msg)
	}
	return base + "?" + q.Encode()
}
