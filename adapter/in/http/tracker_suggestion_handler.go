package http

import (
	"github.com/gofiber/fiber/v2"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/response"
)

type SuggestionHandler struct {
	suggestions in.SuggestionService
}

func NewSuggestionHandler(suggestions in.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

func (h *SuggestionHandler) Register(app fiber.Router) {
	s := app.Group("/api/suggestions")
	s.Get("/", h.List)
	// registered before /:messageId so "accept-all" is not taken as an id
	s.Post("/accept-all", h.AcceptAll)
	s.Post("/:messageId/accept", h.Accept)
	s.Delete("/:messageId", h.Dismiss)
}

func (h *SuggestionHandler) List(c *fiber.Ctx) error {
	return response.List(c, h.suggestions.Current())
}

func (h *SuggestionHandler) Accept(c *fiber.Ctx) error {
	var overrides domain.AcceptOverrides
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&overrides); err != nil {
			return apperr.BadRequest("invalid request body")
		}
	}
	if overrides.Status != "" && !overrides.Status.Valid() {
		return apperr.InvalidInput("status", "unknown status")
	}

	app, err := h.suggestions.Accept(c.UserContext(), c.Params("messageId"), overrides)
	if err != nil {
		return err
	}
	return response.Created(c, app)
}

type acceptAllResponse struct {
	Accepted  []*domain.ConfirmedApplication `json:"accepted"`
	Remaining []*domain.Suggestion           `json:"remaining"`
}

// AcceptAll reports 207 with the accepted records when it stops part way.
func (h *SuggestionHandler) AcceptAll(c *fiber.Ctx) error {
	apps, err := h.suggestions.AcceptAll(c.UserContext())
	if err != nil && len(apps) == 0 {
		return err
	}

	body := acceptAllResponse{Accepted: apps, Remaining: h.suggestions.Current()}
	if body.Accepted == nil {
		body.Accepted = []*domain.ConfirmedApplication{}
	}
	if body.Remaining == nil {
		body.Remaining = []*domain.Suggestion{}
	}
	if err != nil {
		appErr := apperr.AsAppError(err)
		return c.Status(fiber.StatusMultiStatus).JSON(response.Response{
			Success: false,
			Data:    body,
			Error:   &response.ErrorInfo{Code: appErr.Code, Message: appErr.Message},
		})
	}
	return response.OK(c, body)
}

func (h *SuggestionHandler) Dismiss(c *fiber.Ctx) error {
	if err := h.suggestions.Dismiss(c.UserContext(), c.Params("messageId")); err != nil {
		return err
	}
	return response.NoContent(c)
}
