package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/response"
)

type ApplicationHandler struct {
	apps in.ApplicationService
}

func NewApplicationHandler(apps in.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

func (h *ApplicationHandler) Register(app fiber.Router) {
	apps := app.Group("/api/applications")
	apps.Get("/", h.List)
	apps.Post("/", h.Create)
	apps.Get("/:id", h.Get)
	apps.Patch("/:id", h.Update)
	apps.Delete("/:id", h.Delete)
}

type createApplicationRequest struct {
	Company     string        `json:"company"`
	Role        string        `json:"role"`
	Status      domain.Status `json:"status"`
	AppliedDate string        `json:"applied_date"`
	Notes       string        `json:"notes"`
	Link        string        `json:"link"`
	ThreadID    string        `json:"thread_id"`
	MessageID   string        `json:"message_id"`
}

func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	filter := domain.ApplicationFilter{Status: domain.Status(strings.TrimSpace(c.Query("status")))}
	apps, err := h.apps.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return response.List(c, apps)
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	app, err := h.apps.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, app)
}

func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	var req createApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	app, err := h.apps.Create(c.UserContext(), &domain.ConfirmedApplication{
		Company:     req.Company,
		Role:        req.Role,
		Status:      req.Status,
		AppliedDate: req.AppliedDate,
		Notes:       req.Notes,
		Link:        req.Link,
		ThreadID:    req.ThreadID,
		MessageID:   req.MessageID,
	})
	if err != nil {
		return err
	}
	return response.Created(c, app)
}

func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	var patch domain.ApplicationPatch
	if err := c.BodyParser(&patch); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	app, err := h.apps.Update(c.UserContext(), c.Params("id"), &patch)
	if err != nil {
		return err
	}
	return response.OK(c, app)
}

func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	if err := h.apps.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return response.NoContent(c)
}
