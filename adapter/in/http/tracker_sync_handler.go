package http

import (
	"bufio"
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"jobtracker_server/adapter/out/realtime"
	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
	"jobtracker_server/core/port/out"
	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/response"
)

const (
	maxSyncMessages    = 500
	defaultReportLimit = 20
	maxReportLimit     = 100
)

type SyncHandler struct {
	sync    in.SyncService
	reports out.SyncReportRepository
	log     zerolog.Logger
}

func NewSyncHandler(sync in.SyncService, reports out.SyncReportRepository, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		sync:    sync,
		reports: reports,
		log:     log.With().Str("component", "sync_handler").Logger(),
	}
}

func (h *SyncHandler) Register(app fiber.Router) {
	app.Post("/api/gmail/sync", h.Sync)
	app.Get("/api/gmail/sync/reports", h.Reports)
}

type syncRequest struct {
	MaxMessages int   `json:"max_messages"`
	Debug       *bool `json:"debug"`
}

// Sync streams progress as server-sent events. ?stream=false waits for the
// terminal event and returns it as one JSON response.
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	opts, err := parseSyncOptions(c)
	if err != nil {
		return err
	}

	if !c.QueryBool("stream", true) {
		return h.syncJSON(c, opts)
	}

	// The stream writer runs after the handler returns, so the run gets its own context.
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.UserContext()))
	events := h.sync.Sync(ctx, opts)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set(fiber.HeaderTransferEncoding, "chunked")
	c.Set("X-Accel-Buffering", "no")

	log := h.log
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		if err := realtime.Stream(w, events, realtime.DefaultHeartbeat); err != nil {
			// client went away; the run finishes on its own
			log.Debug().Err(err).Msg("sync stream closed by client")
		}
	})
	return nil
}

func (h *SyncHandler) syncJSON(c *fiber.Ctx, opts domain.SyncOptions) error {
	for ev := range h.sync.Sync(c.UserContext(), opts) {
		switch ev.Type {
		case domain.SyncEventResult:
			return response.OK(c, ev.Result)
		case domain.SyncEventError:
			return apperr.New(apperr.CodeSyncFailed, ev.Error, fiber.StatusBadGateway)
		}
	}
	return apperr.Internal("sync ended without a result")
}

func parseSyncOptions(c *fiber.Ctx) (domain.SyncOptions, error) {
	opts := domain.SyncOptions{Debug: true}

	if len(c.Body()) > 0 {
		var req syncRequest
		if err := c.BodyParser(&req); err != nil {
			return opts, apperr.BadRequest("invalid request body")
		}
		opts.MaxMessages = req.MaxMessages
		if req.Debug != nil {
			opts.Debug = *req.Debug
		}
	}
	if n := c.QueryInt("max", 0); n > 0 {
		opts.MaxMessages = n
	}
	if raw := c.Query("debug"); raw != "" {
		opts.Debug = c.QueryBool("debug", opts.Debug)
	}

	if opts.MaxMessages < 0 {
		return opts, apperr.InvalidInput("max_messages", "must not be negative")
	}
	if opts.MaxMessages > maxSyncMessages {
		opts.MaxMessages = maxSyncMessages
	}
	return opts, nil
}

func (h *SyncHandler) Reports(c *fiber.Ctx) error {
	if h.reports == nil {
		return response.List(c, []*domain.SyncReport{})
	}

	limit := c.QueryInt("limit", defaultReportLimit)
	if limit <= 0 {
		limit = defaultReportLimit
	}
	if limit > maxReportLimit {
		limit = maxReportLimit
	}

	reports, err := h.reports.Recent(c.UserContext(), limit)
	if err != nil {
		return apperr.DatabaseError("loading sync reports", err)
	}
	return response.List(c, reports)
}
