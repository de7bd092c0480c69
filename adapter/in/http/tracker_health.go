package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobtracker_server/infra/database"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// CircuitReporter exposes the mailbox provider's breaker state.
type CircuitReporter interface {
	CircuitState() string
}

type HealthHandler struct {
	db      HealthChecker
	redis   HealthChecker
	pool    *pgxpool.Pool
	mailbox CircuitReporter
}

// NewHealthHandler takes optional dependencies; nil ones report "not configured".
func NewHealthHandler(db, redis HealthChecker, pool *pgxpool.Pool, mailbox CircuitReporter) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, pool: pool, mailbox: mailbox}
}

func (h *HealthHandler) Register(app fiber.Router) {
	app.Get("/api/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":        true,
		"message":   "Backend is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	check := func(name string, dep HealthChecker) {
		if dep == nil {
			checks[name] = "not configured"
			return
		}
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			allHealthy = false
			return
		}
		checks[name] = "healthy"
	}
	check("database", h.db)
	check("redis", h.redis)

	// an open breaker degrades sync but the API still serves
	if h.mailbox != nil {
		checks["mailbox_circuit"] = h.mailbox.CircuitState()
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	body := fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.pool != nil {
		body["pool"] = database.GetPoolStats(h.pool)
	}
	return c.Status(statusCode).JSON(body)
}
