package handler

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service dependencies are reachable.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a HealthHandler that pings every named dependency.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check pings every dependency.
// Returns 200 {"status":"healthy"} when all respond, otherwise 503 with
// {"status":"unhealthy","failed":[names...]}.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	var failed []string
	for name, p := range h.checks {
		if err := p.Ping(c.UserContext()); err != nil {
			log.Error().Err(err).Str("dependency", name).Msg("health check failed")
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"failed": failed,
		})
	}
	return c.JSON(fiber.Map{"status": "healthy"})
}
