// Package ops exposes the worker's operational HTTP surface: liveness
// and a per-job status snapshot. The catalog read API proper lives in
// a separate service and is not served here.
package ops

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/scheduler"
)

// Counter reports the catalog size
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Server is the ops HTTP endpoint
type Server struct {
	app    *fiber.App
	sched  *scheduler.Scheduler
	store  Counter
	logger *zap.Logger
}

// New builds the ops server and its routes
func New(sched *scheduler.Scheduler, store Counter, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "eco-catalog worker",
		DisableStartupMessage: true,
	})

	s := &Server{app: app, sched: sched, store: store, logger: logger}

	app.Get("/healthz", s.health)
	app.Get("/status", s.status)

	return s
}

// Listen serves until Shutdown is called
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) status(c *fiber.Ctx) error {
	products := -1
	if n, err := s.store.Count(c.Context()); err == nil {
		products = n
	} else {
		s.logger.Warn("Failed to count catalog rows", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"jobs":     s.sched.Status(),
		"products": products,
	})
}
