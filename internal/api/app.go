// Package api serves the dashboard's JSON API: chart series built from the
// public-data providers and the region datasets, the raw dataset views and the
// per-session region selection.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/couchcryptid/tourism-dashboard-service/internal/dataset"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/couchcryptid/tourism-dashboard-service/internal/selection"
)

// SessionCookie carries the session a selection and its in-flight requests belong to.
const SessionCookie = "session_id"

const sessionLocal = "session"

// SnapshotReader returns the latest refreshed snapshot of a region.
type SnapshotReader interface {
	Latest(region string) (domain.SeriesSnapshot, bool)
}

// Deps are the collaborators the routes need. Snapshots and AccessLog are optional.
type Deps struct {
	Source     domain.Source
	Datasets   *dataset.Store
	Selections selection.Store
	Tracker    *selection.Tracker
	Snapshots  SnapshotReader
	Location   *time.Location
	Metrics    *observability.Metrics
	Logger     *slog.Logger
	AccessLog  io.Writer
}

// NewApp builds a Fiber app with JSON errors, panic recovery, access logging
// and session cookies, and registers every route.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "tourism-dashboard",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler(deps.Logger),
	})

	app.Use(recover.New())
	if deps.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Output: deps.AccessLog,
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(sessionMiddleware)

	RegisterRoutes(app, deps)
	return app
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}

// sessionMiddleware reuses a valid session cookie or issues a new one.
func sessionMiddleware(c *fiber.Ctx) error {
	// Fiber strings alias the request buffer; the id outlives the request.
	id := strings.Clone(c.Cookies(SessionCookie))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(30 * 24 * time.Hour),
		})
	}
	c.Locals(sessionLocal, id)
	return c.Next()
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}

// upstreamError maps a provider failure to a gateway error. A canceled
// request context means a newer request superseded this one.
func upstreamError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fiber.NewError(fiber.StatusConflict, "superseded by a newer request")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.NewError(fiber.StatusGatewayTimeout, "upstream request timed out")
	}
	return fiber.NewError(fiber.StatusBadGateway, "upstream request failed")
}

func datasetError(err error) error {
	switch {
	case errors.Is(err, dataset.ErrNotFound), errors.Is(err, domain.ErrUnknownRegion):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, dataset.ErrInvalidPath), errors.Is(err, dataset.ErrUnsupportedFormat):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
