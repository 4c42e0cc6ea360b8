package captureHandler

import (
	captureService "FaceLiveness/internal/api/capture/service"
	"FaceLiveness/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"time"
)

type CaptureHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	captureService captureService.ICaptureService
	readTimeout    time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	cs captureService.ICaptureService,
) *CaptureHandler {
	return &CaptureHandler{
		log:            log,
		validator:      validator,
		middleware:     middleware,
		captureService: cs,
		readTimeout:    60 * time.Second,
	}
}

func (h *CaptureHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	liveness := srv.Group("/liveness")
	liveness.Get("/config", h.GetConfig)

	liveness.Post("/sessions", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.CreateSession)
	liveness.Get("/sessions/:id", h.middleware.NewTokenMiddleware, h.GetSession)

	liveness.Post("/sessions/:id/capture", h.middleware.NewTokenMiddleware, h.SubmitCapture)
	liveness.Get("/sessions/:id/capture", h.middleware.NewTokenMiddleware, h.GetCapture)
	liveness.Get("/captures", h.middleware.NewTokenMiddleware, h.ListCaptures)

	// The session id is the socket credential; browsers cannot set headers on upgrade.
	liveness.Use("/ws", wsMiddleware)
	liveness.Get("/ws/:id", websocket.New(h.handleLivenessWebSocket))
}
