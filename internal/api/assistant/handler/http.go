package assistantHandler

import (
	assistantService "PabrikGolang/internal/api/assistant/service"
	"PabrikGolang/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: as,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")

	// All assistant endpoints require authentication
	assistant.Use(h.middleware.NewTokenMiddleware)

	// Command processing
	assistant.Post("/command", h.ProcessCommand)
	assistant.Post("/confirm", h.ProcessConfirmation)

	// History, analytics and suggestions
	assistant.Get("/history", h.GetCommandHistory)
	assistant.Get("/analytics", h.GetAnalytics)
	assistant.Get("/suggestions", h.GetSuggestions)

	// Routing inspection and intent catalog (admin endpoints)
	route := assistant.Group("/route")
	route.Post("/test", h.TestRoute)

	intents := assistant.Group("/intents")
	intents.Get("/", h.GetIntents)
	intents.Post("/", h.CreateIntent)
	intents.Put("/:code", h.UpdateIntent)
}
