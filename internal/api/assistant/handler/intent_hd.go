package assistantHandler

import (
	"PabrikGolang/internal/api/assistant"
	contextPkg "PabrikGolang/pkg/context"
	"PabrikGolang/pkg/handlerUtil"
	jwtPkg "PabrikGolang/pkg/jwt"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) GetIntents(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if _, err := jwtPkg.GetUserLoginData(ctx); err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	intents, err := h.assistantService.GetIntents(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_intents")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{"intents": intents})
	}
}

func (h *AssistantHandler) CreateIntent(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}
	if userData.Role != "admin" {
		return errHandler.Handle(ctx, requestID, assistant.ErrUnauthorizedAccess, ctx.Path(), "create_intent")
	}

	var req assistant.CreateIntentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.assistantService.CreateIntent(c, req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_intent")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, fiber.Map{
			"message": "Intent created",
		})
	}
}

func (h *AssistantHandler) UpdateIntent(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}
	if userData.Role != "admin" {
		return errHandler.Handle(ctx, requestID, assistant.ErrUnauthorizedAccess, ctx.Path(), "update_intent")
	}

	code := ctx.Params("code")
	if code == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			fiber.NewError(fiber.StatusBadRequest, "intent code is required"), ctx.Path())
	}

	var req assistant.UpdateIntentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.assistantService.UpdateIntent(c, code, req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_intent")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Intent updated",
		})
	}
}
