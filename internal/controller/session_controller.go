package controller

import (
	"churnguard-be/internal/dto"
	"churnguard-be/internal/pkg/serverutils"
	"churnguard-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	SubmitSurvey(ctx *fiber.Ctx) error
	DecideOffer(ctx *fiber.Ctx) error
	CompleteSession(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
	limiter serverutils.RateLimiter
}

func NewSessionController(service service.ISessionService, limiter serverutils.RateLimiter) ISessionController {
	return &sessionController{service: service, limiter: limiter}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	// Server-to-server: the business backend opens sessions.
	r.Post("/session/create", serverutils.JwtMiddleware, c.CreateSession)

	// Public widget endpoints, token-addressed and rate limited.
	rl := serverutils.RateLimitMiddleware(c.limiter)
	r.Get("/session/:token", rl, c.GetSession)
	r.Post("/session/:token/survey", rl, c.SubmitSurvey)
	r.Post("/session/:token/offer", rl, c.DecideOffer)
	r.Post("/session/:token/complete", rl, c.CompleteSession)
}

func (c *sessionController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}

	res, err := c.service.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *sessionController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.Context(), ctx.Params("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *sessionController) SubmitSurvey(ctx *fiber.Ctx) error {
	var req dto.SubmitSurveyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.SubmitSurvey(ctx.Context(), ctx.Params("token"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *sessionController) DecideOffer(ctx *fiber.Ctx) error {
	var req dto.OfferDecisionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.DecideOffer(ctx.Context(), ctx.Params("token"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *sessionController) CompleteSession(ctx *fiber.Ctx) error {
	var req dto.CompleteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.CompleteSession(ctx.Context(), ctx.Params("token"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// currentUserId reads the authenticated caller set by JwtMiddleware.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, serverutils.NewAuthError("missing authenticated user")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, serverutils.NewAuthError("invalid authenticated user id")
	}
	return userId, nil
}
