package controller

import (
	"churnguard-be/internal/dto"
	"churnguard-be/internal/pkg/serverutils"
	"churnguard-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRecoveryController interface {
	RegisterRoutes(r fiber.Router)
	GetCase(ctx *fiber.Ctx) error
	ExpireCase(ctx *fiber.Ctx) error
	AppendAction(ctx *fiber.Ctx) error
	GetRiskSnapshot(ctx *fiber.Ctx) error
}

type recoveryController struct {
	recoveryService service.IRecoveryService
	riskService     service.IRiskService
}

func NewRecoveryController(recoveryService service.IRecoveryService, riskService service.IRiskService) IRecoveryController {
	return &recoveryController{
		recoveryService: recoveryService,
		riskService:     riskService,
	}
}

func (c *recoveryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/recovery", serverutils.JwtMiddleware)
	h.Get("/cases/:id", c.GetCase)
	h.Post("/cases/:id/expire", c.ExpireCase)
	h.Post("/cases/:id/actions", c.AppendAction)

	r.Get("/risk/snapshot", serverutils.JwtMiddleware, c.GetRiskSnapshot)
}

func (c *recoveryController) GetCase(ctx *fiber.Ctx) error {
	userId, caseId, err := c.parseIds(ctx)
	if err != nil {
		return err
	}

	res, err := c.recoveryService.GetCase(ctx.Context(), userId, caseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching case", res))
}

func (c *recoveryController) ExpireCase(ctx *fiber.Ctx) error {
	userId, caseId, err := c.parseIds(ctx)
	if err != nil {
		return err
	}

	res, err := c.recoveryService.ExpireCase(ctx.Context(), userId, caseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Case expiry processed", res))
}

func (c *recoveryController) AppendAction(ctx *fiber.Ctx) error {
	userId, caseId, err := c.parseIds(ctx)
	if err != nil {
		return err
	}

	var req dto.AppendActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.recoveryService.AppendAction(ctx.Context(), userId, caseId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Action recorded", res))
}

func (c *recoveryController) GetRiskSnapshot(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.riskService.GetSnapshot(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching risk snapshot", res))
}

func (c *recoveryController) parseIds(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userId, err := currentUserId(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	caseId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, serverutils.NewValidationError("invalid case id")
	}
	return userId, caseId, nil
}
