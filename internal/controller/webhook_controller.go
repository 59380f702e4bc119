package controller

import (
	"churnguard-be/internal/dto"
	"churnguard-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
}

type webhookController struct {
	service service.IWebhookService
}

func NewWebhookController(service service.IWebhookService) IWebhookController {
	return &webhookController{service: service}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhook/stripe", c.Handle)
}

// Handle reads the raw signed body. The body must not be re-parsed or
// re-serialized before verification; the signature covers the bytes.
func (c *webhookController) Handle(ctx *fiber.Ctx) error {
	signature := ctx.Get("Stripe-Signature")

	status, err := c.service.HandleEvent(ctx.Context(), ctx.Body(), signature)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.WebhookAckResponse{
		Received: true,
		Status:   status,
	})
}
