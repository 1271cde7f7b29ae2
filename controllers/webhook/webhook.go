package webhook

import (
	"errors"

	"marketplace-booking/logger"
	"marketplace-booking/services/reconciler"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v81/webhook"
)

// WebhookController receives payment processor push notifications, verifies
// their signature over the raw request bytes and hands them to the
// reconciler.
type WebhookController struct {
	Reconciler *reconciler.Reconciler
	Secret     string
}

func NewWebhookController(rec *reconciler.Reconciler, secret string) *WebhookController {
	return &WebhookController{Reconciler: rec, Secret: secret}
}

// HandleStripe processes one webhook delivery. Signature failures return 400;
// events the reconciler cannot act on still return 200 so the processor does
// not retry-storm a non-transient application problem. Only storage errors
// return 500 to request a redelivery.
func (wc *WebhookController) HandleStripe(c *fiber.Ctx) error {
	// c.Body() is the exact bytes the processor sent. Re-serializing a parsed
	// body would break signature verification.
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	if wc.Secret == "" || signature == "" {
		logger.Warning("webhook delivery without secret or signature header")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"received": false})
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, wc.Secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		logger.Error("webhook signature verification failed", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"message": "invalid signature"},
		})
	}

	outcome, err := wc.Reconciler.Apply(c.UserContext(), event)
	if err != nil {
		if errors.Is(err, reconciler.ErrBookingNotFound) {
			// Retrying cannot make an unknown booking appear; acknowledge.
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
		}
		logger.Error("webhook event processing failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "event processing failed"},
		})
	}

	logger.Info("webhook event " + event.ID + " " + string(event.Type) + " -> " + string(outcome))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
