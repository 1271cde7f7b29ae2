package routes

import (
	"os"

	"marketplace-booking/constants"
	bookingController "marketplace-booking/controllers/booking"
	webhookController "marketplace-booking/controllers/webhook"
	"marketplace-booking/logger"
	"marketplace-booking/middleware"
	"marketplace-booking/repository"
	"marketplace-booking/services/intake"
	"marketplace-booking/services/mailer"
	"marketplace-booking/services/payments"
	"marketplace-booking/services/reconciler"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Every request/response pair lands in the logs table off the hot path
	app.Use(middleware.RequestLog(asyncLogger))

	gateway, err := payments.NewStripeGateway()
	if err != nil {
		logger.Fatal("Failed to initialize payment gateway: " + err.Error())
	}

	smtpMailer := mailer.NewSMTPMailer()
	bookingRepo := repository.NewGormBookingRepository(db)
	intakeService := intake.NewService(bookingRepo, gateway, smtpMailer)
	paymentReconciler := reconciler.New(bookingRepo, smtpMailer, gateway, asyncLogger)

	bookings := bookingController.NewBookingController(db, intakeService)
	webhooks := webhookController.NewWebhookController(paymentReconciler, os.Getenv("STRIPE_WEBHOOK_SECRET"))

	api := app.Group("/api")

	/*=============================================================================
	| Payment processor webhook (authenticated by signature, not session)
	===============================================================================*/
	api.Post("/webhook/stripe", webhooks.HandleStripe)

	/*=============================================================================
	| Booking Routes
	===============================================================================*/
	bookingGroup := api.Group("/booking")

	bookingGroup.Post("/create", middleware.RequireRoles(
		constants.RoleConsumer,
	), bookings.Store)

	bookingGroup.Get("/", middleware.RequireAuthentication(), bookings.Index)
	bookingGroup.Get("/:id", middleware.RequireAuthentication(), bookings.Show)

	// Provider-side lifecycle actions
	bookingGroup.Post("/:id/accept", middleware.RequireRoles(
		constants.RoleProvider,
	), bookings.Accept)

	bookingGroup.Post("/:id/start", middleware.RequireRoles(
		constants.RoleProvider,
	), bookings.Start)

	bookingGroup.Post("/:id/complete", middleware.RequireRoles(
		constants.RoleProvider,
	), bookings.Complete)

	// Either party may cancel before work starts
	bookingGroup.Post("/:id/cancel", middleware.RequireAuthentication(), bookings.Cancel)
}
