package booking

import (
	"errors"
	"fmt"
	"strconv"

	"marketplace-booking/constants"
	"marketplace-booking/logger"
	bookingModel "marketplace-booking/models/booking"
	"marketplace-booking/services/intake"
	"marketplace-booking/types"
	bookingTypes "marketplace-booking/types/booking"
	"marketplace-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles booking-related HTTP requests
type BookingController struct {
	DB     *gorm.DB
	Intake *intake.Service
}

// NewBookingController creates a new booking controller
func NewBookingController(db *gorm.DB, intakeService *intake.Service) *BookingController {
	return &BookingController{
		DB:     db,
		Intake: intakeService,
	}
}

// Store creates a new booking and its payment authorization
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse booking request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(
			types.ErrorResponseWithDetails(types.ErrCodeValidation, "Invalid request body", err.Error()))
	}

	currentUser, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			types.ErrorResponse(types.ErrCodeAuthRequired, "Session user not found"))
	}

	result, err := bc.Intake.Create(c.UserContext(), currentUser.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, intake.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(
				types.ErrorResponseWithDetails(types.ErrCodeValidation, "Booking validation failed", err.Error()))
		case errors.Is(err, intake.ErrInvalidSchedule):
			return c.Status(fiber.StatusBadRequest).JSON(
				types.ErrorResponse(types.ErrCodeInvalidSchedule, "scheduled_at must be a valid date/time"))
		case errors.Is(err, intake.ErrListingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(
				types.ErrorResponse(types.ErrCodeNotFound, "Listing not found"))
		default:
			logger.Error("Failed to create booking", err)
			return c.Status(fiber.StatusInternalServerError).JSON(
				types.ErrorResponse(types.ErrCodeInternal, "Failed to create booking"))
		}
	}

	logger.Success(fmt.Sprintf("Booking created successfully with ID: %d", result.Booking.ID))

	return c.Status(fiber.StatusCreated).JSON(types.DataResponse(bookingTypes.BookingCreatedResponse{
		ID:           result.Booking.ID,
		ClientSecret: result.ClientSecret,
	}))
}

// Show returns one booking owned by the current user (either side)
func (bc *BookingController) Show(c *fiber.Ctx) error {
	currentUser, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			types.ErrorResponse(types.ErrCodeAuthRequired, "Session user not found"))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			types.ErrorResponse(types.ErrCodeValidation, "Invalid booking id"))
	}

	var b bookingModel.Booking
	err = bc.DB.Preload("Consumer").Preload("Provider").Preload("Listing").
		Where("consumer_id = ? OR provider_id = ?", currentUser.ID, currentUser.ID).
		First(&b, uint(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(
				types.ErrorResponse(types.ErrCodeNotFound, "Booking not found"))
		}
		logger.Error("Failed to load booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			types.ErrorResponse(types.ErrCodeInternal, "Database error"))
	}

	return c.Status(fiber.StatusOK).JSON(types.DataResponse(b))
}

// Index lists the current user's bookings, newest first
func (bc *BookingController) Index(c *fiber.Ctx) error {
	currentUser, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			types.ErrorResponse(types.ErrCodeAuthRequired, "Session user not found"))
	}

	var bookings []bookingModel.Booking
	query := bc.DB.Preload("Listing").Order("created_at DESC")
	if currentUser.Role == constants.RoleProvider {
		query = query.Where("provider_id = ?", currentUser.ID)
	} else {
		query = query.Where("consumer_id = ?", currentUser.ID)
	}
	if err := query.Find(&bookings).Error; err != nil {
		logger.Error("Failed to list bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			types.ErrorResponse(types.ErrCodeInternal, "Database error"))
	}

	return c.Status(fiber.StatusOK).JSON(types.DataResponse(bookings))
}

// Accept moves a pending booking to accepted (provider action)
func (bc *BookingController) Accept(c *fiber.Ctx) error {
	return bc.transition(c, bookingModel.BookingStatusAccepted, providerOnly)
}

// Start moves an accepted booking to in_progress (provider action)
func (bc *BookingController) Start(c *fiber.Ctx) error {
	return bc.transition(c, bookingModel.BookingStatusInProgress, providerOnly)
}

// Complete moves an in_progress booking to completed (provider action)
func (bc *BookingController) Complete(c *fiber.Ctx) error {
	return bc.transition(c, bookingModel.BookingStatusCompleted, providerOnly)
}

// Cancel cancels a booking that has not started yet (either party)
func (bc *BookingController) Cancel(c *fiber.Ctx) error {
	return bc.transition(c, bookingModel.BookingStatusCancelled, eitherParty)
}

type ownership int

const (
	providerOnly ownership = iota
	eitherParty
)

// transition loads the booking with an ownership filter, checks the workflow
// graph and writes the new status plus an audit row in one transaction.
func (bc *BookingController) transition(c *fiber.Ctx, next bookingModel.BookingStatus, owner ownership) error {
	currentUser, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			types.ErrorResponse(types.ErrCodeAuthRequired, "Session user not found"))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			types.ErrorResponse(types.ErrCodeValidation, "Invalid booking id"))
	}

	query := bc.DB.Session(&gorm.Session{})
	if owner == providerOnly {
		query = query.Where("provider_id = ?", currentUser.ID)
	} else {
		query = query.Where("consumer_id = ? OR provider_id = ?", currentUser.ID, currentUser.ID)
	}

	var b bookingModel.Booking
	if err := query.First(&b, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(
				types.ErrorResponse(types.ErrCodeNotFound, "Booking not found"))
		}
		logger.Error("Failed to load booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			types.ErrorResponse(types.ErrCodeInternal, "Database error"))
	}

	if !b.Status.CanTransitionTo(next) {
		return c.Status(fiber.StatusBadRequest).JSON(
			types.ErrorResponse(types.ErrCodeValidation,
				fmt.Sprintf("Cannot move booking from %s to %s", b.Status, next)))
	}

	err = bc.DB.Transaction(func(tx *gorm.DB) error {
		// Guard on the previous status so two racing actions cannot both win.
		res := tx.Model(&bookingModel.Booking{}).
			Where("id = ? AND status = ?", b.ID, b.Status).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		ev := bookingModel.BookingStatusEvent{
			BookingID: b.ID,
			Status:    next,
			CreatedBy: currentUser.UUID,
		}
		return tx.Create(&ev).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusConflict).JSON(
				types.ErrorResponse(types.ErrCodeValidation, "Booking status changed concurrently, retry"))
		}
		logger.Error("Failed to update booking status", err)
		return c.Status(fiber.StatusInternalServerError).JSON(
			types.ErrorResponse(types.ErrCodeInternal, "Failed to update booking status"))
	}

	b.Status = next
	logger.Success(fmt.Sprintf("Booking %d moved to %s", b.ID, next))
	return c.Status(fiber.StatusOK).JSON(types.DataResponse(b))
}
