package intake

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"marketplace-booking/logger"
	bookingModel "marketplace-booking/models/booking"
	"marketplace-booking/repository"
	"marketplace-booking/services/mailer"
	"marketplace-booking/services/notify"
	"marketplace-booking/services/payments"
	"marketplace-booking/services/pricing"
	bookingTypes "marketplace-booking/types/booking"

	"github.com/jinzhu/now"
)

var (
	ErrValidation      = errors.New("booking request validation failed")
	ErrInvalidSchedule = errors.New("scheduled_at is not a valid date/time")
	ErrListingNotFound = errors.New("listing not found")
)

// Service turns a booking request into a persisted booking plus an
// uncaptured payment authorization.
type Service struct {
	repo    repository.BookingRepository
	gateway payments.Gateway
	mailer  mailer.Mailer
}

func NewService(repo repository.BookingRepository, gateway payments.Gateway, m mailer.Mailer) *Service {
	return &Service{repo: repo, gateway: gateway, mailer: m}
}

// Result is returned to the intake handler on success.
type Result struct {
	Booking      *bookingModel.Booking
	ClientSecret string
}

// Create validates the request, computes the price, persists the booking and
// creates the payment authorization. The booking row and the authorization
// reference commit atomically; an authorization created for a booking that
// failed to commit is cancelled best-effort.
func (s *Service) Create(ctx context.Context, consumerID uint, req bookingTypes.BookingCreateRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	scheduledAt, err := now.Parse(strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		return Result{}, ErrInvalidSchedule
	}

	l, err := s.repo.GetActiveListing(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, ErrListingNotFound
		}
		return Result{}, err
	}

	total := pricing.Quote(
		pricing.Rates{Base: l.PriceBase, PerMile: l.PricePerMile, PerMinute: l.PricePerMinute},
		pricing.Input{
			DistanceMiles:   req.DistanceMiles,
			DurationMinutes: req.DurationMinutes,
			PickupLat:       req.PickupLat,
			PickupLng:       req.PickupLng,
			DropoffLat:      req.DropoffLat,
			DropoffLng:      req.DropoffLng,
		},
	)

	b := &bookingModel.Booking{
		ConsumerID:     consumerID,
		ProviderID:     l.ProviderID,
		ListingID:      l.ID,
		ScheduledAt:    scheduledAt,
		DropoffAddress: strings.TrimSpace(req.DropoffAddress),
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		TotalPrice:     total,
		Status:         bookingModel.BookingStatusPending,
		PaymentStatus:  bookingModel.PaymentStatusPending,
	}
	if addr := strings.TrimSpace(req.PickupAddress); addr != "" {
		b.PickupAddress = &addr
	}
	if instr := strings.TrimSpace(req.SpecialInstructions); instr != "" {
		b.SpecialInstructions = &instr
	}

	var clientSecret string
	var authRef string
	err = s.repo.CreateWithAuthorization(ctx, b, func(created *bookingModel.Booking) (string, error) {
		auth, aerr := s.gateway.Authorize(ctx, pricing.AmountCents(total), "", map[string]string{
			"booking_id":  strconv.FormatUint(uint64(created.ID), 10),
			"listing_id":  strconv.FormatUint(uint64(created.ListingID), 10),
			"consumer_id": strconv.FormatUint(uint64(created.ConsumerID), 10),
		})
		if aerr != nil {
			return "", aerr
		}
		authRef = auth.Reference
		clientSecret = auth.ClientSecret
		return auth.Reference, nil
	})
	if err != nil {
		// The hold exists but the booking never committed; release it so
		// funds aren't stuck on an authorization nothing references.
		if authRef != "" {
			if cerr := s.gateway.Cancel(ctx, authRef); cerr != nil {
				logger.Error(fmt.Sprintf("failed to release orphaned authorization %s", authRef), cerr)
			}
		}
		return Result{}, err
	}

	// Notification emails must never fail or roll back the booking.
	if full, ferr := s.repo.FindByID(ctx, b.ID); ferr == nil {
		b = full
		go func(snapshot bookingModel.Booking) {
			if merr := notify.BookingCreated(s.mailer, &snapshot); merr != nil {
				logger.Error(fmt.Sprintf("booking %d confirmation emails failed", snapshot.ID), merr)
			}
		}(*full)
	} else {
		logger.Error(fmt.Sprintf("failed to reload booking %d for notifications", b.ID), ferr)
	}

	return Result{Booking: b, ClientSecret: clientSecret}, nil
}
