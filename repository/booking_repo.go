package repository

import (
	"context"
	"errors"

	bookingModel "marketplace-booking/models/booking"
	listingModel "marketplace-booking/models/listing"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// BookingRepository is the storage surface the intake service and the payment
// event reconciler depend on.
type BookingRepository interface {
	// GetActiveListing loads a listing that is available for booking.
	GetActiveListing(ctx context.Context, id uint) (*listingModel.Listing, error)

	// CreateWithAuthorization persists the booking, invokes authorize for the
	// processor-side hold, and stores the returned reference inside one
	// transaction, so an authorization failure leaves no booking behind.
	CreateWithAuthorization(ctx context.Context, b *bookingModel.Booking, authorize func(*bookingModel.Booking) (string, error)) error

	FindByID(ctx context.Context, id uint) (*bookingModel.Booking, error)
	FindByPaymentRef(ctx context.Context, ref string) (*bookingModel.Booking, error)

	// TransitionPayment flips payment_status from one value to another with a
	// guarded update. Returns false when the row was no longer in the `from`
	// state, which makes redeliveries and concurrent events no-ops.
	TransitionPayment(ctx context.Context, bookingID uint, from, to bookingModel.PaymentStatus) (bool, error)
}

// GormBookingRepository implements BookingRepository on PostgreSQL.
type GormBookingRepository struct {
	db *gorm.DB
}

var _ BookingRepository = (*GormBookingRepository)(nil)

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) GetActiveListing(ctx context.Context, id uint) (*listingModel.Listing, error) {
	var l listingModel.Listing
	err := r.db.WithContext(ctx).Where("active = ?", true).First(&l, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *GormBookingRepository) CreateWithAuthorization(ctx context.Context, b *bookingModel.Booking, authorize func(*bookingModel.Booking) (string, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}

		ref, err := authorize(b)
		if err != nil {
			return err
		}

		if err := tx.Model(&bookingModel.Booking{}).
			Where("id = ?", b.ID).
			Update("payment_intent_id", ref).Error; err != nil {
			return err
		}
		b.PaymentIntentID = &ref

		ev := bookingModel.BookingStatusEvent{
			BookingID: b.ID,
			Status:    b.Status,
			CreatedBy: "intake",
		}
		return tx.Create(&ev).Error
	})
}

func (r *GormBookingRepository) FindByID(ctx context.Context, id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := r.db.WithContext(ctx).
		Preload("Consumer").Preload("Provider").Preload("Listing").
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) FindByPaymentRef(ctx context.Context, ref string) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := r.db.WithContext(ctx).
		Preload("Consumer").Preload("Provider").Preload("Listing").
		Where("payment_intent_id = ?", ref).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) TransitionPayment(ctx context.Context, bookingID uint, from, to bookingModel.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&bookingModel.Booking{}).
		Where("id = ? AND payment_status = ?", bookingID, from).
		Update("payment_status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
