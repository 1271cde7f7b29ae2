package intake

import (
	"context"
	"errors"
	"sync"
	"testing"

	bookingModel "marketplace-booking/models/booking"
	listingModel "marketplace-booking/models/listing"
	"marketplace-booking/repository"
	"marketplace-booking/services/payments"
	bookingTypes "marketplace-booking/types/booking"
)

type fakeRepo struct {
	listing   *listingModel.Listing
	created   *bookingModel.Booking
	commitErr error
}

var _ repository.BookingRepository = (*fakeRepo)(nil)

func (r *fakeRepo) GetActiveListing(ctx context.Context, id uint) (*listingModel.Listing, error) {
	if r.listing == nil || r.listing.ID != id {
		return nil, repository.ErrNotFound
	}
	return r.listing, nil
}

func (r *fakeRepo) CreateWithAuthorization(ctx context.Context, b *bookingModel.Booking, authorize func(*bookingModel.Booking) (string, error)) error {
	b.ID = 1
	ref, err := authorize(b)
	if err != nil {
		return err
	}
	if r.commitErr != nil {
		return r.commitErr
	}
	b.PaymentIntentID = &ref
	r.created = b
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uint) (*bookingModel.Booking, error) {
	if r.created == nil || r.created.ID != id {
		return nil, repository.ErrNotFound
	}
	full := *r.created
	full.Consumer.Email = "consumer@example.com"
	full.Provider.Email = "provider@example.com"
	return &full, nil
}

func (r *fakeRepo) FindByPaymentRef(ctx context.Context, ref string) (*bookingModel.Booking, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) TransitionPayment(ctx context.Context, bookingID uint, from, to bookingModel.PaymentStatus) (bool, error) {
	return false, nil
}

type fakeGateway struct {
	authErr   error
	authCalls int
	lastMeta  map[string]string
	lastCents int64
	cancelled []string
}

var _ payments.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) Authorize(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (payments.Authorization, error) {
	g.authCalls++
	g.lastCents = amountCents
	g.lastMeta = metadata
	if g.authErr != nil {
		return payments.Authorization{}, g.authErr
	}
	return payments.Authorization{Reference: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (g *fakeGateway) Cancel(ctx context.Context, reference string) error {
	g.cancelled = append(g.cancelled, reference)
	return nil
}

func (g *fakeGateway) ReceiptURL(ctx context.Context, reference string) (string, error) {
	return "", nil
}

type fakeMailer struct {
	mu  sync.Mutex
	err error
	n   int
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return m.err
}

func detroitListing() *listingModel.Listing {
	return &listingModel.Listing{
		ID:             5,
		ProviderID:     20,
		Title:          "Same-day courier",
		Category:       "courier",
		PriceBase:      10,
		PricePerMile:   2,
		PricePerMinute: 0.5,
		Active:         true,
	}
}

func validRequest() bookingTypes.BookingCreateRequest {
	distance := 3.0
	return bookingTypes.BookingCreateRequest{
		ListingID:       5,
		ScheduledAt:     "2026-09-15 14:30",
		DropoffAddress:  "500 Woodward Ave, Detroit",
		DistanceMiles:   &distance,
		DurationMinutes: 10,
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&fakeRepo{listing: detroitListing()}, &fakeGateway{}, &fakeMailer{})

	t.Run("missing dropoff address", func(t *testing.T) {
		req := validRequest()
		req.DropoffAddress = "  "
		_, err := svc.Create(context.Background(), 10, req)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("missing listing id", func(t *testing.T) {
		req := validRequest()
		req.ListingID = 0
		_, err := svc.Create(context.Background(), 10, req)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("half a coordinate pair", func(t *testing.T) {
		req := validRequest()
		lat := 42.33
		req.PickupLat = &lat
		_, err := svc.Create(context.Background(), 10, req)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("unparseable schedule", func(t *testing.T) {
		req := validRequest()
		req.ScheduledAt = "whenever works"
		_, err := svc.Create(context.Background(), 10, req)
		if !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("expected ErrInvalidSchedule, got %v", err)
		}
	})
}

func TestCreate_ListingNotFound(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeGateway{}, &fakeMailer{})

	_, err := svc.Create(context.Background(), 10, validRequest())
	if !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo := &fakeRepo{listing: detroitListing()}
	gateway := &fakeGateway{}
	svc := NewService(repo, gateway, &fakeMailer{})

	result, err := svc.Create(context.Background(), 10, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ClientSecret != "pi_test_secret" {
		t.Fatalf("expected client secret, got %q", result.ClientSecret)
	}
	if result.Booking.TotalPrice != 21.00 {
		t.Fatalf("expected total 21.00, got %v", result.Booking.TotalPrice)
	}
	if result.Booking.Status != bookingModel.BookingStatusPending {
		t.Fatalf("expected pending status, got %s", result.Booking.Status)
	}
	if result.Booking.PaymentStatus != bookingModel.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", result.Booking.PaymentStatus)
	}
	if result.Booking.ProviderID != 20 {
		t.Fatalf("expected provider from listing, got %d", result.Booking.ProviderID)
	}

	if repo.created == nil || repo.created.PaymentIntentID == nil || *repo.created.PaymentIntentID != "pi_test" {
		t.Fatalf("expected authorization reference persisted, got %+v", repo.created)
	}
	if gateway.lastCents != 2100 {
		t.Fatalf("expected authorization for 2100 cents, got %d", gateway.lastCents)
	}
	if gateway.lastMeta["booking_id"] != "1" {
		t.Fatalf("expected booking id in authorization metadata, got %v", gateway.lastMeta)
	}
}

func TestCreate_GatewayFailureRollsBack(t *testing.T) {
	repo := &fakeRepo{listing: detroitListing()}
	gateway := &fakeGateway{authErr: errors.New("card network down")}
	svc := NewService(repo, gateway, &fakeMailer{})

	_, err := svc.Create(context.Background(), 10, validRequest())
	if err == nil {
		t.Fatal("expected authorization failure to fail booking creation")
	}
	if repo.created != nil {
		t.Fatalf("expected no booking persisted, got %+v", repo.created)
	}
	if len(gateway.cancelled) != 0 {
		t.Fatalf("nothing to cancel when authorization never succeeded, got %v", gateway.cancelled)
	}
}

func TestCreate_CommitFailureReleasesAuthorization(t *testing.T) {
	repo := &fakeRepo{listing: detroitListing(), commitErr: errors.New("deadlock detected")}
	gateway := &fakeGateway{}
	svc := NewService(repo, gateway, &fakeMailer{})

	_, err := svc.Create(context.Background(), 10, validRequest())
	if err == nil {
		t.Fatal("expected commit failure to surface")
	}
	if len(gateway.cancelled) != 1 || gateway.cancelled[0] != "pi_test" {
		t.Fatalf("expected orphaned authorization to be released, got %v", gateway.cancelled)
	}
}

func TestCreate_EmailFailureDoesNotFailBooking(t *testing.T) {
	repo := &fakeRepo{listing: detroitListing()}
	svc := NewService(repo, &fakeGateway{}, &fakeMailer{err: errors.New("smtp refused")})

	result, err := svc.Create(context.Background(), 10, validRequest())
	if err != nil {
		t.Fatalf("email failures must never fail booking creation, got %v", err)
	}
	if result.Booking == nil || result.Booking.ID != 1 {
		t.Fatalf("expected created booking, got %+v", result.Booking)
	}
}
