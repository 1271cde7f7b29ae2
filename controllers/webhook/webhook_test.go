package webhook

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bookingModel "marketplace-booking/models/booking"
	listingModel "marketplace-booking/models/listing"
	"marketplace-booking/repository"
	"marketplace-booking/services/reconciler"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v81/webhook"
)

const testSecret = "whsec_test_secret"

type fakeRepo struct {
	bookings map[uint]*bookingModel.Booking
}

var _ repository.BookingRepository = (*fakeRepo)(nil)

func (r *fakeRepo) GetActiveListing(ctx context.Context, id uint) (*listingModel.Listing, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) CreateWithAuthorization(ctx context.Context, b *bookingModel.Booking, authorize func(*bookingModel.Booking) (string, error)) error {
	return repository.ErrNotFound
}

func (r *fakeRepo) FindByID(ctx context.Context, id uint) (*bookingModel.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepo) FindByPaymentRef(ctx context.Context, ref string) (*bookingModel.Booking, error) {
	for _, b := range r.bookings {
		if b.PaymentIntentID != nil && *b.PaymentIntentID == ref {
			clone := *b
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) TransitionPayment(ctx context.Context, bookingID uint, from, to bookingModel.PaymentStatus) (bool, error) {
	b, ok := r.bookings[bookingID]
	if !ok || b.PaymentStatus != from {
		return false, nil
	}
	b.PaymentStatus = to
	return true, nil
}

type noopMailer struct{}

func (noopMailer) Send(to, subject, body string) error { return nil }

func newTestApp(repo *fakeRepo) *fiber.App {
	rec := reconciler.New(repo, noopMailer{}, nil, nil)
	wc := NewWebhookController(rec, testSecret)

	app := fiber.New()
	app.Post("/api/webhook/stripe", wc.HandleStripe)
	return app
}

func pendingBooking() *fakeRepo {
	ref := "pi_123"
	return &fakeRepo{bookings: map[uint]*bookingModel.Booking{
		1: {
			ID:              1,
			PaymentIntentID: &ref,
			Status:          bookingModel.BookingStatusPending,
			PaymentStatus:   bookingModel.PaymentStatusPending,
		},
	}}
}

func signedHeader(payload []byte, secret string) string {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func post(t *testing.T, app *fiber.App, payload []byte, signature string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)
	return resp, body
}

func eventPayload(eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_test","object":"event","type":%q,"data":{"object":%s}}`, eventType, object))
}

func TestHandleStripe_MissingSignature(t *testing.T) {
	app := newTestApp(pendingBooking())

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_123","object":"payment_intent"}`)
	resp, body := post(t, app, payload, "")

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if received, ok := body["received"].(bool); !ok || received {
		t.Fatalf("expected received=false, got %v", body)
	}
}

func TestHandleStripe_TamperedBodyRejectedBeforeMutation(t *testing.T) {
	repo := pendingBooking()
	app := newTestApp(repo)

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_123","object":"payment_intent","metadata":{"booking_id":"1"}}`)
	signature := signedHeader(payload, testSecret)

	// Attacker swaps the body after signing.
	tampered := bytes.Replace(payload, []byte(`"booking_id":"1"`), []byte(`"booking_id":"2"`), 1)
	resp, _ := post(t, app, tampered, signature)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if repo.bookings[1].PaymentStatus != bookingModel.PaymentStatusPending {
		t.Fatalf("state must not change on signature failure, got %s", repo.bookings[1].PaymentStatus)
	}
}

func TestHandleStripe_WrongSecretRejected(t *testing.T) {
	app := newTestApp(pendingBooking())

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_123","object":"payment_intent"}`)
	resp, _ := post(t, app, payload, signedHeader(payload, "whsec_other"))

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleStripe_ValidEventApplied(t *testing.T) {
	repo := pendingBooking()
	app := newTestApp(repo)

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_123","object":"payment_intent","metadata":{"booking_id":"1"}}`)
	resp, body := post(t, app, payload, signedHeader(payload, testSecret))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if received, ok := body["received"].(bool); !ok || !received {
		t.Fatalf("expected received=true, got %v", body)
	}
	if repo.bookings[1].PaymentStatus != bookingModel.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", repo.bookings[1].PaymentStatus)
	}
}

func TestHandleStripe_UnknownEventTypeAccepted(t *testing.T) {
	repo := pendingBooking()
	app := newTestApp(repo)

	payload := eventPayload("customer.created", `{"id":"cus_1","object":"customer"}`)
	resp, body := post(t, app, payload, signedHeader(payload, testSecret))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown event types must be acknowledged, got %d", resp.StatusCode)
	}
	if received, ok := body["received"].(bool); !ok || !received {
		t.Fatalf("expected received=true, got %v", body)
	}
	if repo.bookings[1].PaymentStatus != bookingModel.PaymentStatusPending {
		t.Fatalf("payment status must be untouched, got %s", repo.bookings[1].PaymentStatus)
	}
}

func TestHandleStripe_UnknownBookingAcknowledged(t *testing.T) {
	app := newTestApp(&fakeRepo{bookings: map[uint]*bookingModel.Booking{}})

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_void","object":"payment_intent","metadata":{"booking_id":"42"}}`)
	resp, body := post(t, app, payload, signedHeader(payload, testSecret))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retrying an unknown booking cannot help; expected 200, got %d", resp.StatusCode)
	}
	if received, ok := body["received"].(bool); !ok || !received {
		t.Fatalf("expected received=true, got %v", body)
	}
}
