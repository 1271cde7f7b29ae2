package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"marketplace-booking/logger"
	bookingModel "marketplace-booking/models/booking"
	"marketplace-booking/repository"
	"marketplace-booking/services/mailer"
	"marketplace-booking/services/notify"
	"marketplace-booking/services/payments"
	"marketplace-booking/types"

	"github.com/stripe/stripe-go/v81"
)

// ErrBookingNotFound means neither correlation path matched a booking. The
// webhook handler absorbs it: retrying the delivery cannot help.
var ErrBookingNotFound = errors.New("no booking matches the event")

// Outcome summarizes what applying an event did. It feeds the audit trail.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeNoop     Outcome = "noop"
	OutcomeIgnored  Outcome = "ignored"
	OutcomeRejected Outcome = "rejected"
)

// Auditor records processed events off the request path.
type Auditor interface {
	Audit(types.WebhookAuditEntry)
}

// Reconciler applies verified payment processor events to booking state.
// Transitions are idempotent: redelivered and concurrent events settle on the
// same final status, and confirmation emails fire at most once per booking.
type Reconciler struct {
	repo    repository.BookingRepository
	mailer  mailer.Mailer
	gateway payments.Gateway
	auditor Auditor
}

func New(repo repository.BookingRepository, m mailer.Mailer, gateway payments.Gateway, auditor Auditor) *Reconciler {
	return &Reconciler{repo: repo, mailer: m, gateway: gateway, auditor: auditor}
}

// paymentObject is the slice of a processor event object the reconciler
// needs. Payment intents, charges and checkout sessions all fit it.
type paymentObject struct {
	ID            string            `json:"id"`
	Object        string            `json:"object"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
	Refunded      bool              `json:"refunded"`
}

// bookingRef is the tagged correlation key: a booking id straight from event
// metadata, or the payment authorization reference for the fallback lookup.
type bookingRef struct {
	directID   uint
	paymentRef string
}

// Apply dispatches one verified event. Unknown event types and undefined
// transitions are absorbed; only storage failures surface as errors so the
// processor retries them.
func (r *Reconciler) Apply(ctx context.Context, event stripe.Event) (Outcome, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		r.audit(event, bookingRef{}, OutcomeIgnored)
		return OutcomeIgnored, nil
	}

	var obj paymentObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		logger.Error(fmt.Sprintf("webhook event %s has malformed object payload", event.ID), err)
		r.audit(event, bookingRef{}, OutcomeRejected)
		return OutcomeRejected, nil
	}

	target, handled := targetStatus(event.Type, obj)
	if !handled {
		logger.Debug(fmt.Sprintf("webhook event %s (%s) is outside the handled set, ignored", event.ID, event.Type))
		r.audit(event, correlate(obj), OutcomeIgnored)
		return OutcomeIgnored, nil
	}

	ref := correlate(obj)
	b, err := r.resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			logger.Warning(fmt.Sprintf("webhook event %s (%s) matches no booking", event.ID, event.Type))
			r.audit(event, ref, OutcomeRejected)
		}
		return OutcomeRejected, err
	}
	ref.directID = b.ID

	if b.PaymentStatus == target {
		// Redelivery of an already-applied outcome.
		r.audit(event, ref, OutcomeNoop)
		return OutcomeNoop, nil
	}

	if !bookingModel.CanTransitionPayment(b.PaymentStatus, target) {
		logger.Warning(fmt.Sprintf("booking %d: payment transition %s -> %s not defined, event %s absorbed",
			b.ID, b.PaymentStatus, target, event.ID))
		r.audit(event, ref, OutcomeRejected)
		return OutcomeRejected, nil
	}

	flipped, err := r.repo.TransitionPayment(ctx, b.ID, b.PaymentStatus, target)
	if err != nil {
		return OutcomeRejected, err
	}
	if !flipped {
		// A concurrent delivery won the guarded update.
		r.audit(event, ref, OutcomeNoop)
		return OutcomeNoop, nil
	}

	logger.Success(fmt.Sprintf("booking %d payment status %s -> %s (event %s)", b.ID, b.PaymentStatus, target, event.Type))

	// Emails only on the actual pending -> paid flip of this event kind, so
	// webhook retries cannot duplicate them.
	if event.Type == stripe.EventTypePaymentIntentSucceeded && target == bookingModel.PaymentStatusPaid {
		r.sendConfirmation(ctx, b)
	}

	r.audit(event, ref, OutcomeApplied)
	return OutcomeApplied, nil
}

// targetStatus maps the closed set of handled event kinds to the payment
// status they write. The bool is false for event types the reconciler
// tolerates but does not act on.
func targetStatus(eventType stripe.EventType, obj paymentObject) (bookingModel.PaymentStatus, bool) {
	switch eventType {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypePaymentIntentSucceeded,
		stripe.EventTypeChargeCaptured,
		stripe.EventTypeChargeSucceeded:
		return bookingModel.PaymentStatusPaid, true
	case stripe.EventTypePaymentIntentPaymentFailed,
		stripe.EventTypePaymentIntentCanceled:
		return bookingModel.PaymentStatusFailed, true
	case stripe.EventTypeChargeRefunded:
		return bookingModel.PaymentStatusRefunded, true
	case stripe.EventTypeChargeUpdated:
		if obj.Refunded {
			return bookingModel.PaymentStatusRefunded, true
		}
		return "", false
	default:
		return "", false
	}
}

// correlate extracts the tagged booking reference from the event object.
// Different event kinds surface the booking id at different depths, so both
// paths are populated when available and resolve tries them in order.
func correlate(obj paymentObject) bookingRef {
	var ref bookingRef
	if raw, ok := obj.Metadata["booking_id"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			ref.directID = uint(id)
		}
	}
	if obj.PaymentIntent != "" {
		ref.paymentRef = obj.PaymentIntent
	} else if obj.Object == "payment_intent" {
		ref.paymentRef = obj.ID
	}
	return ref
}

// resolve tries the direct booking id first, then falls back to the stored
// payment authorization reference.
func (r *Reconciler) resolve(ctx context.Context, ref bookingRef) (*bookingModel.Booking, error) {
	if ref.directID != 0 {
		b, err := r.repo.FindByID(ctx, ref.directID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if ref.paymentRef != "" {
		b, err := r.repo.FindByPaymentRef(ctx, ref.paymentRef)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrBookingNotFound
}

func (r *Reconciler) sendConfirmation(ctx context.Context, b *bookingModel.Booking) {
	receiptURL := ""
	if r.gateway != nil && b.PaymentIntentID != nil {
		url, err := r.gateway.ReceiptURL(ctx, *b.PaymentIntentID)
		if err != nil {
			logger.Warning(fmt.Sprintf("booking %d: receipt lookup failed: %v", b.ID, err))
		} else {
			receiptURL = url
		}
	}
	if err := notify.PaymentConfirmed(r.mailer, b, receiptURL); err != nil {
		logger.Error(fmt.Sprintf("booking %d payment confirmation emails failed", b.ID), err)
	}
}

func (r *Reconciler) audit(event stripe.Event, ref bookingRef, outcome Outcome) {
	if r.auditor == nil {
		return
	}
	r.auditor.Audit(types.WebhookAuditEntry{
		EventID:    event.ID,
		EventType:  string(event.Type),
		BookingID:  ref.directID,
		PaymentRef: ref.paymentRef,
		Outcome:    string(outcome),
		CreatedAt:  time.Now().UTC(),
	})
}
