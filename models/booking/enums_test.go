package booking

import (
	"testing"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	allowed := []struct {
		from, to BookingStatus
	}{
		{BookingStatusPending, BookingStatusAccepted},
		{BookingStatusPending, BookingStatusCancelled},
		{BookingStatusAccepted, BookingStatusInProgress},
		{BookingStatusAccepted, BookingStatusCancelled},
		{BookingStatusInProgress, BookingStatusCompleted},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to BookingStatus
	}{
		{BookingStatusPending, BookingStatusInProgress},
		{BookingStatusPending, BookingStatusCompleted},
		{BookingStatusInProgress, BookingStatusCancelled},
		{BookingStatusCompleted, BookingStatusCancelled},
		{BookingStatusCompleted, BookingStatusPending},
		{BookingStatusCancelled, BookingStatusAccepted},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestBookingStatus_Terminal(t *testing.T) {
	for _, s := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
		for _, next := range GetAllBookingStatuses() {
			if s.CanTransitionTo(next) {
				t.Errorf("terminal state %s must not transition to %s", s, next)
			}
		}
	}
}

func TestCanTransitionPayment(t *testing.T) {
	allowed := []struct {
		from, to PaymentStatus
	}{
		{PaymentStatusPending, PaymentStatusPaid},
		{PaymentStatusPending, PaymentStatusFailed},
		{PaymentStatusPaid, PaymentStatusRefunded},
	}
	for _, tc := range allowed {
		if !CanTransitionPayment(tc.from, tc.to) {
			t.Errorf("expected payment %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to PaymentStatus
	}{
		{PaymentStatusFailed, PaymentStatusPaid},
		{PaymentStatusRefunded, PaymentStatusPaid},
		{PaymentStatusRefunded, PaymentStatusPending},
		{PaymentStatusPending, PaymentStatusRefunded},
		{PaymentStatusPaid, PaymentStatusFailed},
		{PaymentStatusPaid, PaymentStatusPending},
	}
	for _, tc := range denied {
		if CanTransitionPayment(tc.from, tc.to) {
			t.Errorf("expected payment %s -> %s to be denied", tc.from, tc.to)
		}
	}
}
