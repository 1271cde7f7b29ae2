package notify

import (
	"fmt"

	bookingModel "marketplace-booking/models/booking"
	"marketplace-booking/services/mailer"

	"golang.org/x/sync/errgroup"
)

// BookingCreated emails both parties that a booking was placed. The two sends
// run concurrently; the first error (if any) is returned for logging.
func BookingCreated(m mailer.Mailer, b *bookingModel.Booking) error {
	consumerBody := fmt.Sprintf(
		"Your booking #%d for %q is in. Scheduled %s, dropoff at %s. Total: $%.2f.\nComplete the payment to confirm it.",
		b.ID, b.Listing.Title, b.ScheduledAt.Format("Mon, 02 Jan 2006 15:04"), b.DropoffAddress, b.TotalPrice)
	providerBody := fmt.Sprintf(
		"New booking #%d for your listing %q. Scheduled %s, dropoff at %s. Total: $%.2f.",
		b.ID, b.Listing.Title, b.ScheduledAt.Format("Mon, 02 Jan 2006 15:04"), b.DropoffAddress, b.TotalPrice)

	return sendPair(m, b,
		fmt.Sprintf("Booking #%d received", b.ID), consumerBody,
		fmt.Sprintf("New booking #%d", b.ID), providerBody)
}

// PaymentConfirmed emails both parties an order summary once payment flips to
// paid. receiptURL may be empty when the receipt lookup failed.
func PaymentConfirmed(m mailer.Mailer, b *bookingModel.Booking, receiptURL string) error {
	summary := fmt.Sprintf(
		"Booking #%d for %q is paid.\nScheduled: %s\nDropoff: %s\nTotal: $%.2f",
		b.ID, b.Listing.Title, b.ScheduledAt.Format("Mon, 02 Jan 2006 15:04"), b.DropoffAddress, b.TotalPrice)
	if receiptURL != "" {
		summary += "\nReceipt: " + receiptURL
	}

	return sendPair(m, b,
		fmt.Sprintf("Payment confirmed for booking #%d", b.ID), summary,
		fmt.Sprintf("Booking #%d has been paid", b.ID), summary)
}

func sendPair(m mailer.Mailer, b *bookingModel.Booking, consumerSubject, consumerBody, providerSubject, providerBody string) error {
	g := new(errgroup.Group)
	if b.Consumer.Email != "" {
		g.Go(func() error {
			return m.Send(b.Consumer.Email, consumerSubject, consumerBody)
		})
	}
	if b.Provider.Email != "" {
		g.Go(func() error {
			return m.Send(b.Provider.Email, providerSubject, providerBody)
		})
	}
	return g.Wait()
}
