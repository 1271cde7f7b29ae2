package payments

import (
	"context"
)

// Authorization is a processor-side hold of funds created at booking time.
type Authorization struct {
	// Reference is the processor transaction id stored on the booking as
	// the webhook correlation key.
	Reference string
	// ClientSecret lets the client complete the payment on the processor's
	// hosted flow.
	ClientSecret string
}

// Gateway abstracts the payment processor so the intake service and the
// reconciler can be exercised without network access.
type Gateway interface {
	// Authorize creates an uncaptured hold for the given amount in
	// smallest-currency units, tagged with correlation metadata.
	Authorize(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (Authorization, error)

	// Cancel releases a previously created hold. Used to compensate when the
	// booking row cannot be persisted after authorization succeeded.
	Cancel(ctx context.Context, reference string) error

	// ReceiptURL fetches the receipt link for the charge behind the given
	// authorization reference. Best-effort; an empty string is acceptable.
	ReceiptURL(ctx context.Context, reference string) (string, error)
}
