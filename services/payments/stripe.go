package payments

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"marketplace-booking/logger"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/charge"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

var ErrMissingStripeSecretKey = errors.New("missing STRIPE_SECRET_KEY")

// StripeGateway implements Gateway on top of the Stripe SDK using manual
// capture PaymentIntents.
type StripeGateway struct {
	currency string
}

func NewStripeGateway() (*StripeGateway, error) {
	key := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	if key == "" {
		logger.Error("missing STRIPE_SECRET_KEY", nil)
		return nil, ErrMissingStripeSecretKey
	}
	stripe.Key = key

	currency := strings.ToLower(strings.TrimSpace(os.Getenv("PAYMENT_CURRENCY")))
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	logger.Success("Stripe client initialized")
	return &StripeGateway{currency: currency}, nil
}

// Currency returns the configured settlement currency.
func (g *StripeGateway) Currency() string {
	return g.currency
}

func (g *StripeGateway) Authorize(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (Authorization, error) {
	if currency == "" {
		currency = g.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	// One idempotency key per authorization attempt so a transport retry
	// cannot create a second hold.
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := paymentintent.New(params)
	if err != nil {
		logger.Error("stripe payment intent create failed", err)
		return Authorization{}, fmt.Errorf("create payment intent: %w", err)
	}

	return Authorization{Reference: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) Cancel(ctx context.Context, reference string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := paymentintent.Cancel(reference, params); err != nil {
		logger.Error("stripe payment intent cancel failed", err)
		return fmt.Errorf("cancel payment intent %s: %w", reference, err)
	}
	return nil
}

func (g *StripeGateway) ReceiptURL(ctx context.Context, reference string) (string, error) {
	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx
	pi, err := paymentintent.Get(reference, getParams)
	if err != nil {
		return "", fmt.Errorf("retrieve payment intent %s: %w", reference, err)
	}
	if pi.LatestCharge == nil || pi.LatestCharge.ID == "" {
		return "", nil
	}

	chargeParams := &stripe.ChargeParams{}
	chargeParams.Context = ctx
	ch, err := charge.Get(pi.LatestCharge.ID, chargeParams)
	if err != nil {
		return "", fmt.Errorf("retrieve charge %s: %w", pi.LatestCharge.ID, err)
	}
	return ch.ReceiptURL, nil
}
