package stripe

import (
	"context"
	"fmt"
	"log"

	"cleanscore-api/res/payout"

	stripego "github.com/stripe/stripe-go/v81"
	stripepayout "github.com/stripe/stripe-go/v81/payout"
)

// gateway implements payout.Gateway on top of Stripe payouts.
type gateway struct {
	currency string
	logger   *log.Logger
}

// New configures the Stripe client with the given API key and returns a
// payout gateway issuing payouts in the given currency (e.g. "brl").
func New(apiKey, currency string, logger *log.Logger) payout.Gateway {
	stripego.Key = apiKey
	return &gateway{currency: currency, logger: logger}
}

func (g *gateway) Transfer(ctx context.Context, dest payout.Destination, amountCents int64) (bool, error) {
	if dest.IsZero() {
		return false, fmt.Errorf("stripe: no payout destination")
	}

	params := &stripego.PayoutParams{
		Amount:   stripego.Int64(amountCents),
		Currency: stripego.String(g.currency),
	}
	params.Context = ctx
	if dest.BankAccount != "" {
		params.Destination = stripego.String(dest.BankAccount)
	}

	p, err := stripepayout.New(params)
	if err != nil {
		return false, fmt.Errorf("stripe: payout failed: %w", err)
	}

	if p.Status == stripego.PayoutStatusFailed || p.Status == stripego.PayoutStatusCanceled {
		g.logger.Printf("Stripe payout %s not completed (status: %s)", p.ID, p.Status)
		return false, nil
	}
	return true, nil
}
