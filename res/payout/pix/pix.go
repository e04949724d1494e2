package pix

import (
	"context"
	"fmt"
	"log"

	"cleanscore-api/res/payout"
)

// gateway is a simulated PIX transfer provider used until a real payment
// integration is configured. Transfers always succeed for a non-empty
// destination.
type gateway struct {
	logger *log.Logger
}

// New creates the simulated PIX gateway.
func New(logger *log.Logger) payout.Gateway {
	return &gateway{logger: logger}
}

func (g *gateway) Transfer(ctx context.Context, dest payout.Destination, amountCents int64) (bool, error) {
	if dest.IsZero() {
		return false, fmt.Errorf("pix: no payout destination")
	}

	target := dest.PixKey
	if target == "" {
		target = dest.BankAccount
	}
	g.logger.Printf("Simulated PIX transfer of %d cents to %s", amountCents, target)
	return true, nil
}
