package payout

import "context"

// Destination is where a transfer is sent. PIX key takes precedence over
// the bank account when both are set.
type Destination struct {
	PixKey      string
	BankAccount string
}

// IsZero reports whether no payout destination is configured.
func (d Destination) IsZero() bool {
	return d.PixKey == "" && d.BankAccount == ""
}

// Gateway abstracts the money-movement provider used for bonus payouts.
type Gateway interface {
	// Transfer sends amountCents to the destination. A false return with
	// nil error means the provider declined the transfer.
	Transfer(ctx context.Context, dest Destination, amountCents int64) (bool, error)
}
