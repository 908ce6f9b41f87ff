package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentGateway charges the buyer for the order total.
type PaymentGateway interface {
	Charge(ctx context.Context, amount decimal.Decimal) error
}

// SimulatedGateway waits a fixed delay and always approves the charge.
type SimulatedGateway struct {
	Delay time.Duration
}

// NewSimulatedGateway returns a gateway that approves after delay.
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{Delay: delay}
}

// Charge blocks for the configured delay. Cancellation of ctx is ignored: a payment
// that started always runs to completion.
func (g *SimulatedGateway) Charge(_ context.Context, _ decimal.Decimal) error {
	if g.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(g.Delay)
	defer timer.Stop()
	<-timer.C
	return nil
}
