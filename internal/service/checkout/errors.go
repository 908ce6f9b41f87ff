package checkout

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyCart blocks checkout of an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoCheckout is returned when buyer info arrives outside the form step.
	ErrNoCheckout = errors.New("no checkout awaiting buyer info")
	// ErrCheckoutInProgress is returned while a payment is being processed.
	ErrCheckoutInProgress = errors.New("checkout already processing")
)

// ValidationError lists the mandatory buyer fields that were left blank.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}
