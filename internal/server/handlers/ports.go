package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/service/cart"
	"github.com/mamadbah2/shopsim/internal/service/checkout"
	"github.com/mamadbah2/shopsim/internal/service/commands"
)

// Catalog is the read side of the catalog loader.
type Catalog interface {
	Products() []models.Product
	Find(id string) (models.Product, bool)
	LoadError() error
}

// CartReader is the read side of the cart state manager.
type CartReader interface {
	Snapshot() models.Cart
	CalculateTotal() decimal.Decimal
}

// Checkout is the checkout flow as seen by the transport.
type Checkout interface {
	State() models.CheckoutState
	Begin(ctx context.Context) (models.BuyerInfo, error)
	Submit(ctx context.Context, info models.BuyerInfo) (models.Receipt, error)
	Cancel() error
}

// Dependencies groups what both handlers need.
type Dependencies struct {
	Catalog  Catalog
	Cart     CartReader
	Intents  commands.Dispatcher
	Checkout Checkout
}

var (
	catalogUnavailable = models.Notice{Level: models.NoticeError, Title: "Error", Message: "Products could not be loaded."}
	emptyCartNotice    = models.Notice{Level: models.NoticeInfo, Title: "Empty cart", Message: "Add products before paying."}
	busyNotice         = models.Notice{Level: models.NoticeInfo, Title: "Processing", Message: "A payment is already being processed."}
	noCheckoutNotice   = models.Notice{Level: models.NoticeInfo, Title: "Checkout", Message: "Start the checkout from the cart first."}
)

const formValidationMessage = "Name and email are required."

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var validation *checkout.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cart.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNoCheckout),
		errors.Is(err, checkout.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, commands.ErrUnsupportedIntent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// checkoutNotice describes checkout errors that are not validation failures.
func checkoutNotice(err error) models.Notice {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return emptyCartNotice
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		return busyNotice
	case errors.Is(err, checkout.ErrNoCheckout):
		return noCheckoutNotice
	default:
		return commands.NoticeFor(err)
	}
}
