package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/service/cart"
)

// ErrUnsupportedIntent indicates we do not support the requested intent.
var ErrUnsupportedIntent = errors.New("unsupported intent")

// CartManager defines the cart operations required by the dispatcher.
type CartManager interface {
	AddToCart(ctx context.Context, productID string, qty int) (models.Product, error)
	ChangeQuantity(ctx context.Context, productID string, delta int) error
	RemoveFromCart(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

// Dispatcher routes user intents to the cart state manager.
type Dispatcher interface {
	HandleIntent(ctx context.Context, intent models.Intent) (models.Notice, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	cart   CartManager
	logger *zap.Logger
}

// NewService constructs an intent dispatcher.
func NewService(cart CartManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cart: cart, logger: logger}
}

// HandleIntent applies the intent and describes the outcome as a notice. The error
// is returned alongside so transports can pick a status. An empty notice means
// there is nothing to show.
func (s *Service) HandleIntent(ctx context.Context, intent models.Intent) (models.Notice, error) {
	s.logger.Debug("dispatching intent", zap.String("intent", string(intent.Type)), zap.String("product", intent.ProductID), zap.Int("qty", intent.Quantity))

	var err error
	switch intent.Type {
	case models.IntentAdd:
		qty := intent.Quantity
		if qty == 0 {
			qty = 1
		}
		var product models.Product
		product, err = s.cart.AddToCart(ctx, intent.ProductID, qty)
		if err == nil {
			return models.Notice{
				Level:   models.NoticeSuccess,
				Title:   "Added",
				Message: fmt.Sprintf("%s added to cart.", product.Title),
			}, nil
		}
	case models.IntentIncrease:
		err = s.cart.ChangeQuantity(ctx, intent.ProductID, stepOf(intent))
	case models.IntentDecrease:
		err = s.cart.ChangeQuantity(ctx, intent.ProductID, -stepOf(intent))
	case models.IntentRemove:
		err = s.cart.RemoveFromCart(ctx, intent.ProductID)
	case models.IntentClear:
		err = s.cart.Clear(ctx)
	default:
		return models.Notice{
			Level:   models.NoticeError,
			Title:   "Unknown action",
			Message: "Supported actions: add, increase, decrease, remove, clear.",
		}, fmt.Errorf("%w: %s", ErrUnsupportedIntent, intent.Type)
	}

	if err != nil {
		s.logger.Info("intent rejected", zap.String("intent", string(intent.Type)), zap.String("product", intent.ProductID), zap.Error(err))
		return NoticeFor(err), err
	}
	return models.Notice{}, nil
}

func stepOf(intent models.Intent) int {
	if intent.Quantity > 0 {
		return intent.Quantity
	}
	return 1
}

// NoticeFor maps a cart error onto the notice shown to the user.
func NoticeFor(err error) models.Notice {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		return models.Notice{Level: models.NoticeError, Title: "Error", Message: "Product not found."}
	case errors.Is(err, cart.ErrInsufficientStock):
		return models.Notice{Level: models.NoticeWarning, Title: "Stock", Message: "Not enough stock available."}
	case errors.Is(err, cart.ErrInvalidQuantity):
		return models.Notice{Level: models.NoticeError, Title: "Error", Message: "Quantity must be at least 1."}
	case errors.Is(err, cart.ErrNotPersisted):
		return models.Notice{Level: models.NoticeWarning, Title: "Not saved", Message: "Cart updated for this session only; it could not be saved."}
	default:
		return models.Notice{Level: models.NoticeError, Title: "Error", Message: "Something went wrong. Please try again."}
	}
}
