package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/repository"
)

// PlaceholderBuyer pre-populates the buyer form.
var PlaceholderBuyer = models.BuyerInfo{
	Name:    "Name",
	Email:   "user@example.com",
	Address: "Address",
}

// Cart is the part of the cart state manager the checkout needs.
type Cart interface {
	Snapshot() models.Cart
	Clear(ctx context.Context) error
}

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	Find(id string) (models.Product, bool)
}

// Flow drives Idle -> AwaitingBuyerInfo -> Processing -> Completed -> Idle, with
// Cancelled and Blocked as short detours back to Idle.
type Flow struct {
	cart     Cart
	products ProductLookup
	gateway  PaymentGateway
	archive  repository.ReceiptStore
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	state models.CheckoutState
}

// NewFlow wires a checkout flow. archive may be nil.
func NewFlow(cart Cart, products ProductLookup, gateway PaymentGateway, archive repository.ReceiptStore, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		cart:     cart,
		products: products,
		gateway:  gateway,
		archive:  archive,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		state:    models.CheckoutIdle,
	}
}

// State returns the current checkout state.
func (f *Flow) State() models.CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Begin opens the buyer form. An empty cart blocks checkout and leaves everything untouched.
func (f *Flow) Begin(_ context.Context) (models.BuyerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == models.CheckoutProcessing {
		return models.BuyerInfo{}, ErrCheckoutInProgress
	}

	if f.cart.Snapshot().IsEmpty() {
		f.transition(models.CheckoutBlocked)
		f.transition(models.CheckoutIdle)
		return models.BuyerInfo{}, ErrEmptyCart
	}

	f.transition(models.CheckoutAwaitingBuyerInfo)
	return PlaceholderBuyer, nil
}

// Cancel closes the buyer form without side effects.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != models.CheckoutAwaitingBuyerInfo {
		return ErrNoCheckout
	}
	f.transition(models.CheckoutCancelled)
	f.transition(models.CheckoutIdle)
	return nil
}

// Submit validates buyer info, runs the payment and clears the cart. Validation
// failures keep the form open. The cart is read once before processing starts:
// the amount charged and the receipt both come from that snapshot, and a cart
// emptied since Begin blocks the checkout. Once processing starts it is not
// cancellable.
func (f *Flow) Submit(ctx context.Context, info models.BuyerInfo) (models.Receipt, error) {
	info = normalize(info)

	f.mu.Lock()
	if f.state == models.CheckoutProcessing {
		f.mu.Unlock()
		return models.Receipt{}, ErrCheckoutInProgress
	}
	if f.state != models.CheckoutAwaitingBuyerInfo {
		f.mu.Unlock()
		return models.Receipt{}, ErrNoCheckout
	}
	if err := validate(info); err != nil {
		f.mu.Unlock()
		return models.Receipt{}, err
	}

	receipt := f.buildReceipt(info, f.cart.Snapshot())
	if len(receipt.Lines) == 0 {
		f.transition(models.CheckoutBlocked)
		f.transition(models.CheckoutIdle)
		f.mu.Unlock()
		return models.Receipt{}, ErrEmptyCart
	}
	f.transition(models.CheckoutProcessing)
	f.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	if err := f.gateway.Charge(ctx, receipt.Total); err != nil {
		f.mu.Lock()
		f.transition(models.CheckoutIdle)
		f.mu.Unlock()
		return models.Receipt{}, fmt.Errorf("payment failed: %w", err)
	}
	receipt.CreatedAt = f.now().UTC()

	f.mu.Lock()
	f.transition(models.CheckoutCompleted)
	f.mu.Unlock()

	if f.archive != nil {
		if err := f.archive.SaveReceipt(ctx, receipt); err != nil {
			f.logger.Error("failed to archive receipt", zap.String("receipt", receipt.ID), zap.Error(err))
		}
	}

	clearErr := f.cart.Clear(ctx)
	if clearErr != nil {
		f.logger.Warn("cart cleared in memory only", zap.Error(clearErr))
	}

	f.mu.Lock()
	f.transition(models.CheckoutIdle)
	f.mu.Unlock()

	f.logger.Info("checkout completed",
		zap.String("receipt", receipt.ID),
		zap.String("total", models.FormatMoney(receipt.Total)),
		zap.Int("units", receipt.Units))

	return receipt, clearErr
}

// buildReceipt itemizes snapshot. Lines whose product left the catalog are dropped,
// so a receipt without lines means there is nothing to pay for.
func (f *Flow) buildReceipt(info models.BuyerInfo, snapshot models.Cart) models.Receipt {
	receipt := models.Receipt{
		ID:    f.newID(),
		Buyer: info,
		Total: decimal.Zero,
	}

	for _, line := range snapshot.Lines {
		product, ok := f.products.Find(line.ProductID)
		if !ok {
			continue
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		receipt.Lines = append(receipt.Lines, models.ReceiptLine{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		receipt.Units += line.Quantity
		receipt.Total = receipt.Total.Add(lineTotal)
	}

	return receipt
}

func (f *Flow) transition(next models.CheckoutState) {
	f.logger.Debug("checkout transition", zap.String("from", string(f.state)), zap.String("to", string(next)))
	f.state = next
}

func normalize(info models.BuyerInfo) models.BuyerInfo {
	return models.BuyerInfo{
		Name:    strings.TrimSpace(info.Name),
		Email:   strings.TrimSpace(info.Email),
		Address: strings.TrimSpace(info.Address),
	}
}

func validate(info models.BuyerInfo) error {
	var missing []string
	if info.Name == "" {
		missing = append(missing, "name")
	}
	if info.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
