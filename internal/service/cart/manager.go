package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
)

var (
	// ErrProductNotFound indicates the referenced product is not in the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock indicates the requested quantity exceeds the product stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity indicates a non-positive quantity was requested.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNotPersisted indicates the mutation was applied in memory but the store
	// rejected the write. The in-memory cart stays authoritative.
	ErrNotPersisted = errors.New("cart change not persisted")
)

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	Find(id string) (models.Product, bool)
}

// Store loads and saves the whole cart.
type Store interface {
	Load(ctx context.Context) models.Cart
	Save(ctx context.Context, cart models.Cart) error
}

// Manager owns the in-memory cart. Every operation runs to completion under one
// lock and every successful mutation is written through to the store.
type Manager struct {
	mu       sync.Mutex
	cart     models.Cart
	store    Store
	products ProductLookup
	logger   *zap.Logger
}

// NewManager restores the cart from the store and returns a ready manager.
func NewManager(ctx context.Context, store Store, products ProductLookup, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		cart:     store.Load(ctx),
		store:    store,
		products: products,
		logger:   logger,
	}
	m.logger.Info("cart restored", zap.Int("lines", len(m.cart.Lines)), zap.Int("units", m.cart.Units()))
	return m
}

// AddToCart adds qty units of a product. Requests that would push the line above
// the product stock are rejected, including the first add of a product.
func (m *Manager) AddToCart(ctx context.Context, productID string, qty int) (models.Product, error) {
	if qty < 1 {
		return models.Product{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products.Find(productID)
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	idx := m.cart.Find(productID)
	candidate := qty
	if idx >= 0 {
		candidate += m.cart.Lines[idx].Quantity
	}
	if candidate > product.Stock {
		return product, fmt.Errorf("%w: %s requested %d, stock %d", ErrInsufficientStock, productID, candidate, product.Stock)
	}

	if idx >= 0 {
		m.cart.Lines[idx].Quantity = candidate
	} else {
		m.cart.Lines = append(m.cart.Lines, models.CartLine{ProductID: productID, Quantity: candidate})
	}

	m.logger.Debug("added to cart", zap.String("product", productID), zap.Int("qty", candidate))
	return product, m.persist(ctx)
}

// ChangeQuantity shifts a line by delta. Lines that drop to zero or below are removed.
// Missing lines are ignored.
func (m *Manager) ChangeQuantity(ctx context.Context, productID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.cart.Find(productID)
	if idx < 0 || delta == 0 {
		return nil
	}

	newQty := m.cart.Lines[idx].Quantity + delta
	if newQty <= 0 {
		m.removeLocked(productID)
		return m.persist(ctx)
	}

	product, ok := m.products.Find(productID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if newQty > product.Stock {
		return fmt.Errorf("%w: %s requested %d, stock %d", ErrInsufficientStock, productID, newQty, product.Stock)
	}

	m.cart.Lines[idx].Quantity = newQty
	return m.persist(ctx)
}

// RemoveFromCart drops the line for productID if there is one.
func (m *Manager) RemoveFromCart(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(productID)
	return m.persist(ctx)
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart = models.Cart{}
	return m.persist(ctx)
}

// CalculateTotal sums price times quantity. Lines whose product is no longer in
// the catalog contribute nothing.
func (m *Manager) CalculateTotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, line := range m.cart.Lines {
		product, ok := m.products.Find(line.ProductID)
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Snapshot returns a copy of the current cart.
func (m *Manager) Snapshot() models.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone()
}

// ItemCount returns the number of units across all lines.
func (m *Manager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Units()
}

func (m *Manager) removeLocked(productID string) {
	kept := m.cart.Lines[:0]
	for _, line := range m.cart.Lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		m.cart.Lines = nil
		return
	}
	m.cart.Lines = kept
}

func (m *Manager) persist(ctx context.Context) error {
	if err := m.store.Save(ctx, m.cart); err != nil {
		m.logger.Warn("cart kept in memory only", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return nil
}
