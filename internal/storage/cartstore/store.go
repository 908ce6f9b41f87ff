package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/repository"
)

// DefaultKey is the storage key the cart lives under unless configured otherwise.
const DefaultKey = "simulator_cart_v1"

var errMalformedCart = errors.New("malformed cart payload")

// Store serializes the cart as a JSON array of {id, qty} pairs under a single key.
type Store struct {
	backend repository.KeyValueStore
	key     string
	logger  *zap.Logger
}

// New builds the adapter over a key-value backend.
func New(backend repository.KeyValueStore, key string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultKey
	}
	return &Store{backend: backend, key: key, logger: logger}
}

// Load returns the stored cart. Missing, unreadable or malformed data yields an
// empty cart; Load never fails.
func (s *Store) Load(ctx context.Context) models.Cart {
	raw, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Cart{}
	}
	if err != nil {
		s.logger.Warn("cart backend read failed, starting empty", zap.String("key", s.key), zap.Error(err))
		return models.Cart{}
	}

	cart, err := decode(raw)
	if err != nil {
		s.logger.Debug("discarding stored cart", zap.String("key", s.key), zap.Error(err))
		return models.Cart{}
	}
	return cart
}

// Save overwrites the stored cart with the full current contents.
func (s *Store) Save(ctx context.Context, cart models.Cart) error {
	lines := cart.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}

	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := s.backend.Set(ctx, s.key, string(payload)); err != nil {
		return fmt.Errorf("save cart under %s: %w", s.key, err)
	}
	return nil
}

func decode(raw string) (models.Cart, error) {
	if raw == "" {
		return models.Cart{}, nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return models.Cart{}, fmt.Errorf("%w: %v", errMalformedCart, err)
	}

	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return models.Cart{}, fmt.Errorf("%w: line without id", errMalformedCart)
		}
		if line.Quantity < 1 {
			return models.Cart{}, fmt.Errorf("%w: %s has quantity %d", errMalformedCart, line.ProductID, line.Quantity)
		}
		if _, dup := seen[line.ProductID]; dup {
			return models.Cart{}, fmt.Errorf("%w: duplicate id %s", errMalformedCart, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}

	if len(lines) == 0 {
		return models.Cart{}, nil
	}
	return models.Cart{Lines: lines}, nil
}
