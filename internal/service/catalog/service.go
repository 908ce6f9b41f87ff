package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	client "github.com/mamadbah2/shopsim/pkg/clients/catalog"
)

// ErrCatalogLoad indicates the product list could not be fetched or decoded.
var ErrCatalogLoad = errors.New("catalog could not be loaded")

// Service holds the session catalog. It is replaced wholesale by Load and read by
// the cart, checkout and presentation layers.
type Service struct {
	source client.Source
	logger *zap.Logger

	mu       sync.RWMutex
	products []models.Product
	index    map[string]int
	loadErr  error
}

// NewService wires a catalog holder around a product source.
func NewService(source client.Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger, index: map[string]int{}}
}

// Load fetches the product list and replaces the catalog. On failure the catalog is
// left empty and the error is remembered for display.
func (s *Service) Load(ctx context.Context) error {
	products, err := s.source.FetchProducts(ctx)
	if err == nil {
		err = checkUnique(products)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.products = nil
		s.index = map[string]int{}
		s.loadErr = fmt.Errorf("%w: %v", ErrCatalogLoad, err)
		s.logger.Error("catalog load failed", zap.Error(err))
		return s.loadErr
	}

	s.products = products
	s.index = make(map[string]int, len(products))
	for i, p := range products {
		s.index[p.ID] = i
	}
	s.loadErr = nil
	s.logger.Info("catalog loaded", zap.Int("products", len(products)))
	return nil
}

// Products returns a copy of the catalog in source order.
func (s *Service) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Find looks a product up by id.
func (s *Service) Find(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i], true
}

// LoadError returns the error of the last Load, if it failed.
func (s *Service) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func checkUnique(products []models.Product) error {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
