package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/repository"
)

// Store is an in-process key-value store.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value under key or repository.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return value, nil
}

// Set overwrites the value under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// ReceiptArchive keeps receipts in process memory.
type ReceiptArchive struct {
	mu       sync.RWMutex
	receipts []models.Receipt
}

// NewReceiptArchive creates an empty archive.
func NewReceiptArchive() *ReceiptArchive {
	return &ReceiptArchive{}
}

// SaveReceipt appends a receipt.
func (a *ReceiptArchive) SaveReceipt(_ context.Context, receipt models.Receipt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.receipts = append(a.receipts, receipt)
	return nil
}

// ListReceipts returns receipts created within [start, end].
func (a *ReceiptArchive) ListReceipts(_ context.Context, start, end time.Time) ([]models.Receipt, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []models.Receipt
	for _, r := range a.receipts {
		if r.CreatedAt.Before(start) || r.CreatedAt.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
