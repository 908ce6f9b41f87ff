package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/shopsim/internal/domain/models"
)

// ErrNotFound is returned by key-value stores when no value exists under a key.
var ErrNotFound = errors.New("key not found")

// KeyValueStore is the storage surface the cart adapter writes through.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ReceiptStore archives completed checkouts for reporting.
type ReceiptStore interface {
	SaveReceipt(ctx context.Context, receipt models.Receipt) error
	ListReceipts(ctx context.Context, start, end time.Time) ([]models.Receipt, error)
}
