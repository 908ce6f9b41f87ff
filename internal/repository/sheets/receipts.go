package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
)

// ReceiptsRange is the sheet range receipt rows live in.
const ReceiptsRange = "Receipts!A:F"

const receiptColumns = 6

// ReceiptArchive stores one spreadsheet row per receipt:
// created_at | id | buyer name | buyer email | units | total.
// Itemized lines are not kept in the sheet.
type ReceiptArchive struct {
	rows   Rows
	logger *zap.Logger
}

// NewReceiptArchive stores receipts in rows, usually a *Client bound to ReceiptsRange.
func NewReceiptArchive(rows Rows, logger *zap.Logger) *ReceiptArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptArchive{rows: rows, logger: logger}
}

// SaveReceipt appends the receipt summary row.
func (a *ReceiptArchive) SaveReceipt(ctx context.Context, receipt models.Receipt) error {
	values := []interface{}{
		receipt.CreatedAt.UTC().Format(time.RFC3339),
		receipt.ID,
		receipt.Buyer.Name,
		receipt.Buyer.Email,
		receipt.Units,
		models.FormatMoney(receipt.Total),
	}
	return a.rows.Append(ctx, values)
}

// ListReceipts reads back summary rows created within [start, end]. Rows that
// cannot be parsed (headers, manual edits) are skipped.
func (a *ReceiptArchive) ListReceipts(ctx context.Context, start, end time.Time) ([]models.Receipt, error) {
	rows, err := a.rows.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load receipts range: %w", err)
	}

	var receipts []models.Receipt
	for _, row := range rows {
		if len(row) < receiptColumns {
			continue
		}

		createdAt, err := time.Parse(time.RFC3339, fmt.Sprint(row[0]))
		if err != nil {
			a.logger.Debug("skip receipt row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if createdAt.Before(start) || createdAt.After(end) {
			continue
		}

		units, err := strconv.Atoi(fmt.Sprint(row[4]))
		if err != nil {
			a.logger.Debug("skip receipt row with invalid units", zap.Any("value", row[4]), zap.Error(err))
			continue
		}

		total, err := decimal.NewFromString(fmt.Sprint(row[5]))
		if err != nil {
			a.logger.Debug("skip receipt row with invalid total", zap.Any("value", row[5]), zap.Error(err))
			continue
		}

		receipts = append(receipts, models.Receipt{
			ID:        fmt.Sprint(row[1]),
			Buyer:     models.BuyerInfo{Name: fmt.Sprint(row[2]), Email: fmt.Sprint(row[3])},
			Units:     units,
			Total:     total,
			CreatedAt: createdAt,
		})
	}

	return receipts, nil
}
