package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/repository"
)

const dateLayout = "2006-01-02"

// Summary aggregates receipts for a period.
type Summary struct {
	Start  time.Time
	End    time.Time
	Orders int
	Units  int
	Total  decimal.Decimal
}

// String renders the summary the way it is logged and shown.
func (s Summary) String() string {
	if s.Orders == 0 {
		return fmt.Sprintf("Sales summary (%s-%s): no orders yet.", s.Start.Format(dateLayout), s.End.Format(dateLayout))
	}
	return fmt.Sprintf("Sales summary (%s-%s): %d orders, %d units, total %s.",
		s.Start.Format(dateLayout), s.End.Format(dateLayout), s.Orders, s.Units, models.FormatMoney(s.Total))
}

// Service exposes lightweight analytics over archived receipts.
type Service struct {
	receipts repository.ReceiptStore
	logger   *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(receipts repository.ReceiptStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{receipts: receipts, logger: logger}
}

// SalesSummary aggregates the receipts created within [start, end].
func (s *Service) SalesSummary(ctx context.Context, start, end time.Time) (Summary, error) {
	receipts, err := s.receipts.ListReceipts(ctx, start, end)
	if err != nil {
		return Summary{}, fmt.Errorf("load receipts: %w", err)
	}

	summary := Summary{Start: start, End: end, Total: decimal.Zero}
	for _, r := range receipts {
		if r.Total.IsNegative() {
			s.logger.Debug("skip receipt with negative total", zap.String("receipt", r.ID))
			continue
		}
		summary.Orders++
		summary.Units += r.Units
		summary.Total = summary.Total.Add(r.Total)
	}

	return summary, nil
}

// DailySummary summarizes the calendar day containing now, in now's location.
func (s *Service) DailySummary(ctx context.Context, now time.Time) (Summary, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.SalesSummary(ctx, start, start.Add(24*time.Hour-time.Nanosecond))
}
