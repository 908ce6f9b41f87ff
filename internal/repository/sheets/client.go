package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/shopsim/internal/config"
)

// Rows is the part of a spreadsheet the receipt archive writes to and reads from.
type Rows interface {
	Append(ctx context.Context, row []interface{}) error
	All(ctx context.Context) ([][]interface{}, error)
}

// Client appends and reads rows within one A1 range of a spreadsheet.
type Client struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewClient authenticates with the service account file from cfg and binds the
// client to sheetRange, e.g. "Receipts!A:F".
func NewClient(ctx context.Context, cfg config.SheetsConfig, sheetRange string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id must not be empty")
	}
	if sheetRange == "" {
		return nil, errors.New("sheet range must not be empty")
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Client{
		values:        service.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    sheetRange,
		logger:        logger,
	}, nil
}

// Append adds row below the last filled row. Values are stored as given, so money
// strings keep their two decimals.
func (c *Client) Append(ctx context.Context, row []interface{}) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	_, err := c.values.Append(c.spreadsheetID, c.sheetRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row into %s: %w", c.sheetRange, err)
	}

	c.logger.Debug("row appended", zap.String("range", c.sheetRange), zap.Int("cells", len(row)))
	return nil
}

// All returns every row of the range. Numbers come back unformatted (float64).
func (c *Client) All(ctx context.Context) ([][]interface{}, error) {
	resp, err := c.values.Get(c.spreadsheetID, c.sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", c.sheetRange, err)
	}
	return resp.Values, nil
}
