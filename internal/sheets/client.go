package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/budgetflow/internal/common"
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/service"
)

// ErrNotNumeric is returned when a target cell holds text that is not a number.
var ErrNotNumeric = errors.New("cell does not contain a number")

const (
	renderUnformatted = "UNFORMATTED_VALUE"
	renderFormatted   = "FORMATTED_VALUE"
	// RAW keeps numbers numeric regardless of the spreadsheet's locale.
	inputRaw = "RAW"
)

// Client implements service.GridStore on top of the Sheets v4 API.
type Client struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
	retry   service.RetryOptions
}

var _ service.GridStore = (*Client)(nil)

// NewClient creates a Sheets client from config.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewClientWithService(srv, config, logger), nil
}

// NewClientWithService wraps an already constructed Sheets service.
func NewClientWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Client{
		service: srv,
		logger:  logger,
		config:  config,
		retry: service.RetryOptions{
			MaxAttempts:  config.RetryAttempts + 1,
			InitialDelay: config.RetryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		if config.RefreshToken == "" {
			saved, err := LoadToken(config.TokenFile)
			if err != nil {
				return nil, fmt.Errorf("unable to load token file (run `budgetflow auth` first): %w", err)
			}
			token = saved
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// quoteSheet renders a sheet name for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func cellRange(sheetName string, cell model.CellRef) string {
	return quoteSheet(sheetName) + "!" + cell.A1()
}

// call runs one API request with retries on rate limits, server errors and
// network failures.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	err := common.WithRetry(ctx, func() error {
		return classifyError(ctx, fn())
	}, c.retry)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func classifyError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return common.Permanent(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return common.Retryable(err)
		}
		return common.Permanent(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return common.Retryable(err)
	}
	return common.Permanent(err)
}

// GetCell reads a single numeric cell. Empty cells read as zero.
func (c *Client) GetCell(ctx context.Context, spreadsheetID, sheetName string, cell model.CellRef) (decimal.Decimal, error) {
	rng := cellRange(sheetName, cell)

	var resp *sheets.ValueRange
	err := c.call(ctx, "get "+rng, func() error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(spreadsheetID, rng).
			ValueRenderOption(renderUnformatted).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return firstValue(resp, cell)
}

// BatchGetCells reads many cells in one request per BatchSize cells.
// Cells never written read as zero.
func (c *Client) BatchGetCells(ctx context.Context, spreadsheetID, sheetName string, cells []model.CellRef) (map[model.CellRef]decimal.Decimal, error) {
	out := make(map[model.CellRef]decimal.Decimal, len(cells))

	for start := 0; start < len(cells); start += c.config.BatchSize {
		chunk := cells[start:min(start+c.config.BatchSize, len(cells))]
		ranges := make([]string, len(chunk))
		for i, cell := range chunk {
			ranges[i] = cellRange(sheetName, cell)
		}

		var resp *sheets.BatchGetValuesResponse
		err := c.call(ctx, fmt.Sprintf("batch get %d cells", len(chunk)), func() error {
			var err error
			resp, err = c.service.Spreadsheets.Values.BatchGet(spreadsheetID).
				Ranges(ranges...).
				ValueRenderOption(renderUnformatted).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		// Value ranges come back in request order
		for i, cell := range chunk {
			var vr *sheets.ValueRange
			if i < len(resp.ValueRanges) {
				vr = resp.ValueRanges[i]
			}
			value, err := firstValue(vr, cell)
			if err != nil {
				return nil, err
			}
			out[cell] = value
		}
	}

	c.logger.Debug("Read cells", "sheet", sheetName, "cells", len(cells))
	return out, nil
}

// SetCell writes a single numeric cell.
func (c *Client) SetCell(ctx context.Context, spreadsheetID, sheetName string, cell model.CellRef, value decimal.Decimal) error {
	rng := cellRange(sheetName, cell)
	vr := &sheets.ValueRange{Values: [][]any{{value.InexactFloat64()}}}

	return c.call(ctx, "update "+rng, func() error {
		_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
			ValueInputOption(inputRaw).
			Context(ctx).
			Do()
		return err
	})
}

// BatchSetCells writes many cells in one request per BatchSize cells.
func (c *Client) BatchSetCells(ctx context.Context, spreadsheetID, sheetName string, updates map[model.CellRef]decimal.Decimal) error {
	cells := make([]model.CellRef, 0, len(updates))
	for cell := range updates {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})

	for start := 0; start < len(cells); start += c.config.BatchSize {
		chunk := cells[start:min(start+c.config.BatchSize, len(cells))]
		req := &sheets.BatchUpdateValuesRequest{
			ValueInputOption: inputRaw,
			Data:             make([]*sheets.ValueRange, 0, len(chunk)),
		}
		for _, cell := range chunk {
			req.Data = append(req.Data, &sheets.ValueRange{
				Range:  cellRange(sheetName, cell),
				Values: [][]any{{updates[cell].InexactFloat64()}},
			})
		}

		err := c.call(ctx, fmt.Sprintf("batch update %d cells", len(chunk)), func() error {
			_, err := c.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
			return err
		})
		if err != nil {
			return err
		}
	}

	c.logger.Debug("Wrote cells", "sheet", sheetName, "cells", len(cells))
	return nil
}

// DownloadAllRows returns every row of the tab as displayed text.
func (c *Client) DownloadAllRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := c.call(ctx, "download "+sheetName, func() error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(spreadsheetID, quoteSheet(sheetName)).
			ValueRenderOption(renderFormatted).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = cellText(v)
		}
	}
	return rows, nil
}

// firstValue extracts the single value of a one-cell range.
func firstValue(vr *sheets.ValueRange, cell model.CellRef) (decimal.Decimal, error) {
	if vr == nil || len(vr.Values) == 0 || len(vr.Values[0]) == 0 {
		return decimal.Zero, nil
	}
	return parseCellValue(vr.Values[0][0], cell)
}

// parseCellValue converts an unformatted cell value to a decimal.
func parseCellValue(v any, cell model.CellRef) (decimal.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		if strings.TrimSpace(val) == "" {
			return decimal.Zero, nil
		}
		d, ok := model.ParseAmount(val)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s holds %q", ErrNotNumeric, cell, val)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s holds %v", ErrNotNumeric, cell, val)
	}
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
