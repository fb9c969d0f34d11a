// Package sheets provides the Google Sheets implementation of the budget
// grid store.
package sheets

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/budgetflow/internal/classification"
	"github.com/Veraticus/budgetflow/internal/common"
	"github.com/Veraticus/budgetflow/internal/model"
)

// Authentication errors.
var (
	ErrNoAuth        = errors.New("no authentication method configured")
	ErrMultipleAuth  = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
	ErrNoSpreadsheet = errors.New("no spreadsheet ID configured")
)

// Layout describes where things live on the budget tab. Rows and columns
// are 1-based.
type Layout struct {
	YearRow          int
	MonthHeaderRow   int
	IncomeRow        int
	FirstDataRow     int
	MonthStartColumn int
	CategoryColumn   int
	SectionColumn    int
}

// DefaultLayout matches the built-in budget template.
func DefaultLayout() Layout {
	return Layout{
		YearRow:          classification.DefaultYearRow,
		MonthHeaderRow:   classification.DefaultMonthHeaderRow,
		IncomeRow:        classification.DefaultIncomeRow,
		FirstDataRow:     classification.DefaultFirstDataRow,
		MonthStartColumn: classification.DefaultMonthStartColumn,
		CategoryColumn:   1,
		SectionColumn:    2,
	}
}

// DefaultStructure places the built-in categories on this layout, starting at
// the first data row.
func (l Layout) DefaultStructure() *model.SheetStructure {
	return &model.SheetStructure{
		YearRow:          l.YearRow,
		MonthHeaderRow:   l.MonthHeaderRow,
		IncomeRow:        l.IncomeRow,
		FirstDataRow:     l.FirstDataRow,
		MonthStartColumn: l.MonthStartColumn,
		Categories:       classification.DefaultCategoriesAt(l.FirstDataRow),
	}
}

// Validate checks that every offset points inside the sheet.
func (l Layout) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"year row", l.YearRow},
		{"month header row", l.MonthHeaderRow},
		{"income row", l.IncomeRow},
		{"first data row", l.FirstDataRow},
		{"month start column", l.MonthStartColumn},
		{"category column", l.CategoryColumn},
		{"section column", l.SectionColumn},
	}
	for _, c := range checks {
		if c.value < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, c.name, c.value)
		}
	}
	for _, c := range checks[:3] {
		if c.value >= l.FirstDataRow {
			return fmt.Errorf("%w: %s %d must be above first data row %d",
				common.ErrInvalidConfig, c.name, c.value, l.FirstDataRow)
		}
	}
	if l.CategoryColumn == l.SectionColumn {
		return fmt.Errorf("%w: category and section columns must differ", common.ErrInvalidConfig)
	}
	if l.MonthStartColumn <= l.CategoryColumn || l.MonthStartColumn <= l.SectionColumn {
		return fmt.Errorf("%w: months must start right of the category and section columns", common.ErrInvalidConfig)
	}
	return nil
}

// Config holds the configuration for the Google Sheets client.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SheetName          string
	Layout             Layout
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SheetName:     fmt.Sprint(time.Now().Year()),
		Layout:        DefaultLayout(),
		BatchSize:     500,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv fills empty fields from GOOGLE_SHEETS_* environment variables.
func (c *Config) LoadFromEnv() {
	setIfEmpty := func(field *string, env string) {
		if *field == "" {
			*field = os.Getenv(env)
		}
	}
	setIfEmpty(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setIfEmpty(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setIfEmpty(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setIfEmpty(&c.TokenFile, "GOOGLE_SHEETS_TOKEN_FILE")
	setIfEmpty(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	setIfEmpty(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	setIfEmpty(&c.SheetName, "GOOGLE_SHEETS_SHEET_NAME")
}

// hasOAuth reports whether OAuth2 client credentials plus a refresh token
// or saved token file are present.
func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.hasOAuth()
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return ErrNoAuth
	}
	if hasOAuth && hasServiceAccount {
		return ErrMultipleAuth
	}
	if c.SpreadsheetID == "" {
		return ErrNoSpreadsheet
	}
	if c.SheetName == "" {
		return fmt.Errorf("%w: sheet name is required", common.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return c.Layout.Validate()
}
