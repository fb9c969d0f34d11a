package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/budgetflow/internal/common"
	"github.com/Veraticus/budgetflow/internal/sheets"
)

// Configuration keys.
const (
	KeySpreadsheetID      = "sheets.spreadsheet_id"
	KeySheetName          = "sheets.sheet_name"
	KeyServiceAccountPath = "sheets.service_account_path"
	KeyClientID           = "sheets.client_id"
	KeyClientSecret       = "sheets.client_secret"
	KeyRefreshToken       = "sheets.refresh_token"
	KeyTokenFile          = "sheets.token_file"
	KeyBatchSize          = "sheets.batch_size"
	KeyRetryAttempts      = "sheets.retry_attempts"
	KeyRetryDelay         = "sheets.retry_delay"

	KeyYearRow          = "layout.year_row"
	KeyMonthHeaderRow   = "layout.month_header_row"
	KeyIncomeRow        = "layout.income_row"
	KeyFirstDataRow     = "layout.first_data_row"
	KeyMonthStartColumn = "layout.month_start_column"
	KeyCategoryColumn   = "layout.category_column"
	KeySectionColumn    = "layout.section_column"

	KeyRulesPath    = "rules.path"
	KeyDatabasePath = "database.path"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	sc := sheets.DefaultConfig()
	v.SetDefault(KeySheetName, sc.SheetName)
	v.SetDefault(KeyTokenFile, filepath.Join(ConfigDir(), "token.json"))
	v.SetDefault(KeyBatchSize, sc.BatchSize)
	v.SetDefault(KeyRetryAttempts, sc.RetryAttempts)
	v.SetDefault(KeyRetryDelay, sc.RetryDelay)

	layout := sc.Layout
	v.SetDefault(KeyYearRow, layout.YearRow)
	v.SetDefault(KeyMonthHeaderRow, layout.MonthHeaderRow)
	v.SetDefault(KeyIncomeRow, layout.IncomeRow)
	v.SetDefault(KeyFirstDataRow, layout.FirstDataRow)
	v.SetDefault(KeyMonthStartColumn, layout.MonthStartColumn)
	v.SetDefault(KeyCategoryColumn, layout.CategoryColumn)
	v.SetDefault(KeySectionColumn, layout.SectionColumn)

	v.SetDefault(KeyRulesPath, filepath.Join(ConfigDir(), "mappings.json"))
	v.SetDefault(KeyDatabasePath, filepath.Join(DataDir(), "budgetflow.db"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// SheetsConfig reads the Google Sheets settings without validating them.
// Viper values (config file or BUDGETFLOW_ env vars) win over the direct
// GOOGLE_SHEETS_* environment variables.
func SheetsConfig(v *viper.Viper) sheets.Config {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString(KeyServiceAccountPath))
	config.ClientID = v.GetString(KeyClientID)
	config.ClientSecret = v.GetString(KeyClientSecret)
	config.RefreshToken = v.GetString(KeyRefreshToken)
	config.SpreadsheetID = v.GetString(KeySpreadsheetID)
	if name := v.GetString(KeySheetName); name != "" {
		config.SheetName = name
	}
	if v.IsSet(KeyBatchSize) {
		config.BatchSize = v.GetInt(KeyBatchSize)
	}
	if v.IsSet(KeyRetryAttempts) {
		config.RetryAttempts = v.GetInt(KeyRetryAttempts)
	}
	if v.IsSet(KeyRetryDelay) {
		config.RetryDelay = v.GetDuration(KeyRetryDelay)
	}
	config.Layout = LoadLayout(v)

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	// A token file only counts as an auth method alongside client credentials.
	if config.ClientID != "" && config.ClientSecret != "" && config.RefreshToken == "" && config.TokenFile == "" {
		config.TokenFile = ExpandPath(v.GetString(KeyTokenFile))
	}

	return config
}

// LoadSheetsConfig reads and validates the Google Sheets settings. Absent
// credentials or spreadsheet ID also match common.ErrMissingConfig.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := SheetsConfig(v)
	if err := config.Validate(); err != nil {
		if errors.Is(err, sheets.ErrNoAuth) || errors.Is(err, sheets.ErrNoSpreadsheet) {
			return nil, fmt.Errorf("sheets configuration: %w: %w", common.ErrMissingConfig, err)
		}
		return nil, fmt.Errorf("sheets configuration: %w", err)
	}
	return &config, nil
}

// LoadLayout reads the budget tab layout.
func LoadLayout(v *viper.Viper) sheets.Layout {
	layout := sheets.DefaultLayout()
	setInt := func(field *int, key string) {
		if v.IsSet(key) {
			*field = v.GetInt(key)
		}
	}
	setInt(&layout.YearRow, KeyYearRow)
	setInt(&layout.MonthHeaderRow, KeyMonthHeaderRow)
	setInt(&layout.IncomeRow, KeyIncomeRow)
	setInt(&layout.FirstDataRow, KeyFirstDataRow)
	setInt(&layout.MonthStartColumn, KeyMonthStartColumn)
	setInt(&layout.CategoryColumn, KeyCategoryColumn)
	setInt(&layout.SectionColumn, KeySectionColumn)
	return layout
}

// RulesPath returns the mapping-rule document location.
func RulesPath(v *viper.Viper) string {
	return ExpandPath(v.GetString(KeyRulesPath))
}

// DatabasePath returns the run ledger location.
func DatabasePath(v *viper.Viper) string {
	return ExpandPath(v.GetString(KeyDatabasePath))
}

// TokenFile returns where the auth command stores the OAuth2 token.
func TokenFile(v *viper.Viper) string {
	return ExpandPath(v.GetString(KeyTokenFile))
}
