package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/budgetflow/internal/common"
)

func validConfig() Config {
	c := DefaultConfig()
	c.ServiceAccountPath = "/path/to/key.json"
	c.SpreadsheetID = "sheet-123"
	c.SheetName = "2024"
	return c
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		wantErr error
		mutate  func(*Config)
		name    string
	}{
		{
			name:   "service account",
			mutate: func(*Config) {},
		},
		{
			name: "oauth with refresh token",
			mutate: func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID = "client"
				c.ClientSecret = "secret"
				c.RefreshToken = "refresh"
			},
		},
		{
			name: "oauth with saved token file",
			mutate: func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID = "client"
				c.ClientSecret = "secret"
				c.TokenFile = "/tmp/token.json"
			},
		},
		{
			name: "partial oauth credentials",
			mutate: func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID = "client"
				c.RefreshToken = "refresh"
			},
			wantErr: ErrNoAuth,
		},
		{
			name: "both auth methods",
			mutate: func(c *Config) {
				c.ClientID = "client"
				c.ClientSecret = "secret"
				c.RefreshToken = "refresh"
			},
			wantErr: ErrMultipleAuth,
		},
		{
			name:    "missing spreadsheet",
			mutate:  func(c *Config) { c.SpreadsheetID = "" },
			wantErr: ErrNoSpreadsheet,
		},
		{
			name:    "missing sheet name",
			mutate:  func(c *Config) { c.SheetName = "" },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name: "zero retries is valid",
			mutate: func(c *Config) {
				c.RetryAttempts = 0
				c.RetryDelay = 0
			},
		},
		{
			name:    "negative retry delay",
			mutate:  func(c *Config) { c.RetryDelay = -1 * time.Second },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "months overlap category column",
			mutate:  func(c *Config) { c.Layout.MonthStartColumn = 2 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "same category and section column",
			mutate:  func(c *Config) { c.Layout.SectionColumn = 1 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "year row inside data rows",
			mutate:  func(c *Config) { c.Layout.YearRow = 5 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "income row below first data row",
			mutate:  func(c *Config) { c.Layout.IncomeRow = 9 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name: "custom layout",
			mutate: func(c *Config) {
				c.Layout.YearRow = 5
				c.Layout.MonthHeaderRow = 6
				c.Layout.FirstDataRow = 10
			},
		},
		{
			name:    "first data row zero",
			mutate:  func(c *Config) { c.Layout.FirstDataRow = 0 },
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigLoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/env/key.json")
	t.Setenv("GOOGLE_SHEETS_SHEET_NAME", "Budget")

	config := Config{SheetName: "2025"}
	config.LoadFromEnv()

	assert.Equal(t, "from-env", config.SpreadsheetID)
	assert.Equal(t, "/env/key.json", config.ServiceAccountPath)
	assert.Equal(t, "2025", config.SheetName, "explicit values win over the environment")
}
