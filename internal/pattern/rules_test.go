package pattern

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/budgetflow/internal/classification"
	"github.com/Veraticus/budgetflow/internal/model"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		file    string
		data    string
		want    []model.MappingRule
	}{
		{
			name: "json keeps key order",
			file: "mappings.json",
			data: `{"version": 2, "mappings": {"tele2": "Mobil", "ICA": "Mat", "HYRA": "Hyra", "A": "Z"}, "extra": [1, 2]}`,
			want: []model.MappingRule{
				{Pattern: "TELE2", Category: "Mobil"},
				{Pattern: "ICA", Category: "Mat"},
				{Pattern: "HYRA", Category: "Hyra"},
				{Pattern: "A", Category: "Z"},
			},
		},
		{
			name: "json drops empty pattern",
			file: "rules.json",
			data: `{"mappings": {"": "Mat", "NETFLIX": "Streaming"}}`,
			want: []model.MappingRule{{Pattern: "NETFLIX", Category: "Streaming"}},
		},
		{
			name: "yaml keeps key order",
			file: "rules.yaml",
			data: "mappings:\n  Spotify: Streaming\n  LÖN: Lön\n  HYRA: Hyra\nother: ignored\n",
			want: []model.MappingRule{
				{Pattern: "SPOTIFY", Category: "Streaming"},
				{Pattern: "LÖN", Category: "Lön"},
				{Pattern: "HYRA", Category: "Hyra"},
			},
		},
		{
			name: "empty mappings",
			file: "rules.json",
			data: `{"mappings": {}}`,
			want: []model.MappingRule{},
		},
		{
			name:    "json missing mappings",
			file:    "rules.json",
			data:    `{"rules": {"A": "B"}}`,
			wantErr: ErrNoMappings,
		},
		{
			name:    "json mapping value not a string",
			file:    "rules.json",
			data:    `{"mappings": {"A": 1}}`,
			wantErr: ErrInvalidMappings,
		},
		{
			name:    "json top level array",
			file:    "rules.json",
			data:    `[1, 2]`,
			wantErr: ErrInvalidMappings,
		},
		{
			name:    "yaml mappings is a list",
			file:    "rules.yml",
			data:    "mappings:\n  - A\n  - B\n",
			wantErr: ErrInvalidMappings,
		},
		{
			name:    "yaml without mappings",
			file:    "rules.yml",
			data:    "foo: bar\n",
			wantErr: ErrNoMappings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ParseRules(tt.file, []byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rs.Rules())
			assert.Equal(t, tt.file, rs.Source())
		})
	}
}

func TestParseRules_MalformedJSON(t *testing.T) {
	_, err := ParseRules("rules.json", []byte(`{"mappings": {"A": "B"`))
	assert.Error(t, err)
}

func TestFileRuleSource_LoadRules(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "mappings.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"mappings": {"WILLYS": "Mat"}}`), 0o600))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{not json`), 0o600))

	tests := []struct {
		name        string
		path        string
		wantSource  string
		wantWarning bool
	}{
		{name: "valid file", path: valid, wantSource: valid},
		{name: "no path configured", path: "", wantSource: classification.BuiltInSource},
		{name: "missing file", path: filepath.Join(dir, "nope.json"), wantSource: classification.BuiltInSource, wantWarning: true},
		{name: "invalid file", path: broken, wantSource: classification.BuiltInSource, wantWarning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))

			rs := NewFileRuleSource(tt.path, logger).LoadRules(context.Background())
			require.NotNil(t, rs)
			assert.Equal(t, tt.wantSource, rs.Source())
			assert.Positive(t, rs.Len())

			if tt.wantWarning {
				assert.Contains(t, logs.String(), "level=WARN")
			} else {
				assert.NotContains(t, logs.String(), "level=WARN")
			}
		})
	}
}
