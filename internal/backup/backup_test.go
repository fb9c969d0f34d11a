package backup

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() Snapshot {
	return Snapshot{
		ExportedAt:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		SpreadsheetID: "sheet-123",
		SheetName:     "2024",
		Rows: [][]string{
			{"Hyra", "Gemensamt", "8 500"},
			{"Mat"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "csv", want: FormatCSV},
		{input: "JSON", want: FormatJSON},
		{input: " text ", want: FormatText},
		{input: "txt", want: FormatText},
		{input: "xlsx", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	rows := 0
	require.NoError(t, Write(&buf, testSnapshot(), Options{Format: FormatCSV, OnRow: func() { rows++ }}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Hyra", "Gemensamt", "8 500"},
		{"Mat", "", ""},
	}, records)
	assert.Equal(t, 2, rows)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testSnapshot(), Options{Format: FormatJSON}))

	var got Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "sheet-123", got.SpreadsheetID)
	assert.Equal(t, "2024", got.SheetName)
	assert.Equal(t, testSnapshot().Rows, got.Rows)
	assert.Contains(t, buf.String(), `"exported_at": "2024-03-10T12:00:00Z"`)
}

func TestWrite_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Snapshot{}, Options{Format: FormatJSON}))
	assert.Contains(t, buf.String(), `"rows": []`)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testSnapshot(), Options{Format: FormatText}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "  | A    | B         | C", lines[0])
	assert.Equal(t, "1 | Hyra | Gemensamt | 8 500", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "2 | Mat  |"), lines[2])
}

func TestWrite_TextWideColumns(t *testing.T) {
	row := make([]string, 28)
	row[27] = "x"
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Snapshot{Rows: [][]string{row}}, Options{Format: FormatText}))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.True(t, strings.HasSuffix(header, "| AA | AB"), header)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, testSnapshot(), Options{Format: "xml"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
