package bankcsv

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported in Result.
const (
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode converts raw export bytes to text. A UTF-8 byte-order mark or
// well-formed UTF-8 is taken as UTF-8; anything else is read as Windows-1252,
// the usual encoding of Swedish bank exports.
func decode(raw []byte) (string, string, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
		if err != nil {
			return "", "", fmt.Errorf("failed to decode UTF-8 input: %w", err)
		}
		return string(out), EncodingUTF8BOM, nil
	}
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8, nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode Windows-1252 input: %w", err)
	}
	return string(out), EncodingWindows1252, nil
}

// detectDelimiter picks ';' when the header line has more semicolons than
// commas, otherwise ','.
func detectDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}

// splitMetadata drops the export's leading metadata line and returns the rest.
func splitMetadata(text string) (string, bool) {
	i := strings.IndexByte(text, '\n')
	if i < 0 {
		return "", false
	}
	return text[i+1:], true
}

// firstLine returns text up to the first line break.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}
