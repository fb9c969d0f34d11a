package bankcsv

import "strings"

// column names one field of the export. Diacritic-bearing columns also carry
// the names seen when an upstream tool mangled the header's encoding.
type column struct {
	canonical string
	fallbacks []string
}

var (
	colRowNumber       = column{canonical: "Radnummer"}
	colClearingNumber  = column{canonical: "Clearingnummer"}
	colAccountNumber   = column{canonical: "Kontonummer"}
	colProduct         = column{canonical: "Produkt"}
	colCurrency        = column{canonical: "Valuta"}
	colTransactionDate = column{canonical: "Transaktionsdag"}
	colCurrencyDate    = column{canonical: "Valutadag"}
	colReference       = column{canonical: "Referens"}
	colDescription     = column{canonical: "Beskrivning"}
	colAmount          = column{canonical: "Belopp"}
	colBookingDate     = column{
		canonical: "Bokföringsdag",
		fallbacks: []string{"Bokf\uFFFDringsdag", "Bokf?ringsdag", "Bokforingsdag"},
	}
	colBookedBalance = column{
		canonical: "Bokfört saldo",
		fallbacks: []string{"Bokf\uFFFDrt saldo", "Bokf?rt saldo", "Bokfort saldo"},
	}
)

var allColumns = []column{
	colRowNumber, colClearingNumber, colAccountNumber, colProduct, colCurrency,
	colBookingDate, colTransactionDate, colCurrencyDate, colReference,
	colDescription, colAmount, colBookedBalance,
}

// header maps normalized header names to field positions.
type header struct {
	index map[string]int
	width int
}

func newHeader(fields []string) header {
	h := header{index: make(map[string]int, len(fields)), width: len(fields)}
	for i, f := range fields {
		name := normalizeHeaderName(f)
		if name == "" {
			continue
		}
		if _, dup := h.index[name]; !dup {
			h.index[name] = i
		}
	}
	return h
}

func normalizeHeaderName(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	return strings.ToLower(strings.TrimSpace(s))
}

// position returns the field index of c, trying the canonical name before
// any fallback.
func (h header) position(c column) (int, bool) {
	if i, ok := h.index[normalizeHeaderName(c.canonical)]; ok {
		return i, true
	}
	for _, name := range c.fallbacks {
		if i, ok := h.index[normalizeHeaderName(name)]; ok {
			return i, true
		}
	}
	return 0, false
}

// known counts how many of the export's columns the header contains.
func (h header) known() int {
	n := 0
	for _, c := range allColumns {
		if _, ok := h.position(c); ok {
			n++
		}
	}
	return n
}
