package ofx

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>SEK
<BANKACCTFROM>
<BANKID>8327
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<DTUSER>20240119120000[0:GMT]
<TRNAMT>-245.50
<FITID>2024012001
<NAME>ICA MAXI
<MEMO>Matinkop
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105120000[0:GMT]
<TRNAMT>-8500.00
<FITID>2024010501
<NAME>HYRA
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>32000.00
<FITID>2024012501
<NAME>LON
<MEMO>Lon januari
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>SEK
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-129.00
<FITID>CC2024011001
<NAME>KORTKOP 240109 NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-119.00
<FITID>CC2024011501
<NAME>SPOTIFY
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func testParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactions, err := testParser().Parse(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, transactions, tt.expectedCount)
		})
	}
}

func TestParse_BankStatement(t *testing.T) {
	transactions, err := testParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	// Sorted by posting date, not file order
	rent := transactions[0]
	assert.Equal(t, "HYRA", rent.MappingKey())
	assert.Equal(t, "HYRA", rent.Description)
	assert.Equal(t, 2, rent.RowNumber)
	assert.Equal(t, "8327", rent.ClearingNumber)
	assert.Equal(t, "1234567890", rent.AccountNumber)
	assert.Equal(t, "SEK", rent.Currency)
	assert.True(t, rent.Amount.Equal(decimal.RequireFromString("-8500")))
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), rent.BookingDate)
	assert.Equal(t, rent.BookingDate, rent.TransactionDate)

	food := transactions[1]
	assert.Equal(t, "ICA MAXI", food.Reference)
	assert.Equal(t, "Matinkop", food.Description)
	assert.Equal(t, 1, food.RowNumber)
	assert.Equal(t, 20, food.BookingDate.Day())
	assert.Equal(t, 19, food.TransactionDate.Day())
	assert.True(t, food.IsExpense())

	salary := transactions[2]
	assert.True(t, salary.IsIncome())
	assert.True(t, salary.Amount.Equal(decimal.RequireFromString("32000")))
	assert.True(t, salary.BookedBalance.IsZero())
}

func TestParse_CreditCardStatement(t *testing.T) {
	transactions, err := testParser().Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, "NETFLIX.COM", transactions[0].Reference)
	assert.Equal(t, "4111111111111111", transactions[0].AccountNumber)
	assert.Empty(t, transactions[0].ClearingNumber)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("-129")))

	assert.Equal(t, "SPOTIFY", transactions[1].Reference)
}

func TestExtractMerchantName(t *testing.T) {
	parser := testParser()

	tests := []struct {
		name     string
		input    string
		memo     string
		payee    string
		expected string
	}{
		{
			name:     "remove card purchase prefix and date",
			input:    "KORTKÖP 240115 ICA NÄRA",
			expected: "ICA NÄRA",
		},
		{
			name:     "remove POS prefix",
			input:    "POS PURCHASE WILLYS",
			expected: "WILLYS",
		},
		{
			name:     "keep clean name",
			input:    "NETFLIX.COM",
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			input:    "  TELE2  ",
			expected: "TELE2",
		},
		{
			name:     "generic name uses memo",
			input:    "BETALNING",
			memo:     "Vattenfall AB",
			expected: "Vattenfall AB",
		},
		{
			name:     "payee wins",
			input:    "KORTKÖP",
			payee:    "Systembolaget",
			expected: "Systembolaget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
				Memo: ofxgo.String(tt.memo),
			}
			if tt.payee != "" {
				tx.Payee = &ofxgo.Payee{Name: ofxgo.String(tt.payee)}
			}
			assert.Equal(t, tt.expected, parser.extractMerchantName(tx))
		})
	}
}

func TestAccounts(t *testing.T) {
	parser := testParser()

	accounts, err := parser.Accounts(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = parser.Accounts(strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
