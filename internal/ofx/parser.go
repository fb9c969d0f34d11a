// Package ofx reads OFX/QFX bank statements into transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/budgetflow/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser. A nil logger uses slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// account identifies the statement a transaction belongs to.
type account struct {
	clearing string
	number   string
	currency string
}

// Parse reads an OFX/QFX statement and returns its transactions sorted by
// booking date.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		acct := account{
			clearing: string(stmt.BankAcctFrom.BankID),
			number:   string(stmt.BankAcctFrom.AcctID),
			currency: fmt.Sprint(stmt.CurDef),
		}
		transactions = p.appendStatement(transactions, stmt.BankTranList.Transactions, acct)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		acct := account{
			number:   string(stmt.CCAcctFrom.AcctID),
			currency: fmt.Sprint(stmt.CurDef),
		}
		transactions = p.appendStatement(transactions, stmt.BankTranList.Transactions, acct)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].BookingDate.Before(transactions[j].BookingDate)
	})

	p.logger.Info("Parsed OFX file",
		"transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) appendStatement(out []model.Transaction, txns []ofxgo.Transaction, acct account) []model.Transaction {
	for _, ofxTx := range txns {
		tx, err := p.convertTransaction(ofxTx, acct, len(out)+1)
		if err != nil {
			p.logger.Warn("Skipping OFX transaction",
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		out = append(out, tx)
	}
	return out
}

// convertTransaction maps one OFX transaction onto the bank-export model.
// The payee (or name) plays the role of the reference; the memo is the
// description.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, acct account, rowNumber int) (model.Transaction, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	posted := calendarDate(ofxTx.DtPosted.Time)
	tx := model.Transaction{
		RowNumber:       rowNumber,
		ClearingNumber:  acct.clearing,
		AccountNumber:   acct.number,
		Currency:        acct.currency,
		Product:         fmt.Sprint(ofxTx.TrnType),
		BookingDate:     posted,
		TransactionDate: posted,
		CurrencyDate:    posted,
		Reference:       p.extractMerchantName(ofxTx),
		Description:     strings.TrimSpace(string(ofxTx.Memo)),
		Amount:          amount,
	}
	if ofxTx.DtUser != nil {
		tx.TransactionDate = calendarDate(ofxTx.DtUser.Time)
	}
	if ofxTx.DtAvail != nil {
		tx.CurrencyDate = calendarDate(ofxTx.DtAvail.Time)
	}
	if tx.Description == "" {
		tx.Description = strings.TrimSpace(string(ofxTx.Name))
	}

	return tx, nil
}

// calendarDate drops the time of day, keeping the date as posted.
func calendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// cardPrefixes are stripped from the front of card purchase names.
var cardPrefixes = []string{
	"KORTKÖP ",
	"KORTKOP ",
	"POS PURCHASE ",
	"DEBIT CARD PURCHASE ",
	"CARD PURCHASE ",
	"VISA PURCHASE ",
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	// Card purchases often start with the purchase date, e.g. "240115 ICA"
	if len(name) > 7 && name[6] == ' ' && isDigits(name[:6]) {
		name = strings.TrimSpace(name[7:])
	}

	return name
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "DEBIT", "CREDIT", "KORTKÖP", "PURCHASE", "PAYMENT", "BETALNING", "ÖVERFÖRING":
		return true
	}
	return false
}

// Accounts extracts unique account IDs from the OFX file.
func (p *Parser) Accounts(reader io.Reader) ([]string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
