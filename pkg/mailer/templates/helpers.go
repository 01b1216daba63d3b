package templates

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// FormatMoney renders amount in the given ISO currency, e.g. "$1,234.50".
// Unknown currency codes fall back to "<amount> <code>".
func FormatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

// NewBaseEmailData fills common fields from config and applies options.
func NewBaseEmailData(cfg *config.Config, typ string, email string, opts ...Option) EmailData {
	d := EmailData{
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, email, opts...))
}

// ReceiptLine is the transaction part of a receipt email.
type ReceiptLine struct {
	ID       string
	Symbol   string
	Quantity decimal.Decimal // signed delta
	Price    decimal.Decimal
}

func NewTransactionReceiptData(cfg *config.Config, email string, line ReceiptLine, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, TransactionReceipt, email, opts...)
	d.TransactionID = line.ID
	d.Symbol = line.Symbol
	d.Side = "buy"
	if line.Quantity.IsNegative() {
		d.Side = "sell"
	}
	d.Quantity = line.Quantity.Abs().String()
	d.Currency = cfg.PriceQuoteCurrency
	d.Price = FormatMoney(line.Price, cfg.PriceQuoteCurrency)
	d.Amount = FormatMoney(line.Quantity.Abs().Mul(line.Price), cfg.PriceQuoteCurrency)
	return ToMap(d)
}
