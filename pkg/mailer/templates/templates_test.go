package templates

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-portfolio-tracker/config"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), "usd"))
	assert.Equal(t, "$0.01", FormatMoney(decimal.RequireFromString("0.005"), "USD"))
	assert.Equal(t, "12.30 XYZ1", FormatMoney(decimal.RequireFromString("12.3"), "XYZ1"))
}

func TestRenderTransactionReceipt(t *testing.T) {
	cfg := &config.Config{AppName: "Tracker", CompanyName: "ACME", PriceQuoteCurrency: "USD"}
	data := NewTransactionReceiptData(cfg, "a@example.com", ReceiptLine{
		ID:       "tx-1",
		Symbol:   "BTC",
		Quantity: decimal.RequireFromString("-2"),
		Price:    decimal.RequireFromString("100"),
	}, WithTime(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	subject, text, html, err := Render(TransactionReceipt, data)
	require.NoError(t, err)

	assert.Equal(t, "SELL 2 BTC recorded", subject)
	assert.Contains(t, text, "Total:    $200.00")
	assert.Contains(t, text, "01 May 2024, 10:00")
	assert.Contains(t, html, "<strong>$200.00</strong>")
}

func TestRenderWelcomeAndUnknown(t *testing.T) {
	cfg := &config.Config{AppName: "Tracker"}
	subject, _, html, err := Render(Welcome, NewWelcomeData(cfg, "a@example.com", WithTime(time.Now())))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Tracker", subject)
	assert.Contains(t, html, "a@example.com")

	_, _, _, err = Render("login_otp", nil)
	assert.Error(t, err)
}
