package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var million = decimal.NewFromInt(1_000_000)

// FormatTokens renders a token count in millions with two decimals, e.g. "1.50M"
func FormatTokens(n uint64) string {
	return decimal.NewFromUint64(n).Div(million).StringFixed(2) + "M"
}

// FormatPercent renders a 0-100 value with the given number of decimals
func FormatPercent(value float64, decimals int32) string {
	return decimal.NewFromFloat(value).StringFixed(decimals) + "%"
}

// FormatDate renders an RFC 3339 timestamp as local "2006-01-02 15:04".
// Unparseable input is returned as is.
func FormatDate(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return t.Local().Format("2006-01-02 15:04")
}
