package export

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders v as a rupee amount with the locale's digit grouping.
func FormatINR(v float64) string {
	return inrPrinter.Sprint(currency.Symbol(currency.INR.Amount(v)))
}
