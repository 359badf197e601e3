// Package money formats amounts for display.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts as whole units of one currency, grouped the way
// the configured locale groups digits.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter returns a Formatter for the currency symbol and locale.
func NewFormatter(symbol string, tag language.Tag) *Formatter {
	return &Formatter{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

// NewFormatterFromLocale is NewFormatter with a BCP 47 locale string.
func NewFormatterFromLocale(symbol, locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return NewFormatter(symbol, tag), nil
}

// Rupiah formats Indonesian Rupiah, e.g. "Rp 150.000".
func Rupiah() *Formatter {
	return NewFormatter("Rp", language.Indonesian)
}

// Format rounds the amount to a whole unit and renders it with the symbol.
// No fractional digits are ever shown.
func (f *Formatter) Format(amount decimal.Decimal) string {
	n := amount.Round(0).IntPart()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + f.symbol + " " + f.printer.Sprintf("%v", n)
}
