package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts for one locale and currency, e.g.
// "1 298,54 €" for fr-FR/EUR.
type Formatter struct {
	printer      *message.Printer
	symbol       string
	symbolPrefix bool
}

// NewFormatter builds a Formatter from a BCP 47 locale and an ISO 4217 code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}

	p := message.NewPrinter(tag)
	base, _ := tag.Base()
	english, _ := language.English.Base()
	return &Formatter{
		printer:      p,
		symbol:       p.Sprint(currency.NarrowSymbol(unit)),
		symbolPrefix: base == english,
	}, nil
}

// Number formats d with two fractional digits and locale grouping.
func (f *Formatter) Number(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// Amount formats d as a currency amount.
func (f *Formatter) Amount(d decimal.Decimal) string {
	n := f.Number(d)
	if f.symbolPrefix {
		if d.IsNegative() {
			return "-" + f.symbol + f.Number(d.Neg())
		}
		return f.symbol + n
	}
	return n + " " + f.symbol
}
