package i18n

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/shared"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencySymbols = map[string]string{
	"CZK": "Kč",
	"EUR": "€",
}

var englishMonths = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatNumber prints a decimal with two places and locale grouping
func FormatNumber(amount decimal.Decimal, locale shared.Locale) string {
	p := message.NewPrinter(Tag(locale))
	return p.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
}

// FormatMoney prints an amount with its currency symbol placed the way the locale expects
func FormatMoney(amount decimal.Decimal, currency string, locale shared.Locale) string {
	currency = strings.ToUpper(currency)
	num := FormatNumber(amount, locale)
	sym, ok := currencySymbols[currency]
	if !ok {
		return num + " " + currency
	}
	if locale == shared.LocaleEN {
		if currency == "EUR" {
			return sym + num
		}
		return num + " " + sym
	}
	return num + " " + sym
}

// FormatDate prints a calendar date: cs "2. 1. 2026", de "02.01.2026", en "January 2, 2026"
func FormatDate(t time.Time, locale shared.Locale) string {
	switch locale {
	case shared.LocaleDE:
		return t.Format("02.01.2006")
	case shared.LocaleEN:
		return fmt.Sprintf("%s %d, %d", englishMonths[t.Month()-1], t.Day(), t.Year())
	default:
		return fmt.Sprintf("%d. %d. %d", t.Day(), int(t.Month()), t.Year())
	}
}
