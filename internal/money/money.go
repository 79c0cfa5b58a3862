// Package money converts between localized display strings and decimal
// amounts. Currency never goes through float64.
package money

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	CurrencyPlaces = 2
	QuantityPlaces = 3
)

var (
	ErrEmpty     = errors.New("empty amount")
	ErrMalformed = errors.New("malformed amount")
)

var hundred = decimal.NewFromInt(100)

// Format holds the separators and symbol used to render and read amounts.
type Format struct {
	Decimal string
	Group   string
	Symbol  string
}

// BRL is the default display format: "R$ 1.234,56".
var BRL = Format{Decimal: ",", Group: ".", Symbol: "R$"}

var symbols = map[string]string{
	"BRL": "R$",
	"USD": "$",
	"EUR": "€",
	"ARS": "$",
	"GBP": "£",
}

// ForLocale resolves a BCP 47 tag such as "pt-BR" or "en-US" into a Format.
// Unknown or malformed tags fall back to BRL.
func ForLocale(tag string) Format {
	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return BRL
	}

	f := BRL
	base, _ := t.Base()
	switch base.String() {
	case "en", "zh", "ja", "ko", "he", "th":
		f.Decimal, f.Group = ".", ","
	}

	if unit, conf := currency.FromTag(t); conf != language.No {
		if sym, ok := symbols[unit.String()]; ok {
			f.Symbol = sym
		} else {
			f.Symbol = unit.String()
		}
	}
	return f
}

func digitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (f Format) group(intPart string) string {
	if len(intPart) <= 3 || f.Group == "" {
		return intPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(f.Group)
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String()
}

// Mask turns whatever was typed into a "cents first" currency string:
// "5" -> "0,05", "500" -> "5,00", "123456" -> "1.234,56". Non-digits are
// ignored, so re-masking an already masked value plus one keystroke works.
func (f Format) Mask(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	digits = strings.TrimLeft(digits, "0")
	for len(digits) < 3 {
		digits = "0" + digits
	}
	cut := len(digits) - CurrencyPlaces
	return f.group(digits[:cut]) + f.Decimal + digits[cut:]
}

// MaskDecimal renders an amount the way Mask would after typing its cents.
// A negative amount keeps its sign: "-20,00".
func (f Format) MaskDecimal(d decimal.Decimal) string {
	d = d.Round(CurrencyPlaces)
	out := f.Mask(d.Abs().Mul(hundred).StringFixed(0))
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

func (f Format) normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if f.Symbol != "" {
		s = strings.TrimPrefix(s, f.Symbol)
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if f.Group != "" {
		if !f.groupedWell(s) {
			return "", ErrMalformed
		}
		s = strings.ReplaceAll(s, f.Group, "")
	}
	if f.Decimal != "." {
		s = strings.ReplaceAll(s, f.Decimal, ".")
	}
	return s, nil
}

// groupedWell reports whether every group separator in the integer part is
// followed by exactly three digits, so "12.50" in BRL is not read as 1250.
func (f Format) groupedWell(s string) bool {
	intPart, _, _ := strings.Cut(s, f.Decimal)
	groups := strings.Split(intPart, f.Group)
	if len(groups) == 1 {
		return true
	}
	if strings.TrimPrefix(groups[0], "-") == "" {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// Parse reads a localized amount strictly, rounding to cents.
func (f Format) Parse(s string) (decimal.Decimal, error) {
	return f.parse(s, CurrencyPlaces)
}

func (f Format) parse(s string, places int32) (decimal.Decimal, error) {
	norm, err := f.normalize(s)
	if err != nil {
		return decimal.Zero, err
	}
	if norm == "" {
		return decimal.Zero, ErrEmpty
	}
	hasDigit := false
	for i, r := range norm {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '.', i == 0 && r == '-':
		default:
			return decimal.Zero, ErrMalformed
		}
	}
	if !hasDigit {
		return decimal.Zero, ErrMalformed
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, ErrMalformed
	}
	return d.Round(places), nil
}

// ParseMasked reads a value produced by Mask. It never fails: anything
// unreadable is zero.
func (f Format) ParseMasked(s string) decimal.Decimal {
	d, err := f.Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders d with two decimals and grouped thousands, no symbol.
func (f Format) Format(d decimal.Decimal) string {
	d = d.Round(CurrencyPlaces)
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(CurrencyPlaces)
	intPart, frac, _ := strings.Cut(fixed, ".")
	out := f.group(intPart) + f.Decimal + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatCurrency renders d with the currency symbol, e.g. "R$ 1.234,56".
func (f Format) FormatCurrency(d decimal.Decimal) string {
	out := f.Format(d)
	if f.Symbol == "" {
		return out
	}
	if strings.HasPrefix(out, "-") {
		return "-" + f.Symbol + " " + out[1:]
	}
	return f.Symbol + " " + out
}

// ParseQuantity reads a stock or cart quantity with up to three decimals
// (weighed items).
func (f Format) ParseQuantity(s string) (decimal.Decimal, error) {
	return f.parse(s, QuantityPlaces)
}

// FormatQuantity renders a quantity without trailing zeros: "1,5", "2".
func (f Format) FormatQuantity(d decimal.Decimal) string {
	s := d.Round(QuantityPlaces).String()
	if f.Decimal != "." {
		s = strings.Replace(s, ".", f.Decimal, 1)
	}
	return s
}

func Mask(raw string) string { return BRL.Mask(raw) }
func MaskDecimal(d decimal.Decimal) string { return BRL.MaskDecimal(d) }
func Parse(s string) (decimal.Decimal, error) { return BRL.Parse(s) }
func ParseMasked(s string) decimal.Decimal { return BRL.ParseMasked(s) }
func FormatCurrency(d decimal.Decimal) string { return BRL.FormatCurrency(d) }
func ParseQuantity(s string) (decimal.Decimal, error) { return BRL.ParseQuantity(s) }
