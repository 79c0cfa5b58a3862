package money

import (
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"5":         "0,05",
		"50":        "0,50",
		"500":       "5,00",
		"0005":      "0,05",
		"000":       "0,00",
		"123456":    "1.234,56",
		"100000000": "1.000.000,00",
		"R$ 12,3a4": "12,34",
		"0,050":     "0,50",
	}
	for in, want := range cases {
		assert.Equal(t, want, Mask(in), "Mask(%q)", in)
	}
}

func TestMask_SeparatorPosition(t *testing.T) {
	for n := 1; n < 2000; n += 7 {
		digits := strconv.Itoa(n)
		for _, in := range []string{digits, "00" + digits} {
			out := Mask(in)
			require.Equal(t, 1, strings.Count(out, ","), "Mask(%q)=%q", in, out)
			idx := strings.Index(out, ",")
			assert.Len(t, out[idx+1:], 2, "Mask(%q)=%q", in, out)
		}
	}
}

func TestMask_RoundTrip(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1234.56").Equal(ParseMasked(Mask("123456"))))
	assert.True(t, decimal.RequireFromString("0.05").Equal(ParseMasked(Mask("5"))))
}

func TestMaskDecimal(t *testing.T) {
	assert.Equal(t, "100,00", MaskDecimal(decimal.NewFromInt(100)))
	assert.Equal(t, "0,00", MaskDecimal(decimal.Zero))
	assert.Equal(t, "1.500,50", MaskDecimal(decimal.RequireFromString("1500.5")))
	assert.Equal(t, "-20,00", MaskDecimal(decimal.NewFromInt(-20)))
	assert.True(t, decimal.NewFromInt(-20).Equal(ParseMasked(MaskDecimal(decimal.NewFromInt(-20)))))
}

func TestParse_GroupSeparator(t *testing.T) {
	for _, in := range []string{"12.50", "1.5", ".500", "1.2345", "1.234.5,00"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrMalformed, "Parse(%q)", in)
	}

	d, err := Parse("1.234.567")
	require.NoError(t, err)
	assert.Equal(t, "1234567.00", d.StringFixed(2))

	d, err = ForLocale("en-US").Parse("1,234.50")
	require.NoError(t, err)
	assert.Equal(t, "1234.50", d.StringFixed(2))

	_, err = ForLocale("en-US").Parse("12,50")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse(t *testing.T) {
	d, err := Parse("R$ 1.234,56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.StringFixed(2))

	d, err = Parse("-10,5")
	require.NoError(t, err)
	assert.Equal(t, "-10.50", d.StringFixed(2))

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("12abc")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse("-")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseMasked_NeverFails(t *testing.T) {
	for _, in := range []string{"", "abc", "--", ",", "R$"} {
		assert.True(t, ParseMasked(in).IsZero(), "ParseMasked(%q)", in)
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatCurrency(decimal.RequireFromString("1234.555")))
	assert.Equal(t, "R$ 0,00", FormatCurrency(decimal.Zero))
	assert.Equal(t, "-R$ 50,00", FormatCurrency(decimal.NewFromInt(-50)))
}

func TestQuantity(t *testing.T) {
	q, err := ParseQuantity("1,5")
	require.NoError(t, err)
	assert.Equal(t, "1,5", BRL.FormatQuantity(q))

	q, err = ParseQuantity("0,1234")
	require.NoError(t, err)
	assert.Equal(t, "0,123", BRL.FormatQuantity(q))
}

func TestForLocale(t *testing.T) {
	us := ForLocale("en-US")
	assert.Equal(t, ".", us.Decimal)
	assert.Equal(t, ",", us.Group)
	assert.Equal(t, "$", us.Symbol)
	assert.Equal(t, "1,234.56", us.Mask("123456"))

	assert.Equal(t, BRL, ForLocale("pt-BR"))
	assert.Equal(t, BRL, ForLocale("not a tag!"))
}
