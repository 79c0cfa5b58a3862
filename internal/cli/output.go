package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// emit prints v as JSON when -json is set and reports whether it did.
func (r *Runner) emit(v any) (bool, error) {
	if !r.options.JSON {
		return false, nil
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func (r *Runner) table(header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func (r *Runner) money(d decimal.Decimal) string {
	return r.format.FormatCurrency(d)
}

func (r *Runner) name(s string) string {
	return r.title.String(strings.TrimSpace(s))
}

func formatDay(s string) string {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format("02/01/2006")
	}
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, usagef("data inválida %q, use AAAA-MM-DD", s)
	}
	return t, nil
}

func parseMonth(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return time.Time{}, usagef("mês inválido %q, use AAAA-MM", s)
	}
	return t, nil
}

// amountArg turns a typed amount ("200", "200,00", "1.234,56") into the
// masked form the register forms expect.
func (r *Runner) amountArg(flagName, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	d, err := r.format.Parse(raw)
	if err != nil {
		return "", usagef("valor inválido em -%s: %q", flagName, raw)
	}
	if d.IsNegative() {
		return "", usagef("valor negativo em -%s: %q", flagName, raw)
	}
	return r.format.MaskDecimal(d), nil
}
