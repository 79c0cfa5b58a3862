package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"caixa/internal/api"

	"github.com/shopspring/decimal"
)

type Lister interface {
	ListSales(ctx context.Context, q api.SalesQuery) ([]api.Sale, error)
}

// Summary totals a list of sales per payment method.
type Summary struct {
	Count    int
	Total    decimal.Decimal
	ByMethod api.Balances
}

func Summarize(sales []api.Sale) Summary {
	var s Summary
	for _, sale := range sales {
		s.Count++
		s.Total = s.Total.Add(sale.Total)
		s.ByMethod.Set(sale.PaymentMethod, s.ByMethod.Get(sale.PaymentMethod).Add(sale.Total))
	}
	return s
}

// ListDay returns the sales of one day, newest first.
func ListDay(ctx context.Context, l Lister, day time.Time) ([]api.Sale, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	sales, err := l.ListSales(ctx, api.SalesQuery{From: start, To: start})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}
