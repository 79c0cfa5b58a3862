package cli

import (
	"context"
	"fmt"
	"strings"

	"caixa/internal/api"
	"caixa/internal/cart"
	"caixa/internal/sales"

	"github.com/shopspring/decimal"
)

// cmdSale builds a cart from CODE[:QTY] arguments, where CODE is a product
// id or barcode, and submits it.
func (r *Runner) cmdSale(ctx context.Context, args []string) error {
	fs := r.subFlags("sale")
	method := fs.String("method", "", "Forma de pagamento: cash, credit, debit ou pix")
	nfe := fs.String("nfe", "", "Chave da NF-e (opcional)")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() == 0 {
		return cart.ErrEmpty
	}

	c := cart.New()
	for _, arg := range fs.Args() {
		code, qtyRaw, _ := strings.Cut(arg, ":")
		qty := decimal.NewFromInt(1)
		if qtyRaw != "" {
			var err error
			if qty, err = r.format.ParseQuantity(qtyRaw); err != nil {
				return usagef("quantidade inválida em %q", arg)
			}
		}
		product, err := r.findProduct(ctx, code)
		if err != nil {
			return err
		}
		if err := c.Add(product, qty); err != nil {
			return err
		}
	}
	if err := c.SetPaymentMethod(api.PaymentMethod(strings.ToLower(*method))); err != nil {
		return err
	}
	c.SetNFe(*nfe)

	sale, err := r.checkout.Submit(ctx, c)
	if err != nil {
		return err
	}
	if ok, err := r.emit(sale); ok {
		return err
	}
	tw := r.table("PRODUTO", "QTD", "UNITÁRIO", "TOTAL")
	for _, it := range sale.Items {
		row(tw, r.name(it.Name), r.format.FormatQuantity(it.Quantity), r.money(it.UnitPrice), r.money(it.Total))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r.printf("Venda registrada: %s em %s.\n", r.money(sale.Total), methodLabel(sale.PaymentMethod))
	return nil
}

func (r *Runner) findProduct(ctx context.Context, code string) (api.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return api.Product{}, usagef("código de produto vazio")
	}
	page, err := r.api.ListProducts(ctx, api.ListQuery{Search: code, Limit: 50})
	if err != nil {
		return api.Product{}, fmt.Errorf("find product %s: %w", code, err)
	}
	for _, p := range page.Data {
		if p.ID == code || p.Barcode == code {
			return p, nil
		}
	}
	if len(page.Data) == 1 {
		return page.Data[0], nil
	}
	if len(page.Data) == 0 {
		return api.Product{}, usagef("produto %q não encontrado", code)
	}
	return api.Product{}, usagef("%q corresponde a %d produtos; use o código de barras", code, len(page.Data))
}

func (r *Runner) cmdSales(ctx context.Context, args []string) error {
	fs := r.subFlags("sales")
	date := fs.String("date", "", "Dia (AAAA-MM-DD, padrão: hoje)")
	refresh := fs.Bool("refresh", false, "Ignorar o cache das estatísticas")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	day, err := parseDay(*date)
	if err != nil {
		return err
	}

	list, err := sales.ListDay(ctx, r.api, day)
	if err != nil {
		return err
	}
	summary := sales.Summarize(list)
	if *date == "" {
		if err := r.printDailyStats(ctx, *refresh); err != nil {
			return err
		}
	}
	if ok, err := r.emit(list); ok {
		return err
	}
	if len(list) == 0 {
		r.println("Nenhuma venda.")
		return nil
	}
	tw := r.table("HORA", "FORMA", "ITENS", "TOTAL", "NF-E")
	for _, s := range list {
		nfe := s.NFe
		if nfe == "" {
			nfe = "-"
		}
		row(tw, s.CreatedAt.Local().Format("15:04"), methodLabel(s.PaymentMethod), fmt.Sprint(len(s.Items)), r.money(s.Total), nfe)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r.printf("%d vendas, total %s\n", summary.Count, r.money(summary.Total))
	return nil
}

func (r *Runner) printDailyStats(ctx context.Context, refresh bool) error {
	var (
		stats  api.DailySalesStats
		cached bool
		err    error
	)
	if refresh {
		stats, err = r.stats.Refresh(ctx)
	} else {
		stats, cached, err = r.stats.Daily(ctx)
	}
	if err != nil {
		return err
	}
	if r.options.JSON {
		return nil
	}
	note := ""
	if cached {
		note = " (cache)"
	}
	r.printf("Hoje%s: %d vendas, %s, ticket médio %s\n", note, stats.SalesCount, r.money(stats.TotalSales), r.money(stats.AverageTicket))
	for _, m := range api.PaymentMethods {
		if v := stats.ByMethod.Get(m); !v.IsZero() {
			r.printf("  %-9s %s\n", methodLabel(m), r.money(v))
		}
	}
	return nil
}
