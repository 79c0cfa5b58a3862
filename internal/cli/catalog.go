package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"caixa/internal/api"
	"caixa/internal/listing"
)

func (r *Runner) cmdProducts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("products list|add|price|import")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return r.productsList(ctx, rest)
	case "add":
		return r.productsAdd(ctx, rest)
	case "price":
		if len(rest) != 2 {
			return usagef("products price ID VALOR")
		}
		price, err := r.format.Parse(rest[1])
		if err != nil {
			return usagef("preço inválido: %q", rest[1])
		}
		p, err := r.products.Update(ctx, rest[0], api.ProductPatch{Price: &price})
		if err != nil {
			return err
		}
		r.printf("%s agora custa %s.\n", r.name(p.Name), r.money(p.Price))
		return nil
	case "import":
		if len(rest) != 1 {
			return usagef("products import ARQUIVO.csv")
		}
		return r.productsImport(ctx, rest[0])
	}
	return usagef("subcomando desconhecido: products %s", sub)
}

// listFlags binds the shared list flags. Unset flags keep the saved
// filter unless -reset is given.
func (r *Runner) listFlags(name string, saved api.ListQuery, withCategory bool) (*api.ListQuery, func([]string) error) {
	fs := r.subFlags(name)
	var q api.ListQuery
	fs.StringVar(&q.Search, "search", "", "Busca por nome ou código")
	if withCategory {
		fs.StringVar(&q.Category, "category", "", "Categoria")
	}
	fs.StringVar(&q.SortBy, "sort", "", "Ordenar por (name, price)")
	fs.StringVar(&q.Order, "order", "", "asc ou desc")
	fs.IntVar(&q.Page, "page", 0, "Página")
	fs.IntVar(&q.Limit, "limit", 0, "Itens por página")
	reset := fs.Bool("reset", false, "Ignorar o filtro salvo")
	return &q, func(args []string) error {
		if err := fs.Parse(args); err != nil {
			return usagef("%v", err)
		}
		if *reset {
			return nil
		}
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["search"] {
			q.Search = saved.Search
		}
		if withCategory && !set["category"] {
			q.Category = saved.Category
		}
		if !set["sort"] {
			q.SortBy = saved.SortBy
		}
		if !set["order"] {
			q.Order = saved.Order
		}
		if !set["page"] && !set["search"] && !set["category"] {
			q.Page = saved.Page
		}
		if !set["limit"] {
			q.Limit = saved.Limit
		}
		return nil
	}
}

func (r *Runner) productsList(ctx context.Context, args []string) error {
	q, parse := r.listFlags("products list", r.products.SavedFilter(ctx), true)
	if err := parse(args); err != nil {
		return err
	}
	snap := r.products.Load(ctx, *q)
	if err := snapshotErr(snap); err != nil {
		return err
	}
	if ok, err := r.emit(snap.Items); ok {
		return err
	}
	if snap.State == listing.StateEmpty {
		r.println("Nenhum produto encontrado.")
		return nil
	}
	tw := r.table("ID", "PRODUTO", "CÓDIGO", "CATEGORIA", "PREÇO", "ESTOQUE")
	for _, p := range snap.Items {
		stock := r.format.FormatQuantity(p.Stock)
		if p.MinStock.IsPositive() && p.Stock.LessThanOrEqual(p.MinStock) {
			stock += " (baixo)"
		}
		row(tw, p.ID, r.name(p.Name), p.Barcode, p.Category, r.money(p.Price), stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r.printf("Página %d de %d (%d produtos)\n", snap.Page, snap.TotalPages, snap.Total)
	return nil
}

func (r *Runner) productsAdd(ctx context.Context, args []string) error {
	fs := r.subFlags("products add")
	var in api.ProductInput
	fs.StringVar(&in.Name, "name", "", "Nome")
	fs.StringVar(&in.Barcode, "barcode", "", "Código de barras")
	fs.StringVar(&in.Category, "category", "", "Categoria")
	fs.StringVar(&in.Unit, "unit", "un", "Unidade (un, kg, l, m, cx)")
	fs.StringVar(&in.SupplierID, "supplier", "", "ID do fornecedor")
	price := fs.String("price", "", "Preço de venda")
	cost := fs.String("cost", "0", "Preço de custo")
	stock := fs.String("stock", "0", "Estoque inicial")
	minStock := fs.String("min-stock", "0", "Estoque mínimo")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	var err error
	if in.Price, err = r.format.Parse(*price); err != nil {
		return usagef("preço inválido: %q", *price)
	}
	if in.CostPrice, err = r.format.Parse(*cost); err != nil {
		return usagef("custo inválido: %q", *cost)
	}
	if in.Stock, err = r.format.ParseQuantity(*stock); err != nil {
		return usagef("estoque inválido: %q", *stock)
	}
	if in.MinStock, err = r.format.ParseQuantity(*minStock); err != nil {
		return usagef("estoque mínimo inválido: %q", *minStock)
	}

	p, err := r.products.Create(ctx, in)
	if err != nil {
		return err
	}
	r.printf("Produto criado: %s (%s) por %s.\n", r.name(p.Name), p.ID, r.money(p.Price))
	return nil
}

func (r *Runner) productsImport(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return usagef("não foi possível abrir %s", path)
	}
	defer f.Close()

	res, err := r.products.Import(ctx, path, f)
	if err != nil {
		return err
	}
	r.printf("Importação concluída: %d criados, %d atualizados.\n", res.Created, res.Updated)
	for _, e := range res.Errors {
		r.printf("  - %s\n", e)
	}
	return nil
}

func (r *Runner) cmdSuppliers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("suppliers list|add|edit|delete")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		q, parse := r.listFlags("suppliers list", r.suppliers.SavedFilter(ctx), false)
		if err := parse(rest); err != nil {
			return err
		}
		snap := r.suppliers.Load(ctx, *q)
		if err := snapshotErr(snap); err != nil {
			return err
		}
		if ok, err := r.emit(snap.Items); ok {
			return err
		}
		if snap.State == listing.StateEmpty {
			r.println("Nenhum fornecedor encontrado.")
			return nil
		}
		tw := r.table("ID", "NOME", "DOCUMENTO", "CONTATO", "TELEFONE", "E-MAIL")
		for _, s := range snap.Items {
			row(tw, s.ID, r.name(s.Name), s.Document, s.Contact, s.Phone, s.Email)
		}
		return tw.Flush()
	case "add":
		return r.suppliersSave(ctx, "", rest)
	case "edit":
		if len(rest) == 0 {
			return usagef("suppliers edit ID [flags]")
		}
		return r.suppliersSave(ctx, rest[0], rest[1:])
	case "delete":
		if len(rest) != 1 {
			return usagef("suppliers delete ID")
		}
		if err := r.suppliers.Delete(ctx, rest[0]); err != nil {
			return err
		}
		r.println("Fornecedor excluído.")
		return nil
	}
	return usagef("subcomando desconhecido: suppliers %s", sub)
}

func (r *Runner) suppliersSave(ctx context.Context, id string, args []string) error {
	fs := r.subFlags("suppliers add")
	var in api.SupplierInput
	fs.StringVar(&in.Name, "name", "", "Razão social ou nome")
	fs.StringVar(&in.Document, "document", "", "CPF ou CNPJ")
	fs.StringVar(&in.Email, "email", "", "E-mail")
	fs.StringVar(&in.Phone, "phone", "", "Telefone")
	fs.StringVar(&in.Contact, "contact", "", "Pessoa de contato")
	fs.StringVar(&in.Address, "address", "", "Endereço")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	var (
		s   api.Supplier
		err error
	)
	if id == "" {
		s, err = r.suppliers.Create(ctx, in)
	} else {
		s, err = r.suppliers.Update(ctx, id, in)
	}
	if err != nil {
		return err
	}
	r.printf("Fornecedor salvo: %s (%s).\n", r.name(s.Name), s.ID)
	return nil
}

func snapshotErr[T any](snap listing.Snapshot[T]) error {
	if snap.State == listing.StateError {
		return fmt.Errorf("list: %w", snap.Err)
	}
	return nil
}
