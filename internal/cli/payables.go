package cli

import (
	"context"
	"fmt"
	"strings"

	"caixa/internal/api"
	"caixa/internal/payables"
)

func (r *Runner) cmdPayables(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("payables list|add|edit|pay|plan|delete|stats")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return r.payablesList(ctx, rest)
	case "add":
		return r.payablesSave(ctx, "", rest)
	case "edit":
		if len(rest) == 0 {
			return usagef("payables edit ID [flags]")
		}
		return r.payablesSave(ctx, rest[0], rest[1:])
	case "pay":
		if len(rest) != 1 {
			return usagef("payables pay ID")
		}
		p, err := r.payables.MarkAsPaid(ctx, rest[0])
		if err != nil {
			return err
		}
		r.printf("Pago: %s (%s).\n", p.Description, r.money(p.TotalValue))
		return nil
	case "plan":
		if len(rest) != 1 {
			return usagef("payables plan ID")
		}
		return r.payablesPlan(ctx, rest[0])
	case "delete":
		if len(rest) != 1 {
			return usagef("payables delete ID")
		}
		if err := r.payables.Delete(ctx, rest[0]); err != nil {
			return err
		}
		r.println("Conta excluída.")
		return nil
	case "stats":
		return r.payablesStats(ctx, rest)
	}
	return usagef("subcomando desconhecido: payables %s", sub)
}

func (r *Runner) payablesList(ctx context.Context, args []string) error {
	fs := r.subFlags("payables list")
	month := fs.String("month", "", "Mês (AAAA-MM)")
	status := fs.String("status", "pending", "pending, paid ou all")
	kind := fs.String("type", "", "supplier, rent ou other")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	q := api.PayableQuery{Type: api.PayableType(*kind)}
	if *month != "" {
		m, err := parseMonth(*month)
		if err != nil {
			return err
		}
		q.Month = m
	}
	switch *status {
	case "pending", "paid":
		q.Status = *status
	case "all":
	default:
		return usagef("status inválido: %s", *status)
	}

	overview, err := r.payables.Overview(ctx, q)
	if err != nil {
		return err
	}
	if ok, err := r.emit(overview); ok {
		return err
	}
	if len(overview.Singles) == 0 && len(overview.Plans) == 0 {
		r.println("Nenhuma conta.")
		return nil
	}
	if len(overview.Singles) > 0 {
		tw := r.table("ID", "DESCRIÇÃO", "TIPO", "VENCIMENTO", "VALOR", "PAGA")
		for _, p := range overview.Singles {
			row(tw, p.ID, p.Description, typeLabel(p.Type), dueLabel(p), r.money(p.TotalValue), yesNo(p.IsPaid))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(overview.Plans) > 0 {
		r.println("\nParcelamentos:")
		tw := r.table("PLANO", "DESCRIÇÃO", "PRÓXIMA", "VENCIMENTO", "RESTANTES", "EM ABERTO")
		for _, plan := range overview.Plans {
			next, _ := plan.Next()
			row(tw, plan.ID, plan.Description(),
				fmt.Sprintf("%d/%d", next.InstallmentNumber, next.TotalInstallments),
				formatDay(next.DueDate), fmt.Sprint(plan.Remaining()), r.money(plan.Outstanding()))
		}
		return tw.Flush()
	}
	return nil
}

func (r *Runner) payablesSave(ctx context.Context, id string, args []string) error {
	fs := r.subFlags("payables add")
	kind := fs.String("type", "other", "supplier, rent ou other")
	desc := fs.String("desc", "", "Descrição")
	value := fs.String("value", "", "Valor total, ex.: 1.500,00")
	supplier := fs.String("supplier", "", "ID do fornecedor (tipo supplier)")
	due := fs.String("due", "", "Vencimento único (AAAA-MM-DD)")
	day := fs.Int("day", 0, "Dia do vencimento mensal (conta recorrente)")
	installments := fs.Int("installments", 0, "Número de parcelas (com -due como primeiro vencimento)")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	amount, err := r.format.Parse(*value)
	if err != nil {
		return usagef("valor inválido em -value: %q", *value)
	}
	d := payables.Draft{
		Type:        api.PayableType(strings.ToLower(*kind)),
		Description: *desc,
		Value:       amount,
		SupplierID:  *supplier,
	}
	switch {
	case *installments > 0:
		d.Mode = payables.Installment{Count: *installments, FirstDueDate: *due}
	case *day > 0:
		d.Mode = payables.Recurring{DueDay: *day}
	default:
		d.Mode = payables.Eventual{DueDate: *due}
	}

	if id != "" {
		p, err := r.payables.Update(ctx, id, d)
		if err != nil {
			return err
		}
		r.printf("Conta atualizada: %s.\n", p.Description)
		return nil
	}
	created, err := r.payables.Create(ctx, d)
	if err != nil {
		return err
	}
	if ok, err := r.emit(created); ok {
		return err
	}
	if len(created) > 1 {
		r.printf("Parcelamento criado: %d parcelas de %s (plano %s).\n", len(created), r.money(created[0].TotalValue), payables.PlanID(created[0]))
		return nil
	}
	if len(created) == 1 {
		r.printf("Conta criada: %s (%s).\n", created[0].Description, created[0].ID)
	}
	return nil
}

func (r *Runner) payablesPlan(ctx context.Context, id string) error {
	plan, err := r.payables.PlanDetail(ctx, id)
	if err != nil {
		return err
	}
	if ok, err := r.emit(plan); ok {
		return err
	}
	r.printf("%s: %d parcelas restantes, %s em aberto\n", plan.Description(), plan.Remaining(), r.money(plan.Outstanding()))
	tw := r.table("ID", "PARCELA", "VENCIMENTO", "VALOR", "PAGA")
	for _, inst := range plan.Installments {
		row(tw, inst.ID, fmt.Sprintf("%d/%d", inst.InstallmentNumber, inst.TotalInstallments), formatDay(inst.DueDate), r.money(inst.TotalValue), yesNo(inst.IsPaid))
	}
	return tw.Flush()
}

func (r *Runner) payablesStats(ctx context.Context, args []string) error {
	fs := r.subFlags("payables stats")
	month := fs.String("month", "", "Mês (AAAA-MM, padrão: atual)")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	m, err := parseMonth(*month)
	if err != nil {
		return err
	}
	stats, err := r.payables.MonthlyStats(ctx, m)
	if err != nil {
		return err
	}
	if ok, err := r.emit(stats); ok {
		return err
	}
	r.printStats(stats)
	return nil
}

func (r *Runner) printStats(stats api.MonthlyStats) {
	r.printf("Contas de %s: %d no mês, %d vencidas\n", stats.Month, stats.DueCount, stats.OverdueCount)
	r.printf("  Total:     %s\n", r.money(stats.TotalDue))
	r.printf("  Pago:      %s\n", r.money(stats.TotalPaid))
	r.printf("  Em aberto: %s\n", r.money(stats.TotalPending))
}

func typeLabel(t api.PayableType) string {
	switch t {
	case api.PayableSupplier:
		return "fornecedor"
	case api.PayableRent:
		return "aluguel"
	}
	return "outros"
}

func dueLabel(p api.AccountPayable) string {
	if p.IsRecurring {
		return fmt.Sprintf("todo dia %d", p.DueDay)
	}
	return formatDay(p.DueDate)
}
