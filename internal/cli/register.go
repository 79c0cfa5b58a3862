package cli

import (
	"context"

	"caixa/internal/api"
	"caixa/internal/cashregister"
)

func (r *Runner) cmdRegister(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("register status|open|withdraw|close|history")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "status":
		return r.registerStatus(ctx)
	case "open":
		return r.registerOpen(ctx, rest)
	case "withdraw":
		return r.registerWithdraw(ctx, rest)
	case "close":
		return r.registerClose(ctx, rest)
	case "history":
		return r.registerHistory(ctx, rest)
	}
	return usagef("subcomando desconhecido: register %s", sub)
}

func (r *Runner) registerStatus(ctx context.Context) error {
	state, err := r.register.Refresh(ctx)
	if err != nil {
		return err
	}
	reg := r.register.Register()
	if ok, err := r.emit(api.CashRegisterStatus{IsOpen: state == cashregister.StateOpen, CashRegister: reg}); ok {
		return err
	}
	if state != cashregister.StateOpen || reg == nil {
		r.println("Caixa fechado.")
		return nil
	}
	r.printf("Caixa aberto desde %s\n", formatTime(reg.OpenedAt))
	r.printf("  Valor inicial: %s\n", r.money(reg.InitialAmount))
	r.printf("  Em dinheiro:   %s\n", r.money(reg.CurrentAmount))
	if reg.CashLimit.IsPositive() {
		r.printf("  Limite:        %s\n", r.money(reg.CashLimit))
	}
	if r.register.OverLimit() {
		r.println("  Atenção: dinheiro acima do limite. Considere uma sangria.")
	}
	if len(reg.Transactions) > 0 {
		tw := r.table("", "HORA", "TIPO", "FORMA", "VALOR", "MOTIVO")
		for _, tx := range reg.Transactions {
			row(tw, "", tx.CreatedAt.Local().Format("15:04"), transactionLabel(tx.Type), methodLabel(tx.PaymentMethod), r.money(tx.Amount), tx.Reason)
		}
		return tw.Flush()
	}
	return nil
}

func (r *Runner) registerOpen(ctx context.Context, args []string) error {
	fs := r.subFlags("register open")
	amount := fs.String("amount", "", "Valor inicial em dinheiro, ex.: 200,00")
	limit := fs.String("limit", "", "Limite de dinheiro no caixa, ex.: 500,00")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	for _, f := range []struct {
		value *string
		label string
	}{{amount, "Valor inicial: "}, {limit, "Limite do caixa: "}} {
		if *f.value != "" {
			continue
		}
		v, err := r.prompt(f.label)
		if err != nil {
			return err
		}
		*f.value = v
	}

	form := r.register.NewOpenForm()
	masked, err := r.amountArg("amount", *amount)
	if err != nil {
		return err
	}
	form.InitialAmount = masked
	if form.CashLimit, err = r.amountArg("limit", *limit); err != nil {
		return err
	}

	if _, err := r.register.Refresh(ctx); err != nil {
		return err
	}
	if err := r.register.Open(ctx, form); err != nil {
		return err
	}
	reg := r.register.Register()
	if reg == nil {
		r.println("Abertura enviada, mas o caixa consta como fechado.")
		return nil
	}
	r.printf("Caixa aberto com %s.\n", r.money(reg.InitialAmount))
	return nil
}

func (r *Runner) registerWithdraw(ctx context.Context, args []string) error {
	fs := r.subFlags("register withdraw")
	amount := fs.String("amount", "", "Valor da sangria")
	reason := fs.String("reason", "", "Motivo (até 15 caracteres)")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	if _, err := r.register.Refresh(ctx); err != nil {
		return err
	}
	form, err := r.register.NewWithdrawalForm()
	if err != nil {
		return err
	}
	masked, err := r.amountArg("amount", *amount)
	if err != nil {
		return err
	}
	form.Amount = masked
	form.SetReason(*reason)

	tx, err := r.register.Withdraw(ctx, form)
	if err != nil {
		return err
	}
	r.printf("Sangria de %s registrada (%s).\n", r.money(tx.Amount), tx.Reason)
	if reg := r.register.Register(); reg != nil {
		r.printf("Em dinheiro agora: %s\n", r.money(reg.CurrentAmount))
	} else {
		r.println("Caixa fechado.")
	}
	return nil
}

func (r *Runner) registerClose(ctx context.Context, args []string) error {
	fs := r.subFlags("register close")
	values := map[api.PaymentMethod]*string{}
	for _, m := range api.PaymentMethods {
		values[m] = fs.String(string(m), "", "Valor contado em "+methodLabel(m)+" (padrão: esperado)")
	}
	obs := fs.String("obs", "", "Observação")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	if _, err := r.register.Refresh(ctx); err != nil {
		return err
	}
	form, err := r.register.NewClosingForm(ctx)
	if err != nil {
		return err
	}
	for _, m := range api.PaymentMethods {
		if *values[m] == "" {
			continue
		}
		masked, err := r.amountArg(string(m), *values[m])
		if err != nil {
			return err
		}
		if err := form.SetValue(m, masked); err != nil {
			return err
		}
	}
	form.Observation = *obs

	closed, err := r.register.Close(ctx, form)
	if err != nil {
		return err
	}
	if ok, err := r.emit(closed); ok {
		return err
	}
	r.println("Caixa fechado.")
	if closed.FinalAmounts != nil {
		tw := r.table("", "FORMA", "INFORMADO", "ESPERADO")
		for _, m := range api.PaymentMethods {
			row(tw, "", methodLabel(m), r.money(closed.FinalAmounts.Get(m)), r.money(form.Data.ExpectedBalance.Get(m)))
		}
		return tw.Flush()
	}
	return nil
}

func (r *Runner) registerHistory(ctx context.Context, args []string) error {
	fs := r.subFlags("register history")
	date := fs.String("date", "", "Dia (AAAA-MM-DD, padrão: hoje)")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	day, err := parseDay(*date)
	if err != nil {
		return err
	}
	history, err := r.register.LoadHistory(ctx, day)
	if err != nil {
		return err
	}
	if ok, err := r.emit(history); ok {
		return err
	}
	if len(history) == 0 {
		r.println("Nenhum caixa neste dia.")
		return nil
	}
	tw := r.table("ABERTURA", "FECHAMENTO", "SITUAÇÃO", "INICIAL", "VENDAS", "SANGRIAS")
	for _, reg := range history {
		closedAt, sales, withdrawals := "-", "-", "-"
		if reg.ClosedAt != nil {
			closedAt = formatTime(*reg.ClosedAt)
		}
		if reg.ClosingSummary != nil {
			sales = r.money(reg.ClosingSummary.TotalSales)
			withdrawals = r.money(reg.ClosingSummary.TotalWithdrawals)
		}
		row(tw, formatTime(reg.OpenedAt), closedAt, statusLabel(reg.Status), r.money(reg.InitialAmount), sales, withdrawals)
	}
	return tw.Flush()
}

func methodLabel(m api.PaymentMethod) string {
	switch m {
	case api.PaymentCash:
		return "dinheiro"
	case api.PaymentCredit:
		return "crédito"
	case api.PaymentDebit:
		return "débito"
	case api.PaymentPix:
		return "pix"
	}
	return "-"
}

func transactionLabel(t api.TransactionType) string {
	if t == api.TransactionWithdrawal {
		return "sangria"
	}
	return "venda"
}

func statusLabel(s api.RegisterStatus) string {
	if s == api.RegisterOpen {
		return "aberto"
	}
	return "fechado"
}
