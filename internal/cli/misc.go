package cli

import (
	"context"
	"errors"
	"time"

	"caixa/internal/api"
	"caixa/internal/gate"
	"caixa/internal/notifications"
	"caixa/internal/reports"

	"go.uber.org/zap"
)

func (r *Runner) cmdReport(ctx context.Context, args []string) error {
	fs := r.subFlags("report")
	kind := fs.String("type", "", "sales, products, cash-register, accounts-payable ou suppliers")
	period := fs.String("period", "monthly", "daily, weekly, monthly ou yearly")
	dir := fs.String("dir", "", "Diretório de destino")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	path, err := r.reports.Export(ctx, reports.Type(*kind), reports.Period(*period), *dir)
	if err != nil {
		return err
	}
	r.printf("Relatório salvo em %s\n", path)
	return nil
}

func (r *Runner) cmdNotifications(ctx context.Context, _ []string) error {
	items, err := r.feed.Fetch(ctx)
	if err != nil && len(items) == 0 {
		return err
	}
	if err != nil {
		r.logger.Warn("partial notification feed", zap.Error(err))
	}
	if ok, err := r.emit(items); ok {
		return err
	}
	if len(items) == 0 {
		r.println("Nenhuma notificação.")
		return nil
	}
	r.printf("%d não lidas\n", notifications.Unread(items))
	for _, it := range items {
		mark := " "
		if !it.Read {
			mark = "*"
		}
		switch it.Kind {
		case notifications.KindPayment:
			r.printf("%s %s  %s (%s, vence %s)\n", mark, formatTime(it.CreatedAt), it.Message, r.money(it.Amount), formatDay(it.DueDate))
		default:
			r.printf("%s %s  %s: %s\n", mark, formatTime(it.CreatedAt), it.Title, it.Message)
		}
	}
	if err != nil {
		r.println("(alguns avisos não puderam ser carregados)")
	}
	return nil
}

// cmdDashboard asks for the four-digit PIN before showing the day's
// figures. A wrong PIN can be retried until the input ends.
func (r *Runner) cmdDashboard(ctx context.Context, _ []string) error {
	defer r.gate.Lock()
	for !r.gate.Unlocked() {
		raw, err := r.prompt("Senha (4 dígitos): ")
		if err != nil {
			return err
		}
		r.gate.SetInput(raw)
		err = r.gate.Submit(ctx)
		if err == nil {
			break
		}
		if errors.Is(err, gate.ErrWrongPIN) || errors.Is(err, gate.ErrIncomplete) {
			r.println(friendlyError(err))
			continue
		}
		return err
	}

	stats, _, err := r.stats.Daily(ctx)
	if err != nil {
		return err
	}
	status, err := r.api.CashRegisterStatus(ctx)
	if err != nil {
		return err
	}
	month := time.Now()
	monthly, err := r.payables.MonthlyStats(ctx, month)
	if err != nil {
		return err
	}

	if ok, err := r.emit(dashboard{Sales: stats, Register: status, Payables: monthly}); ok {
		return err
	}
	r.printf("Vendas hoje: %d, total %s, ticket médio %s\n", stats.SalesCount, r.money(stats.TotalSales), r.money(stats.AverageTicket))
	if status.IsOpen && status.CashRegister != nil {
		r.printf("Caixa aberto: %s em dinheiro (limite %s)\n", r.money(status.CashRegister.CurrentAmount), r.money(status.CashRegister.CashLimit))
	} else {
		r.println("Caixa fechado.")
	}
	r.printStats(monthly)
	return nil
}

type dashboard struct {
	Sales    api.DailySalesStats    `json:"sales"`
	Register api.CashRegisterStatus `json:"register"`
	Payables api.MonthlyStats       `json:"payables"`
}
