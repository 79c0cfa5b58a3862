package internal

import (
	"context"

	"caixa/internal/api"
	"caixa/internal/cart"
	"caixa/internal/cashregister"
	"caixa/internal/catalog"
	"caixa/internal/cli"
	"caixa/internal/config"
	"caixa/internal/gate"
	"caixa/internal/llm"
	"caixa/internal/logging"
	"caixa/internal/notifications"
	"caixa/internal/payables"
	"caixa/internal/reports"
	"caixa/internal/sales"
	"caixa/internal/session"
	"caixa/internal/settings"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		settings.Module(),
		api.Module(),
		session.Module(),
		sales.Module(),
		cashregister.Module(),
		gate.Module(),
		cart.Module(),
		payables.Module(),
		catalog.Module(),
		reports.Module(),
		notifications.Module(),
		llm.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
