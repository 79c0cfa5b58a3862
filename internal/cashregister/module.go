package cashregister

import (
	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/money"
	"caixa/internal/sales"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"cashregister",
		fx.Provide(func(client *api.Client, stats *sales.Stats, cfg config.Config, logger *zap.Logger) *Controller {
			return NewController(client, stats, money.ForLocale(cfg.Locale), logger)
		}),
	)
}
