package settings

import (
	"context"

	"caixa/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"settings",
		fx.Provide(func(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Store, error) {
			store, err := Open(cfg.SettingsDB, logger)
			if err != nil {
				return nil, err
			}
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					_, err := store.PurgeExpired(ctx)
					return err
				},
				OnStop: func(_ context.Context) error {
					return store.Close()
				},
			})
			return store, nil
		}),
	)
}
