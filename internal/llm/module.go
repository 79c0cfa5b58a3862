package llm

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"llm",
		fx.Provide(NewClient),
		fx.Invoke(func(lc fx.Lifecycle, c *Client, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					if u := c.Usage(); u.Requests > 0 {
						logger.Info("assistant usage",
							zap.String("model", c.Model()),
							zap.Int("requests", u.Requests),
							zap.Int("total_tokens", u.TotalTokens()),
							zap.Float64("cost", u.Cost),
						)
					}
					return nil
				},
			})
		}),
	)
}
