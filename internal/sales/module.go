package sales

import (
	"caixa/internal/session"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"sales",
		fx.Provide(NewStats),
		fx.Invoke(func(sessions *session.Manager, stats *Stats) {
			sessions.OnChange(stats.Invalidate)
		}),
	)
}
