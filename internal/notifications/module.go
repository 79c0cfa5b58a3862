package notifications

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"notifications",
		fx.Provide(NewFeed),
	)
}
