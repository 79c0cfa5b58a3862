package gate

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"gate",
		fx.Provide(New),
	)
}
