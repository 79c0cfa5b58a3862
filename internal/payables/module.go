package payables

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"payables",
		fx.Provide(NewService),
	)
}
