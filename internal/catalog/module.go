package catalog

import (
	"caixa/internal/api"
	"caixa/internal/session"
	"caixa/internal/settings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewProducts(client *api.Client, sessions *session.Manager, store *settings.Store, logger *zap.Logger) *Products {
	return newProducts(client, sessions, store, logger)
}

func NewSuppliers(client *api.Client, store *settings.Store, logger *zap.Logger) *Suppliers {
	return newSuppliers(client, store, logger)
}

func Module() fx.Option {
	return fx.Module(
		"catalog",
		fx.Provide(NewProducts, NewSuppliers),
	)
}
