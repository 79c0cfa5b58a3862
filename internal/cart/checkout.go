package cart

import (
	"context"
	"fmt"

	"caixa/internal/api"
	"caixa/internal/cashregister"

	"go.uber.org/zap"
)

type SaleCreator interface {
	CreateSale(ctx context.Context, req api.CreateSaleRequest, idempotencyKey string) (api.Sale, error)
}

type SaleObserver interface {
	AfterSale(ctx context.Context)
}

// Checkout submits carts and tells the register controller about them.
type Checkout struct {
	sales    SaleCreator
	observer SaleObserver
	logger   *zap.Logger
}

func NewCheckout(client *api.Client, register *cashregister.Controller, logger *zap.Logger) *Checkout {
	return newCheckout(client, register, logger)
}

func newCheckout(sales SaleCreator, observer SaleObserver, logger *zap.Logger) *Checkout {
	return &Checkout{sales: sales, observer: observer, logger: logger.Named("cart")}
}

// Submit posts the cart as one sale and clears it only on success.
func (c *Checkout) Submit(ctx context.Context, cart *Cart) (api.Sale, error) {
	req, key, err := cart.Request()
	if err != nil {
		c.logger.Warn("cart rejected", zap.Error(err))
		return api.Sale{}, err
	}
	sale, err := c.sales.CreateSale(ctx, req, key)
	if err != nil {
		c.logger.Error("create sale", zap.String("idempotency_key", key), zap.Error(err))
		return api.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	cart.Clear()
	c.logger.Info("sale created",
		zap.String("id", sale.ID),
		zap.String("method", string(sale.PaymentMethod)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	if c.observer != nil {
		c.observer.AfterSale(ctx)
	}
	return sale, nil
}
