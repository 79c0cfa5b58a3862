// Package notifications merges the general and payment notification feeds.
package notifications

import (
	"context"
	"fmt"
	"sort"
	"time"

	"caixa/internal/api"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Kind string

const (
	KindGeneral Kind = "general"
	KindPayment Kind = "payment"
)

// Item is one entry of the merged feed. Amount and DueDate are only set
// for payment notifications.
type Item struct {
	ID        string
	Kind      Kind
	Title     string
	Message   string
	Read      bool
	Amount    decimal.Decimal
	DueDate   string
	CreatedAt time.Time
}

type Source interface {
	Notifications(ctx context.Context) ([]api.Notification, error)
	PaymentNotifications(ctx context.Context) ([]api.PaymentNotification, error)
}

type Feed struct {
	source Source
	logger *zap.Logger
}

func NewFeed(client *api.Client, logger *zap.Logger) *Feed {
	return newFeed(client, logger)
}

func newFeed(source Source, logger *zap.Logger) *Feed {
	return &Feed{source: source, logger: logger.Named("notifications")}
}

// Merge combines both feeds, newest first.
func Merge(general []api.Notification, payments []api.PaymentNotification) []Item {
	items := make([]Item, 0, len(general)+len(payments))
	for _, n := range general {
		items = append(items, Item{
			ID: n.ID, Kind: KindGeneral, Title: n.Title, Message: n.Message,
			Read: n.Read, CreatedAt: n.CreatedAt,
		})
	}
	for _, n := range payments {
		items = append(items, Item{
			ID: n.ID, Kind: KindPayment, Message: n.Message,
			Amount: n.Amount, DueDate: n.DueDate, CreatedAt: n.CreatedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// Fetch loads both feeds. When only one of them fails the other is still
// returned together with the error.
func (f *Feed) Fetch(ctx context.Context) ([]Item, error) {
	general, gErr := f.source.Notifications(ctx)
	if gErr != nil {
		f.logger.Error("fetch notifications", zap.Error(gErr))
		gErr = fmt.Errorf("notifications: %w", gErr)
	}
	payments, pErr := f.source.PaymentNotifications(ctx)
	if pErr != nil {
		f.logger.Error("fetch payment notifications", zap.Error(pErr))
		pErr = fmt.Errorf("payment notifications: %w", pErr)
	}
	if gErr != nil && pErr != nil {
		return nil, gErr
	}
	items := Merge(general, payments)
	if gErr != nil {
		return items, gErr
	}
	return items, pErr
}

// Unread counts general notifications not yet read plus every payment
// notification.
func Unread(items []Item) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}
