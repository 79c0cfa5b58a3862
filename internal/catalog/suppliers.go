package catalog

import (
	"context"
	"fmt"
	"strings"

	"caixa/internal/api"
	"caixa/internal/listing"
	"caixa/internal/settings"

	"go.uber.org/zap"
)

type SupplierBackend interface {
	ListSuppliers(ctx context.Context, q api.ListQuery) (api.Page[api.Supplier], error)
	CreateSupplier(ctx context.Context, in api.SupplierInput) (api.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, in api.SupplierInput) (api.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

type Suppliers struct {
	backend SupplierBackend
	store   *settings.Store
	logger  *zap.Logger
	tracker listing.Tracker[api.Supplier]
}

func newSuppliers(backend SupplierBackend, store *settings.Store, logger *zap.Logger) *Suppliers {
	return &Suppliers{backend: backend, store: store, logger: logger.Named("suppliers")}
}

func (s *Suppliers) SavedFilter(ctx context.Context) api.ListQuery {
	return savedFilter(ctx, s.store, SupplierFilterKey, s.logger)
}

func (s *Suppliers) Load(ctx context.Context, q api.ListQuery) listing.Snapshot[api.Supplier] {
	q = normalize(q)
	q.Category = ""
	saveFilter(ctx, s.store, SupplierFilterKey, q, s.logger)
	snap, _ := s.tracker.Load(ctx, func(ctx context.Context) (listing.Result[api.Supplier], error) {
		page, err := s.backend.ListSuppliers(ctx, q)
		if err != nil {
			return listing.Result[api.Supplier]{}, fmt.Errorf("list suppliers: %w", err)
		}
		return resultOf(page), nil
	})
	if snap.State == listing.StateError {
		s.logger.Error("list suppliers", zap.Error(snap.Err))
	}
	return snap
}

func clean(in api.SupplierInput) api.SupplierInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Document = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, in.Document)
	return in
}

func (s *Suppliers) Create(ctx context.Context, in api.SupplierInput) (api.Supplier, error) {
	in = clean(in)
	if err := api.Validate(in); err != nil {
		s.logger.Warn("supplier rejected", zap.Error(err))
		return api.Supplier{}, err
	}
	sup, err := s.backend.CreateSupplier(ctx, in)
	if err != nil {
		s.logger.Error("create supplier", zap.Error(err))
		return api.Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return sup, nil
}

func (s *Suppliers) Update(ctx context.Context, id string, in api.SupplierInput) (api.Supplier, error) {
	in = clean(in)
	if err := api.Validate(in); err != nil {
		s.logger.Warn("supplier rejected", zap.Error(err))
		return api.Supplier{}, err
	}
	sup, err := s.backend.UpdateSupplier(ctx, id, in)
	if err != nil {
		s.logger.Error("update supplier", zap.String("id", id), zap.Error(err))
		return api.Supplier{}, fmt.Errorf("update supplier: %w", err)
	}
	return sup, nil
}

func (s *Suppliers) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteSupplier(ctx, id); err != nil {
		s.logger.Error("delete supplier", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}
