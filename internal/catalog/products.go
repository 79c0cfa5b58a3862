// Package catalog manages products and suppliers. List fetches go through
// a listing.Tracker and filter choices are saved between runs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"caixa/internal/api"
	"caixa/internal/listing"
	"caixa/internal/settings"

	"go.uber.org/zap"
)

const DefaultLimit = 10

var ErrNotCSV = errors.New("import file must be a .csv")

var (
	ProductFilterKey  = settings.Key[api.ListQuery]{Name: "catalog.product_filter"}
	SupplierFilterKey = settings.Key[api.ListQuery]{Name: "catalog.supplier_filter"}
)

type ProductBackend interface {
	ListProducts(ctx context.Context, q api.ListQuery) (api.Page[api.Product], error)
	CreateProduct(ctx context.Context, in api.ProductInput) (api.Product, error)
	UpdateProduct(ctx context.Context, id string, patch api.ProductPatch) (api.Product, error)
	ImportProducts(ctx context.Context, filename string, content io.Reader) (api.ImportResult, error)
}

type AdminChecker interface {
	RequireAdmin(ctx context.Context) error
}

type Products struct {
	backend ProductBackend
	admin   AdminChecker
	store   *settings.Store
	logger  *zap.Logger
	tracker listing.Tracker[api.Product]
}

func newProducts(backend ProductBackend, admin AdminChecker, store *settings.Store, logger *zap.Logger) *Products {
	return &Products{
		backend: backend,
		admin:   admin,
		store:   store,
		logger:  logger.Named("products"),
	}
}

func normalize(q api.ListQuery) api.ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Order != "" && q.Order != "asc" && q.Order != "desc" {
		q.Order = "asc"
	}
	return q
}

// SavedFilter returns the last filter used, or the defaults.
func (p *Products) SavedFilter(ctx context.Context) api.ListQuery {
	return savedFilter(ctx, p.store, ProductFilterKey, p.logger)
}

// Load fetches one page for q and remembers q as the saved filter. The
// returned snapshot is the tracker's latest committed state, which is not
// q's result when a newer Load started meanwhile.
func (p *Products) Load(ctx context.Context, q api.ListQuery) listing.Snapshot[api.Product] {
	q = normalize(q)
	saveFilter(ctx, p.store, ProductFilterKey, q, p.logger)
	snap, committed := p.tracker.Load(ctx, func(ctx context.Context) (listing.Result[api.Product], error) {
		page, err := p.backend.ListProducts(ctx, q)
		if err != nil {
			return listing.Result[api.Product]{}, fmt.Errorf("list products: %w", err)
		}
		return resultOf(page), nil
	})
	if !committed {
		p.logger.Debug("stale product list dropped", zap.String("search", q.Search))
	}
	if snap.State == listing.StateError {
		p.logger.Error("list products", zap.Error(snap.Err))
	}
	return snap
}

func (p *Products) Snapshot() listing.Snapshot[api.Product] {
	return p.tracker.Snapshot()
}

func (p *Products) Create(ctx context.Context, in api.ProductInput) (api.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := api.Validate(in); err != nil {
		p.logger.Warn("product rejected", zap.Error(err))
		return api.Product{}, err
	}
	prod, err := p.backend.CreateProduct(ctx, in)
	if err != nil {
		p.logger.Error("create product", zap.Error(err))
		return api.Product{}, fmt.Errorf("create product: %w", err)
	}
	return prod, nil
}

func (p *Products) Update(ctx context.Context, id string, patch api.ProductPatch) (api.Product, error) {
	if patch.Price != nil && !patch.Price.IsPositive() {
		return api.Product{}, &api.InputError{Fields: map[string]string{"price": "gt"}}
	}
	prod, err := p.backend.UpdateProduct(ctx, id, patch)
	if err != nil {
		p.logger.Error("update product", zap.String("id", id), zap.Error(err))
		return api.Product{}, fmt.Errorf("update product: %w", err)
	}
	return prod, nil
}

// Import uploads a CSV of products. Only admins may import.
func (p *Products) Import(ctx context.Context, filename string, content io.Reader) (api.ImportResult, error) {
	if err := p.admin.RequireAdmin(ctx); err != nil {
		p.logger.Warn("import refused", zap.Error(err))
		return api.ImportResult{}, err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return api.ImportResult{}, ErrNotCSV
	}
	res, err := p.backend.ImportProducts(ctx, filepath.Base(filename), content)
	if err != nil {
		p.logger.Error("import products", zap.String("file", filename), zap.Error(err))
		return api.ImportResult{}, fmt.Errorf("import products: %w", err)
	}
	p.logger.Info("products imported", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	return res, nil
}

func resultOf[T any](p api.Page[T]) listing.Result[T] {
	return listing.Result[T]{Items: p.Data, Total: p.Total, Page: p.Page, TotalPages: p.TotalPages}
}

func savedFilter(ctx context.Context, store *settings.Store, key settings.Key[api.ListQuery], logger *zap.Logger) api.ListQuery {
	q, _, err := settings.Get(ctx, store, key)
	if err != nil {
		logger.Warn("read saved filter", zap.String("key", key.Name), zap.Error(err))
	}
	return normalize(q)
}

func saveFilter(ctx context.Context, store *settings.Store, key settings.Key[api.ListQuery], q api.ListQuery, logger *zap.Logger) {
	if err := settings.Set(ctx, store, key, q); err != nil {
		logger.Warn("save filter", zap.String("key", key.Name), zap.Error(err))
	}
}
