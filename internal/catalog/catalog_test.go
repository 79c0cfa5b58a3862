package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/listing"
	"caixa/internal/session"
	"caixa/internal/settings"
	"caixa/internal/testutil/fakeapi"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type adminStub struct{ err error }

func (a adminStub) RequireAdmin(context.Context) error { return a.err }

type env struct {
	srv       *fakeapi.Server
	store     *settings.Store
	products  *Products
	suppliers *Suppliers
}

func setup(t *testing.T, admin AdminChecker) env {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	logger := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := settings.NewStore(db, logger)
	require.NoError(t, err)

	client := api.NewClient(config.Config{APIURL: srv.URL, Token: fakeapi.Token, Timeout: 5 * time.Second}, logger)
	return env{
		srv:       srv,
		store:     store,
		products:  newProducts(client, admin, store, logger),
		suppliers: newSuppliers(client, store, logger),
	}
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProducts_LoadAndFilterPersisted(t *testing.T) {
	e := setup(t, adminStub{})
	ctx := context.Background()
	e.srv.SeedProducts(
		api.Product{ID: "1", Name: "Arroz", Category: "mercearia", Price: price("24.90")},
		api.Product{ID: "2", Name: "Feijão", Category: "mercearia", Price: price("8.50")},
		api.Product{ID: "3", Name: "Sabão", Category: "limpeza", Price: price("4.20")},
	)

	snap := e.products.Load(ctx, api.ListQuery{Category: "mercearia", SortBy: "price", Order: "asc"})
	require.Equal(t, listing.StateLoaded, snap.State)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "Feijão", snap.Items[0].Name)
	assert.Equal(t, 2, snap.Total)

	saved := e.products.SavedFilter(ctx)
	assert.Equal(t, "mercearia", saved.Category)
	assert.Equal(t, "price", saved.SortBy)
	assert.Equal(t, 1, saved.Page)
	assert.Equal(t, DefaultLimit, saved.Limit)

	snap = e.products.Load(ctx, api.ListQuery{Search: "nada"})
	assert.Equal(t, listing.StateEmpty, snap.State)
}

func TestProducts_ErrorIsNotEmpty(t *testing.T) {
	e := setup(t, adminStub{})
	e.srv.Close()

	snap := e.products.Load(context.Background(), api.ListQuery{})
	assert.Equal(t, listing.StateError, snap.State)
	assert.Error(t, snap.Err)
}

func TestProducts_StaleResponseDropped(t *testing.T) {
	e := setup(t, adminStub{})
	ctx := context.Background()
	e.srv.SeedProducts(
		api.Product{ID: "1", Name: "Arroz", Price: price("24.90")},
		api.Product{ID: "2", Name: "Feijão", Price: price("8.50")},
	)
	e.srv.Delay["arroz"] = 300 * time.Millisecond

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.products.Load(ctx, api.ListQuery{Search: "arroz"})
	}()
	require.Eventually(t, func() bool {
		return e.srv.Hits("GET", "/api/products") == 1
	}, time.Second, 5*time.Millisecond)

	snap := e.products.Load(ctx, api.ListQuery{Search: "feij"})
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Feijão", snap.Items[0].Name)

	wg.Wait()
	final := e.products.Snapshot()
	require.Len(t, final.Items, 1)
	assert.Equal(t, "Feijão", final.Items[0].Name)
}

func TestProducts_CreateValidates(t *testing.T) {
	e := setup(t, adminStub{})
	ctx := context.Background()

	_, err := e.products.Create(ctx, api.ProductInput{Name: "  ", Price: price("1")})
	var inputErr *api.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "required", inputErr.Fields["name"])

	_, err = e.products.Create(ctx, api.ProductInput{Name: "Leite", Price: price("0")})
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "gt", inputErr.Fields["price"])
	assert.Zero(t, e.srv.Hits("POST", "/api/products"))

	p, err := e.products.Create(ctx, api.ProductInput{Name: "Leite", Price: price("5.49"), Unit: "l"})
	require.NoError(t, err)
	assert.True(t, p.Active)

	newPrice := price("5.99")
	p, err = e.products.Update(ctx, p.ID, api.ProductPatch{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(newPrice))
}

func TestProducts_ImportAdminOnly(t *testing.T) {
	e := setup(t, adminStub{err: session.ErrNotAdmin})
	csv := "name,price\nArroz,24.90\nFeijão,8.50\n"

	_, err := e.products.Import(context.Background(), "produtos.csv", strings.NewReader(csv))
	assert.ErrorIs(t, err, session.ErrNotAdmin)
	assert.Zero(t, e.srv.Hits("POST", "/api/products/import"))

	e = setup(t, adminStub{})
	_, err = e.products.Import(context.Background(), "produtos.xlsx", strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrNotCSV)

	res, err := e.products.Import(context.Background(), "/tmp/produtos.CSV", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
}

func TestSuppliers_CRUD(t *testing.T) {
	e := setup(t, adminStub{})
	ctx := context.Background()

	_, err := e.suppliers.Create(ctx, api.SupplierInput{Name: "Distribuidora", Email: "não-é-email"})
	assert.ErrorIs(t, err, api.ErrInvalidInput)

	sup, err := e.suppliers.Create(ctx, api.SupplierInput{Name: " Distribuidora Sul ", Document: "12.345.678/0001-90"})
	require.NoError(t, err)
	assert.Equal(t, "Distribuidora Sul", sup.Name)
	assert.Equal(t, "12345678000190", sup.Document)

	sup, err = e.suppliers.Update(ctx, sup.ID, api.SupplierInput{Name: "Distribuidora Norte"})
	require.NoError(t, err)
	assert.Equal(t, "Distribuidora Norte", sup.Name)

	snap := e.suppliers.Load(ctx, api.ListQuery{Search: "norte", Category: "ignored"})
	require.Len(t, snap.Items, 1)
	assert.Empty(t, e.suppliers.SavedFilter(ctx).Category)

	require.NoError(t, e.suppliers.Delete(ctx, sup.ID))
	assert.ErrorIs(t, e.suppliers.Delete(ctx, sup.ID), api.ErrNotFound)
	assert.Equal(t, listing.StateEmpty, e.suppliers.Load(ctx, api.ListQuery{}).State)
}
