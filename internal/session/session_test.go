package session

import (
	"context"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/settings"
	"caixa/internal/testutil/fakeapi"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func signedToken(t *testing.T, role string, expires time.Time) string {
	claims := Claims{
		UserID: "u-1",
		Email:  "caixa@loja.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func setup(t *testing.T) (*Manager, *fakeapi.Server, *api.Client) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	logger := zaptest.NewLogger(t)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := settings.NewStore(db, logger)
	require.NoError(t, err)

	client := api.NewClient(config.Config{APIURL: srv.URL, Timeout: 5 * time.Second}, logger)
	return NewManager(client, store, logger), srv, client
}

func TestManager_LoginPersistsSession(t *testing.T) {
	mgr, srv, client := setup(t)
	ctx := context.Background()
	srv.LoginToken = signedToken(t, "admin", time.Now().Add(time.Hour))

	resp, err := mgr.Login(ctx, " caixa@loja.com ", "secret", true)
	require.NoError(t, err)
	assert.Equal(t, "Mercadinho Teste", resp.CompanyName)
	assert.True(t, client.HasToken())

	assert.Equal(t, "caixa@loja.com", mgr.RememberedEmail(ctx))
	assert.Equal(t, "Mercadinho Teste", mgr.CompanyName(ctx))

	claims, err := mgr.Claims(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.NoError(t, mgr.RequireAdmin(ctx))

	_, err = client.CashRegisterStatus(ctx)
	assert.NoError(t, err)
}

func TestManager_LogoutKeepsEmail(t *testing.T) {
	mgr, _, client := setup(t)
	ctx := context.Background()

	_, err := mgr.Login(ctx, "caixa@loja.com", "secret", true)
	require.NoError(t, err)
	require.NoError(t, mgr.Logout(ctx))

	assert.False(t, client.HasToken())
	assert.Equal(t, "caixa@loja.com", mgr.RememberedEmail(ctx))
	assert.Empty(t, mgr.CompanyName(ctx))
	_, err = mgr.Claims(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestManager_LoginWithoutRememberForgetsEmail(t *testing.T) {
	mgr, _, _ := setup(t)
	ctx := context.Background()

	_, err := mgr.Login(ctx, "a@loja.com", "secret", true)
	require.NoError(t, err)
	_, err = mgr.Login(ctx, "b@loja.com", "secret", false)
	require.NoError(t, err)
	assert.Empty(t, mgr.RememberedEmail(ctx))
}

func TestManager_WrongPassword(t *testing.T) {
	mgr, _, client := setup(t)

	_, err := mgr.Login(context.Background(), "caixa@loja.com", "wrong", true)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.False(t, client.HasToken())
}

func TestManager_ClaimsExpiryAndRole(t *testing.T) {
	mgr, srv, _ := setup(t)
	ctx := context.Background()

	srv.LoginToken = signedToken(t, "operator", time.Now().Add(time.Hour))
	_, err := mgr.Login(ctx, "caixa@loja.com", "secret", false)
	require.NoError(t, err)
	assert.ErrorIs(t, mgr.RequireAdmin(ctx), ErrNotAdmin)

	mgr.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = mgr.Claims(ctx)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestManager_Restore(t *testing.T) {
	mgr, _, client := setup(t)
	ctx := context.Background()

	_, err := mgr.Login(ctx, "caixa@loja.com", "secret", false)
	require.NoError(t, err)
	client.SetToken("")

	require.NoError(t, mgr.Restore(ctx))
	assert.True(t, client.HasToken())
}

func TestManager_OnChangeRunsOnLoginAndLogout(t *testing.T) {
	mgr, _, _ := setup(t)
	ctx := context.Background()
	calls := 0
	mgr.OnChange(func(context.Context) error {
		calls++
		return nil
	})
	mgr.OnChange(func(context.Context) error { return assert.AnError })

	_, err := mgr.Login(ctx, "caixa@loja.com", "secret", false)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, mgr.Logout(ctx))
	assert.Equal(t, 2, calls)

	_, err = mgr.Login(ctx, "caixa@loja.com", "wrong", false)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
