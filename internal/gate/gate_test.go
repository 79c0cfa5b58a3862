package gate

import (
	"context"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/testutil/fakeapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) (*Gate, *fakeapi.Server) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	logger := zaptest.NewLogger(t)
	client := api.NewClient(config.Config{APIURL: srv.URL, Token: fakeapi.Token, Timeout: 5 * time.Second}, logger)
	return New(client, logger), srv
}

func TestGate_SetInput(t *testing.T) {
	g, _ := setup(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"12a3", "123"},
		{"1234", "1234"},
		{"123456", "1234"},
		{" 4-3-2-1 ", "4321"},
		{"١٢٣٤", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.SetInput(tt.raw), "input %q", tt.raw)
	}
}

func TestGate_CanSubmitNeedsFourDigits(t *testing.T) {
	g, srv := setup(t)

	g.SetInput("123")
	assert.False(t, g.CanSubmit())
	assert.ErrorIs(t, g.Submit(context.Background()), ErrIncomplete)
	assert.Zero(t, srv.Hits("POST", "/api/verify-password"))

	g.SetInput("1234")
	assert.True(t, g.CanSubmit())
}

func TestGate_WrongPINStaysLocked(t *testing.T) {
	g, srv := setup(t)

	g.SetInput("1234")
	err := g.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWrongPIN)
	assert.False(t, g.Unlocked())
	assert.Empty(t, g.Input())
	assert.Equal(t, 1, srv.Hits("POST", "/api/verify-password"))
}

func TestGate_RightPINUnlocks(t *testing.T) {
	g, _ := setup(t)

	g.SetInput(fakeapi.PIN)
	require.NoError(t, g.Submit(context.Background()))
	assert.True(t, g.Unlocked())

	g.Lock()
	assert.False(t, g.Unlocked())
}

func TestGate_NoLockout(t *testing.T) {
	g, _ := setup(t)
	ctx := context.Background()

	for range 5 {
		g.SetInput("0000")
		assert.ErrorIs(t, g.Submit(ctx), ErrWrongPIN)
	}
	g.SetInput(fakeapi.PIN)
	require.NoError(t, g.Submit(ctx))
	assert.True(t, g.Unlocked())
}
