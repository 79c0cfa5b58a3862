package reports

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/testutil/fakeapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) (*Exporter, *fakeapi.Server, string) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()
	cfg := config.Config{APIURL: srv.URL, Token: fakeapi.Token, Timeout: 5 * time.Second, ReportsDir: dir}
	return NewExporter(api.NewClient(cfg, logger), cfg, logger), srv, dir
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "sales_daily_report.csv", FileName(TypeSales, PeriodDaily))
	assert.Equal(t, "accounts-payable_yearly_report.csv", FileName(TypeAccountsPayable, PeriodYearly))
}

func TestExport_WritesFile(t *testing.T) {
	exp, _, dir := setup(t)

	path, err := exp.Export(context.Background(), TypeCashRegister, PeriodMonthly, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cash-register_monthly_report.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "type,period\ncash-register,monthly\n", string(data))

	_, err = os.Stat(path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestExport_OtherDir(t *testing.T) {
	exp, _, _ := setup(t)
	other := filepath.Join(t.TempDir(), "exports")

	path, err := exp.Export(context.Background(), TypeSales, PeriodWeekly, other)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(other, "sales_weekly_report.csv"), path)
}

func TestExport_RejectsUnknown(t *testing.T) {
	exp, srv, _ := setup(t)
	ctx := context.Background()

	_, err := exp.Export(ctx, "inventory", PeriodDaily, "")
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = exp.Export(ctx, TypeSales, "hourly", "")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
	assert.Zero(t, srv.Hits("GET", "/api/reports"))
}
