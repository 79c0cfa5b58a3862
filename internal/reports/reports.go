// Package reports downloads server-generated CSV reports to disk.
package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"caixa/internal/api"
	"caixa/internal/config"

	"go.uber.org/zap"
)

type Type string

const (
	TypeSales           Type = "sales"
	TypeProducts        Type = "products"
	TypeCashRegister    Type = "cash-register"
	TypeAccountsPayable Type = "accounts-payable"
	TypeSuppliers       Type = "suppliers"
)

var Types = []Type{TypeSales, TypeProducts, TypeCashRegister, TypeAccountsPayable, TypeSuppliers}

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

var (
	ErrUnknownType   = errors.New("unknown report type")
	ErrUnknownPeriod = errors.New("unknown report period")
)

type Downloader interface {
	DownloadReport(ctx context.Context, reportType, period string) ([]byte, error)
}

type Exporter struct {
	client Downloader
	dir    string
	logger *zap.Logger
}

func NewExporter(client *api.Client, cfg config.Config, logger *zap.Logger) *Exporter {
	return newExporter(client, cfg.ReportsDir, logger)
}

func newExporter(client Downloader, dir string, logger *zap.Logger) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{client: client, dir: dir, logger: logger.Named("reports")}
}

func FileName(t Type, p Period) string {
	return fmt.Sprintf("%s_%s_report.csv", t, p)
}

// Export downloads one report into dir (the configured directory when
// empty) and returns the written path. An existing file is replaced.
func (e *Exporter) Export(ctx context.Context, t Type, p Period, dir string) (string, error) {
	if !slices.Contains(Types, t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if !slices.Contains(Periods, p) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, p)
	}
	if dir == "" {
		dir = e.dir
	}

	data, err := e.client.DownloadReport(ctx, string(t), string(p))
	if err != nil {
		e.logger.Error("download report", zap.String("type", string(t)), zap.String("period", string(p)), zap.Error(err))
		return "", fmt.Errorf("download report: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(dir, FileName(t, p))
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write report: %w", err)
	}
	e.logger.Info("report saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}
