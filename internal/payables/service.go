// Package payables manages accounts payable: one-off bills, monthly
// recurring bills and installment plans.
package payables

import (
	"context"
	"fmt"
	"time"

	"caixa/internal/api"

	"go.uber.org/zap"
)

type Backend interface {
	ListPayables(ctx context.Context, q api.PayableQuery) ([]api.AccountPayable, error)
	CreatePayable(ctx context.Context, in api.PayableInput) ([]api.AccountPayable, error)
	UpdatePayable(ctx context.Context, id string, in api.PayableInput) (api.AccountPayable, error)
	DeletePayable(ctx context.Context, id string) error
	PayableMonthlyStats(ctx context.Context, month time.Time) (api.MonthlyStats, error)
	Installments(ctx context.Context, id string) ([]api.AccountPayable, error)
	MarkPayableAsPaid(ctx context.Context, id string) (api.AccountPayable, error)
}

type Service struct {
	backend Backend
	logger  *zap.Logger
}

func NewService(client *api.Client, logger *zap.Logger) *Service {
	return newService(client, logger)
}

func newService(backend Backend, logger *zap.Logger) *Service {
	return &Service{backend: backend, logger: logger.Named("payables")}
}

func (s *Service) input(d Draft) (api.PayableInput, error) {
	in, err := d.Input()
	if err != nil {
		s.logger.Warn("payable rejected", zap.Error(err))
		return api.PayableInput{}, err
	}
	if err := api.Validate(in); err != nil {
		s.logger.Warn("payable rejected", zap.Error(err))
		return api.PayableInput{}, err
	}
	return in, nil
}

// Create returns every record the server made: one, or one per installment.
func (s *Service) Create(ctx context.Context, d Draft) ([]api.AccountPayable, error) {
	in, err := s.input(d)
	if err != nil {
		return nil, err
	}
	created, err := s.backend.CreatePayable(ctx, in)
	if err != nil {
		s.logger.Error("create payable", zap.Error(err))
		return nil, fmt.Errorf("create payable: %w", err)
	}
	s.logger.Info("payable created", zap.String("description", in.Description), zap.Int("records", len(created)))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, d Draft) (api.AccountPayable, error) {
	in, err := s.input(d)
	if err != nil {
		return api.AccountPayable{}, err
	}
	p, err := s.backend.UpdatePayable(ctx, id, in)
	if err != nil {
		s.logger.Error("update payable", zap.String("id", id), zap.Error(err))
		return api.AccountPayable{}, fmt.Errorf("update payable: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeletePayable(ctx, id); err != nil {
		s.logger.Error("delete payable", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete payable: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, q api.PayableQuery) ([]api.AccountPayable, error) {
	items, err := s.backend.ListPayables(ctx, q)
	if err != nil {
		s.logger.Error("list payables", zap.Error(err))
		return nil, fmt.Errorf("list payables: %w", err)
	}
	return items, nil
}

// Overview is the default accounts payable screen: bills not split in
// installments plus the installment plans that still have something due.
type Overview struct {
	Singles []api.AccountPayable
	Plans   []Plan
}

func (s *Service) Overview(ctx context.Context, q api.PayableQuery) (Overview, error) {
	items, err := s.List(ctx, q)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Singles: Singles(items), Plans: PendingPlans(items)}, nil
}

// PlanDetail loads every installment of a plan, paid ones included.
func (s *Service) PlanDetail(ctx context.Context, id string) (Plan, error) {
	items, err := s.backend.Installments(ctx, id)
	if err != nil {
		s.logger.Error("load installments", zap.String("id", id), zap.Error(err))
		return Plan{}, fmt.Errorf("load installments: %w", err)
	}
	plans := GroupInstallments(items)
	if len(plans) == 0 {
		return Plan{}, fmt.Errorf("load installments: %w", api.ErrNotFound)
	}
	return plans[0], nil
}

func (s *Service) MarkAsPaid(ctx context.Context, id string) (api.AccountPayable, error) {
	p, err := s.backend.MarkPayableAsPaid(ctx, id)
	if err != nil {
		s.logger.Error("mark payable as paid", zap.String("id", id), zap.Error(err))
		return api.AccountPayable{}, fmt.Errorf("mark as paid: %w", err)
	}
	s.logger.Info("payable paid", zap.String("id", id))
	return p, nil
}

func (s *Service) MonthlyStats(ctx context.Context, month time.Time) (api.MonthlyStats, error) {
	stats, err := s.backend.PayableMonthlyStats(ctx, month)
	if err != nil {
		s.logger.Error("payable monthly stats", zap.Error(err))
		return api.MonthlyStats{}, fmt.Errorf("monthly stats: %w", err)
	}
	return stats, nil
}
