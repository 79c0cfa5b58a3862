// Package cashregister drives a till session: open with a float and a soft
// cash limit, record withdrawals, close with the operator's count. The
// server owns every balance; the controller only mirrors what it returns.
package cashregister

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"caixa/internal/api"
	"caixa/internal/money"

	"go.uber.org/zap"
)

var (
	ErrAlreadyOpen = errors.New("cash register already open")
	ErrNotOpen     = errors.New("no open cash register")
)

type State int

const (
	StateUnknown State = iota
	StateClosed
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type Backend interface {
	CashRegisterStatus(ctx context.Context) (api.CashRegisterStatus, error)
	OpenCashRegister(ctx context.Context, req api.OpenRegisterRequest) (api.CashRegister, error)
	AddTransaction(ctx context.Context, req api.TransactionRequest) (api.Transaction, error)
	ClosingData(ctx context.Context) (api.ClosingData, error)
	CloseCashRegister(ctx context.Context, req api.CloseRegisterRequest) (api.CashRegister, error)
	DailyCashRegisters(ctx context.Context, day time.Time) ([]api.CashRegister, error)
}

// StatsInvalidator is told when register movements make cached sales
// statistics stale.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Controller struct {
	backend Backend
	stats   StatsInvalidator
	format  money.Format
	logger  *zap.Logger

	mu       sync.Mutex
	state    State
	register *api.CashRegister
	history  []api.CashRegister
}

func NewController(backend Backend, stats StatsInvalidator, format money.Format, logger *zap.Logger) *Controller {
	return &Controller{
		backend: backend,
		stats:   stats,
		format:  format,
		logger:  logger.Named("cashregister"),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Register returns a copy of the open register, or nil.
func (c *Controller) Register() *api.CashRegister {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.register == nil {
		return nil
	}
	r := *c.register
	return &r
}

func (c *Controller) History() []api.CashRegister {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.CashRegister(nil), c.history...)
}

// Refresh asks the server whether a register is open. On failure the
// previously known state is kept.
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	status, err := c.backend.CashRegisterStatus(ctx)
	if err != nil {
		c.logger.Error("fetch register status", zap.Error(err))
		return c.State(), fmt.Errorf("fetch register status: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if status.IsOpen && status.CashRegister != nil {
		reg := *status.CashRegister
		c.state = StateOpen
		c.register = &reg
	} else {
		c.state = StateClosed
		c.register = nil
	}
	return c.state, nil
}

// OverLimit reports whether the drawer holds more than the soft cash limit,
// the cue for a sangria.
func (c *Controller) OverLimit() bool {
	reg := c.Register()
	if reg == nil || !reg.CashLimit.IsPositive() {
		return false
	}
	return reg.CurrentAmount.GreaterThan(reg.CashLimit)
}

func (c *Controller) NewOpenForm() *OpenForm {
	return NewOpenForm(c.format)
}

// Open submits form. Nothing is assumed open until the server confirms and
// a fresh status has been fetched.
func (c *Controller) Open(ctx context.Context, form *OpenForm) error {
	if c.State() == StateOpen {
		return ErrAlreadyOpen
	}
	req, err := form.Validate()
	if err != nil {
		c.logger.Warn("open form rejected", zap.Error(err))
		return err
	}

	form.InFlight = true
	defer func() { form.InFlight = false }()

	if _, err := c.backend.OpenCashRegister(ctx, req); err != nil {
		c.logger.Error("open register", zap.Error(err))
		return fmt.Errorf("open register: %w", err)
	}
	c.logger.Info("register opened",
		zap.String("initial_amount", req.InitialAmount.StringFixed(2)),
		zap.String("cash_limit", req.CashLimit.StringFixed(2)),
	)

	_, err = c.Refresh(ctx)
	return err
}

// NewWithdrawalForm snapshots the current drawer balance for the
// client-side limit check.
func (c *Controller) NewWithdrawalForm() (*WithdrawalForm, error) {
	reg := c.Register()
	if reg == nil {
		return nil, ErrNotOpen
	}
	return NewWithdrawalForm(c.format, reg.CurrentAmount), nil
}

func (c *Controller) Withdraw(ctx context.Context, form *WithdrawalForm) (api.Transaction, error) {
	if c.State() != StateOpen {
		return api.Transaction{}, ErrNotOpen
	}
	req, err := form.Validate()
	if err != nil {
		c.logger.Warn("withdrawal rejected", zap.Error(err))
		return api.Transaction{}, err
	}

	tx, err := c.backend.AddTransaction(ctx, req)
	if err != nil {
		c.logger.Error("post withdrawal", zap.Error(err))
		return api.Transaction{}, fmt.Errorf("post withdrawal: %w", err)
	}
	c.logger.Info("withdrawal recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("reason", req.Reason),
	)

	c.afterMovement(ctx)
	return tx, nil
}

// AfterSale refreshes the mirrored register once a sale went through.
func (c *Controller) AfterSale(ctx context.Context) {
	c.afterMovement(ctx)
}

func (c *Controller) afterMovement(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after movement", zap.Error(err))
	}
	if c.stats != nil {
		if err := c.stats.Invalidate(ctx); err != nil {
			c.logger.Warn("invalidate sales stats", zap.Error(err))
		}
	}
}

// NewClosingForm fetches the expected balances and pre-fills the form.
func (c *Controller) NewClosingForm(ctx context.Context) (*ClosingForm, error) {
	if c.State() != StateOpen {
		return nil, ErrNotOpen
	}
	data, err := c.backend.ClosingData(ctx)
	if err != nil {
		c.logger.Error("fetch closing data", zap.Error(err))
		return nil, fmt.Errorf("fetch closing data: %w", err)
	}
	return NewClosingForm(c.format, data), nil
}

// Close posts the operator's count, drops the local open state and reloads
// the day's registers. A failed history reload does not undo the close.
func (c *Controller) Close(ctx context.Context, form *ClosingForm) (api.CashRegister, error) {
	if c.State() != StateOpen {
		return api.CashRegister{}, ErrNotOpen
	}
	req, err := form.Validate()
	if err != nil {
		c.logger.Warn("closing form rejected", zap.Error(err))
		return api.CashRegister{}, err
	}

	closed, err := c.backend.CloseCashRegister(ctx, req)
	if err != nil {
		c.logger.Error("close register", zap.Error(err))
		return api.CashRegister{}, fmt.Errorf("close register: %w", err)
	}

	c.mu.Lock()
	c.state = StateClosed
	c.register = nil
	c.mu.Unlock()

	c.logger.Info("register closed",
		zap.String("register_id", closed.ID),
		zap.String("declared_total", req.Values.Total().StringFixed(2)),
	)

	if _, err := c.LoadHistory(ctx, time.Now()); err != nil {
		c.logger.Warn("reload daily registers", zap.Error(err))
	}
	if c.stats != nil {
		if err := c.stats.Invalidate(ctx); err != nil {
			c.logger.Warn("invalidate sales stats", zap.Error(err))
		}
	}
	return closed, nil
}

func (c *Controller) LoadHistory(ctx context.Context, day time.Time) ([]api.CashRegister, error) {
	registers, err := c.backend.DailyCashRegisters(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("fetch daily registers: %w", err)
	}
	c.mu.Lock()
	c.history = registers
	c.mu.Unlock()
	return append([]api.CashRegister(nil), registers...), nil
}
