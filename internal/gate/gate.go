// Package gate guards the dashboard behind the 4-digit operator PIN.
package gate

import (
	"context"
	"errors"
	"strings"
	"sync"

	"caixa/internal/api"

	"go.uber.org/zap"
)

const PINLength = 4

var (
	ErrIncomplete = errors.New("pin must have 4 digits")
	ErrWrongPIN   = errors.New("wrong pin")
)

type Verifier interface {
	VerifyPassword(ctx context.Context, pin string) (bool, error)
}

// Gate keeps the typed PIN and the unlocked flag. There is no attempt
// counter; the server is the only judge of a PIN.
type Gate struct {
	verifier Verifier
	logger   *zap.Logger

	mu       sync.Mutex
	input    string
	unlocked bool
}

func New(client *api.Client, logger *zap.Logger) *Gate {
	return newGate(client, logger)
}

func newGate(v Verifier, logger *zap.Logger) *Gate {
	return &Gate{verifier: v, logger: logger.Named("gate")}
}

// SetInput keeps the first four digits of raw and drops everything else.
func (g *Gate) SetInput(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == PINLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.input = b.String()
	return g.input
}

func (g *Gate) Input() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.input
}

func (g *Gate) CanSubmit() bool {
	return len(g.Input()) == PINLength
}

// Submit asks the server to check the PIN. Only an explicit isValid=true
// unlocks; the input is cleared after every answer.
func (g *Gate) Submit(ctx context.Context) error {
	pin := g.Input()
	if len(pin) != PINLength {
		return ErrIncomplete
	}
	ok, err := g.verifier.VerifyPassword(ctx, pin)
	if err != nil {
		g.logger.Error("verify pin", zap.Error(err))
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.input = ""
	if !ok {
		g.logger.Warn("pin rejected")
		return ErrWrongPIN
	}
	g.unlocked = true
	return nil
}

func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

func (g *Gate) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlocked = false
	g.input = ""
}
