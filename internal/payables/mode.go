package payables

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"caixa/internal/api"

	"github.com/shopspring/decimal"
)

var ErrInvalidMode = errors.New("invalid payable mode")

// Mode is how an account falls due: once, every month, or split in
// installments. It replaces the isRecurring/isInstallment flag pair.
type Mode interface {
	mode()
}

// Eventual is due once, on DueDate (YYYY-MM-DD).
type Eventual struct {
	DueDate string
}

// Recurring is due every month on DueDay.
type Recurring struct {
	DueDay int
}

// Installment splits the value in Count parts, the first due on FirstDueDate.
type Installment struct {
	Count        int
	FirstDueDate string
}

func (Eventual) mode()    {}
func (Recurring) mode()   {}
func (Installment) mode() {}

// ModeOf reads the mode from the wire flags.
func ModeOf(p api.AccountPayable) (Mode, error) {
	switch {
	case p.IsRecurring && p.IsInstallment:
		return nil, fmt.Errorf("%w: %s is both recurring and installment", ErrInvalidMode, p.ID)
	case p.IsInstallment:
		return Installment{Count: p.TotalInstallments, FirstDueDate: p.DueDate}, nil
	case p.IsRecurring:
		return Recurring{DueDay: p.DueDay}, nil
	default:
		return Eventual{DueDate: p.DueDate}, nil
	}
}

// Draft is a payable as typed by the operator.
type Draft struct {
	Type        api.PayableType
	Description string
	Value       decimal.Decimal
	SupplierID  string
	Mode        Mode
}

// DraftOf turns an existing record back into an editable draft.
func DraftOf(p api.AccountPayable) (Draft, error) {
	m, err := ModeOf(p)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		Type:        p.Type,
		Description: p.Description,
		Value:       p.TotalValue,
		SupplierID:  p.SupplierID,
		Mode:        m,
	}, nil
}

// Input converts the draft to the request body, checking the mode fields
// the struct tags cannot express.
func (d Draft) Input() (api.PayableInput, error) {
	in := api.PayableInput{
		Type:        d.Type,
		Description: strings.TrimSpace(d.Description),
		TotalValue:  d.Value.Round(2),
		SupplierID:  strings.TrimSpace(d.SupplierID),
	}
	switch m := d.Mode.(type) {
	case Eventual:
		if err := checkDate(m.DueDate); err != nil {
			return api.PayableInput{}, err
		}
		in.DueDate = m.DueDate
	case Recurring:
		if m.DueDay < 1 || m.DueDay > 31 {
			return api.PayableInput{}, fmt.Errorf("%w: due day %d", ErrInvalidMode, m.DueDay)
		}
		in.IsRecurring = true
		in.DueDay = m.DueDay
	case Installment:
		if m.Count < 2 {
			return api.PayableInput{}, fmt.Errorf("%w: %d installments", ErrInvalidMode, m.Count)
		}
		if err := checkDate(m.FirstDueDate); err != nil {
			return api.PayableInput{}, err
		}
		in.IsInstallment = true
		in.TotalInstallments = m.Count
		in.DueDate = m.FirstDueDate
	default:
		return api.PayableInput{}, fmt.Errorf("%w: mode not set", ErrInvalidMode)
	}
	return in, nil
}

func checkDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("%w: due date %q", ErrInvalidMode, s)
	}
	return nil
}
