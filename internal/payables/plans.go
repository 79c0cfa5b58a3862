package payables

import (
	"sort"

	"caixa/internal/api"

	"github.com/shopspring/decimal"
)

// Plan is one installment purchase with its parts ordered by number.
type Plan struct {
	ID           string
	Installments []api.AccountPayable
}

// PlanID is the parent installment id, or the record's own id for the
// first installment.
func PlanID(p api.AccountPayable) string {
	if p.ParentInstallmentID != "" {
		return p.ParentInstallmentID
	}
	return p.ID
}

func (p Plan) Description() string {
	if len(p.Installments) == 0 {
		return ""
	}
	return p.Installments[0].Description
}

// Remaining counts the unpaid installments present in the plan.
func (p Plan) Remaining() int {
	n := 0
	for _, inst := range p.Installments {
		if !inst.IsPaid {
			n++
		}
	}
	return n
}

func (p Plan) Outstanding() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Installments {
		if !inst.IsPaid {
			total = total.Add(inst.TotalValue)
		}
	}
	return total
}

// Next returns the unpaid installment with the lowest number.
func (p Plan) Next() (api.AccountPayable, bool) {
	for _, inst := range p.Installments {
		if !inst.IsPaid {
			return inst, true
		}
	}
	return api.AccountPayable{}, false
}

// GroupInstallments groups records by PlanID. Plans keep the order in
// which their first record was seen. Non-installment records are ignored.
func GroupInstallments(items []api.AccountPayable) []Plan {
	index := map[string]int{}
	var plans []Plan
	for _, item := range items {
		if !item.IsInstallment {
			continue
		}
		id := PlanID(item)
		i, ok := index[id]
		if !ok {
			i = len(plans)
			index[id] = i
			plans = append(plans, Plan{ID: id})
		}
		plans[i].Installments = append(plans[i].Installments, item)
	}
	for i := range plans {
		insts := plans[i].Installments
		sort.SliceStable(insts, func(a, b int) bool {
			return insts[a].InstallmentNumber < insts[b].InstallmentNumber
		})
	}
	return plans
}

// PendingPlans is the default listing: paid installments are hidden and
// plans left with nothing to pay are dropped.
func PendingPlans(items []api.AccountPayable) []Plan {
	pending := make([]api.AccountPayable, 0, len(items))
	for _, item := range items {
		if item.IsInstallment && !item.IsPaid {
			pending = append(pending, item)
		}
	}
	return GroupInstallments(pending)
}

// Singles returns the non-installment records.
func Singles(items []api.AccountPayable) []api.AccountPayable {
	var out []api.AccountPayable
	for _, item := range items {
		if !item.IsInstallment {
			out = append(out, item)
		}
	}
	return out
}
