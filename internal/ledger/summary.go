package ledger

import "github.com/shopspring/decimal"

// Snapshot is the derived financial summary of a collection.
type Snapshot struct {
	Budget         decimal.Decimal `json:"budget"`
	Revenue        decimal.Decimal `json:"revenue"`
	Expenses       decimal.Decimal `json:"expenses"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// Summarize totals revenue and expenses and derives the balance as
// budget + revenue - expenses, rounded to cents. Values are assumed
// non-negative.
func Summarize(transactions []Transaction, budget decimal.Decimal) Snapshot {
	revenue := decimal.Zero
	expenses := decimal.Zero
	for _, t := range transactions {
		switch t.Type {
		case Revenue:
			revenue = revenue.Add(t.Value)
		case Expense:
			expenses = expenses.Add(t.Value)
		}
	}

	return Snapshot{
		Budget:         budget,
		Revenue:        revenue,
		Expenses:       expenses,
		CurrentBalance: budget.Add(revenue).Sub(expenses).Round(2),
	}
}

// IsBelowThreshold reports whether the balance has dropped strictly under
// the threshold. Equality does not trigger.
func IsBelowThreshold(balance, threshold decimal.Decimal) bool {
	return balance.LessThan(threshold)
}
